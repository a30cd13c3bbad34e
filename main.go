package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/app"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	if err := app.Execute(os.Args[1:], version); err != nil {
		log.Fatal().Err(err).Msg("yt-downloader-bot failed")
	}
}
