package pipeline

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/compress"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/progress"
)

// Fetcher downloads media into prefixed artifacts
type Fetcher interface {
	Fetch(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error)
}

// PostProcessor reduces and normalizes fetched video
type PostProcessor interface {
	Process(ctx context.Context, job compress.Job) (*compress.Result, error)
}
