package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Status texts shown to the user
const (
	TextDownloading = "Downloading..."
	TextCompressing = "Compressing video..."
	TextConverting  = "Converting video..."
	TextSending     = "Sending file..."
)

// Error texts shown to the user
const (
	TextUsage         = "Invalid usage, use /%s url"
	TextInvalidURL    = "Invalid URL"
	TextDownloadError = "There was an error downloading your video, make sure it doesn't exceed *%dMB*"
	TextSendError     = "Couldn't send file, make sure it's supported by Telegram and it doesn't exceed *%dMB*"
	TextShuttingDown  = "The bot is restarting, send the link again in a minute"
)

// DefaultCommand is used in usage hints when the command is unknown
const DefaultCommand = "download"

// UserMessage maps a terminal error to the single text the user sees
func UserMessage(err error, maxFileSize int64, command string) string {
	var (
		deliveryErr *model.DeliveryError
		mb          = CeilingMB(maxFileSize)
	)

	switch {
	case errors.Is(err, model.ErrUsage):
		if command == "" {
			command = DefaultCommand
		}
		return fmt.Sprintf(TextUsage, command)
	case errors.Is(err, model.ErrInvalidURL):
		return TextInvalidURL
	case errors.Is(err, ErrClosed):
		return TextShuttingDown
	case errors.As(err, &deliveryErr):
		return fmt.Sprintf(TextSendError, mb)
	default:
		// size limit, extraction and transcode failures share one message
		return fmt.Sprintf(TextDownloadError, mb)
	}
}

// CeilingMB renders a byte ceiling in (decimal) megabytes
func CeilingMB(maxFileSize int64) int {
	return int(math.Round(float64(maxFileSize) / 1e6))
}
