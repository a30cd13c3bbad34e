package delivery

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Format selects how the transport parses message text
type Format int

const (
	Plain Format = iota
	Markdown
)

// Choice is one button of an interactive offer
type Choice struct {
	Label string
	Token string
}

// Transport is the chat platform as seen by the pipeline. Transport limits
// (file size, message length, markdown dialect) are the implementation's
// business.
type Transport interface {
	ReplyText(ctx context.Context, to model.MessageRef, text string, format Format) (model.MessageRef, error)
	EditText(ctx context.Context, msg model.MessageRef, text string, format Format) error
	Delete(ctx context.Context, msg model.MessageRef) error
	SendText(ctx context.Context, chatID int64, text string) error

	SendVideo(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error
	SendAudio(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error

	// ReplyChoices replies with buttons laid out in rows. A non-empty photoURL
	// sends a photo with text as caption.
	ReplyChoices(ctx context.Context, to model.MessageRef, text, photoURL string, rows [][]Choice) (model.MessageRef, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
