package delivery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Operation names carried by DeliveryError
const (
	OpReply    = "reply"
	OpEdit     = "edit"
	OpDelete   = "delete"
	OpSend     = "send"
	OpOffer    = "offer"
	OpAnswer   = "answer"
	OpSendFile = "send-file"
)

// Adapter implements the pipeline side of delivery over a Transport
type Adapter struct {
	transport Transport
}

// NewAdapter creates an adapter over transport
func NewAdapter(transport Transport) *Adapter {
	return &Adapter{transport: transport}
}

// Begin replies to origin with the initial status text and returns the key
// derived from the new status message.
func (a *Adapter) Begin(ctx context.Context, origin model.MessageRef, text string) (model.RequestKey, error) {
	status, err := a.transport.ReplyText(ctx, origin, text, Plain)
	if err != nil {
		return model.RequestKey{}, &model.DeliveryError{Op: OpReply, Err: err}
	}
	return model.KeyFor(status), nil
}

// Reply sends a standalone reply to origin
func (a *Adapter) Reply(ctx context.Context, origin model.MessageRef, text string, format Format) (model.MessageRef, error) {
	msg, err := a.transport.ReplyText(ctx, origin, text, format)
	if err != nil {
		return model.MessageRef{}, &model.DeliveryError{Op: OpReply, Err: err}
	}
	return msg, nil
}

// ReportStatus edits the status message of key with plain text
func (a *Adapter) ReportStatus(ctx context.Context, key model.RequestKey, text string) error {
	if err := a.transport.EditText(ctx, key.Message(), text, Plain); err != nil {
		return &model.DeliveryError{Op: OpEdit, Err: err}
	}
	return nil
}

// ReportError edits the status message of key with a markdown error text
func (a *Adapter) ReportError(ctx context.Context, key model.RequestKey, text string) error {
	if err := a.transport.EditText(ctx, key.Message(), text, Markdown); err != nil {
		return &model.DeliveryError{Op: OpEdit, Err: err}
	}
	return nil
}

// SendResult delivers the artifact as a reply to inReplyTo, typed by kind
func (a *Adapter) SendResult(ctx context.Context, inReplyTo model.MessageRef, artifact model.ArtifactFile, kind model.MediaKind, meta model.MediaMetadata) error {
	var err error
	switch kind {
	case model.MediaVideo:
		err = a.transport.SendVideo(ctx, inReplyTo, artifact.Path, meta)
	case model.MediaAudio:
		err = a.transport.SendAudio(ctx, inReplyTo, artifact.Path, meta)
	default:
		err = fmt.Errorf("unknown media kind %q", kind)
	}
	if err != nil {
		return &model.DeliveryError{Op: OpSendFile, Err: err}
	}

	log.Debug().Int64("chat_id", inReplyTo.ChatID).Str("path", artifact.Path).Str("kind", string(kind)).
		Int64("size", artifact.SizeBytes).Msg("result delivered")
	return nil
}

// FinalizeStatus removes the status message of key
func (a *Adapter) FinalizeStatus(ctx context.Context, key model.RequestKey) error {
	return a.Delete(ctx, key.Message())
}

// Delete removes msg
func (a *Adapter) Delete(ctx context.Context, msg model.MessageRef) error {
	if err := a.transport.Delete(ctx, msg); err != nil {
		return &model.DeliveryError{Op: OpDelete, Err: err}
	}
	return nil
}

// Offer replies with an interactive choice. When a photo is given and
// sending it fails, the offer falls back to text only.
func (a *Adapter) Offer(ctx context.Context, origin model.MessageRef, text, photoURL string, rows [][]Choice) (model.MessageRef, error) {
	if photoURL != "" {
		msg, err := a.transport.ReplyChoices(ctx, origin, text, photoURL, rows)
		if err == nil {
			return msg, nil
		}
		log.Warn().Err(err).Str("photo", photoURL).Msg("offer photo failed, falling back to text")
	}

	msg, err := a.transport.ReplyChoices(ctx, origin, text, "", rows)
	if err != nil {
		return model.MessageRef{}, &model.DeliveryError{Op: OpOffer, Err: err}
	}
	return msg, nil
}

// Answer acknowledges an interaction, optionally with a short notice
func (a *Adapter) Answer(ctx context.Context, callbackID, text string) error {
	if err := a.transport.AnswerCallback(ctx, callbackID, text); err != nil {
		return &model.DeliveryError{Op: OpAnswer, Err: err}
	}
	return nil
}

// Notify sends text to chatID, used for the audit chat
func (a *Adapter) Notify(ctx context.Context, chatID int64, text string) error {
	if err := a.transport.SendText(ctx, chatID, text); err != nil {
		return &model.DeliveryError{Op: OpSend, Err: err}
	}
	return nil
}
