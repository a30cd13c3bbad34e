package bot

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/model"
)

// SelectUnique identifies format selection buttons in callback data
const SelectUnique = "fmt"

// errNotModified is returned by Telegram when an edit repeats the current text
const errNotModified = "message is not modified"

// Telegram implements delivery.Transport with a telebot bot
type Telegram struct {
	bot *tele.Bot
}

// NewTelegram wraps b
func NewTelegram(b *tele.Bot) *Telegram {
	return &Telegram{bot: b}
}

// ReplyText implements delivery.Transport
func (t *Telegram) ReplyText(ctx context.Context, to model.MessageRef, text string, format delivery.Format) (model.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return model.MessageRef{}, err
	}
	msg, err := t.bot.Send(tele.ChatID(to.ChatID), text, &tele.SendOptions{
		ReplyTo:               replyTarget(to),
		ParseMode:             parseMode(format),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	return refOf(msg), nil
}

// EditText implements delivery.Transport
func (t *Telegram) EditText(ctx context.Context, msg model.MessageRef, text string, format delivery.Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Edit(stored(msg), text, &tele.SendOptions{
		ParseMode:             parseMode(format),
		DisableWebPagePreview: true,
	})
	if err != nil && strings.Contains(err.Error(), errNotModified) {
		return nil
	}
	return err
}

// Delete implements delivery.Transport
func (t *Telegram) Delete(ctx context.Context, msg model.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.bot.Delete(stored(msg))
}

// SendText implements delivery.Transport
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{DisableWebPagePreview: true})
	return err
}

// SendVideo implements delivery.Transport. Videos are sent with their
// dimensions and streaming support so clients play them inline.
func (t *Telegram) SendVideo(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	video := &tele.Video{
		File:      tele.FromDisk(path),
		Width:     meta.Width,
		Height:    meta.Height,
		Duration:  meta.Duration,
		Streaming: true,
		FileName:  filepath.Base(path),
	}
	_, err := t.bot.Send(tele.ChatID(to.ChatID), video, &tele.SendOptions{ReplyTo: replyTarget(to)})
	return err
}

// SendAudio implements delivery.Transport
func (t *Telegram) SendAudio(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audio := &tele.Audio{
		File:      tele.FromDisk(path),
		Duration:  meta.Duration,
		Title:     meta.Title,
		Performer: meta.Performer,
		FileName:  filepath.Base(path),
	}
	_, err := t.bot.Send(tele.ChatID(to.ChatID), audio, &tele.SendOptions{ReplyTo: replyTarget(to)})
	return err
}

// ReplyChoices implements delivery.Transport
func (t *Telegram) ReplyChoices(ctx context.Context, to model.MessageRef, text, photoURL string, rows [][]delivery.Choice) (model.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return model.MessageRef{}, err
	}

	var what interface{} = text
	if photoURL != "" {
		what = &tele.Photo{File: tele.FromURL(photoURL), Caption: text}
	}

	msg, err := t.bot.Send(tele.ChatID(to.ChatID), what, &tele.SendOptions{
		ReplyTo:     replyTarget(to),
		ReplyMarkup: choiceMarkup(rows),
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	return refOf(msg), nil
}

// AnswerCallback implements delivery.Transport
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text})
}

func choiceMarkup(rows [][]delivery.Choice) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, choice := range row {
			btns = append(btns, markup.Data(choice.Label, SelectUnique, choice.Token))
		}
		inline = append(inline, markup.Row(btns...))
	}
	markup.Inline(inline...)
	return markup
}

func parseMode(format delivery.Format) tele.ParseMode {
	if format == delivery.Markdown {
		return tele.ModeMarkdown
	}
	return tele.ModeDefault
}

func replyTarget(to model.MessageRef) *tele.Message {
	if to.MessageID == 0 {
		return nil
	}
	return &tele.Message{ID: to.MessageID}
}

func stored(msg model.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(msg.MessageID), ChatID: msg.ChatID}
}

func refOf(msg *tele.Message) model.MessageRef {
	if msg == nil {
		return model.MessageRef{}
	}
	ref := model.MessageRef{MessageID: msg.ID}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	return ref
}

var _ delivery.Transport = (*Telegram)(nil)
