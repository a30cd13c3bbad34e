// Package deliverytest provides an in-memory delivery.Transport for tests.
package deliverytest

import (
	"context"
	"sync"

	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Call is one recorded transport operation
type Call struct {
	Op       string
	Msg      model.MessageRef // target or reply-to message
	Text     string
	Format   delivery.Format
	Path     string
	Meta     model.MediaMetadata
	PhotoURL string
	Rows     [][]delivery.Choice
	Callback string
}

// Transport records every call. Err* fields make the matching operation fail.
type Transport struct {
	mu     sync.Mutex
	nextID int
	calls  []Call

	ErrReply   error
	ErrEdit    error
	ErrDelete  error
	ErrSend    error
	ErrVideo   error
	ErrAudio   error
	ErrPhoto   error
	ErrChoices error
	ErrAnswer  error
}

// New creates a transport whose message ids start at 100
func New() *Transport {
	return &Transport{nextID: 100}
}

func (t *Transport) record(c Call) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
}

func (t *Transport) newMessage(chatID int64) model.MessageRef {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return model.MessageRef{ChatID: chatID, MessageID: t.nextID}
}

// Calls returns a copy of the recorded calls
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// CallsOf returns the recorded calls of one operation
func (t *Transport) CallsOf(op string) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the operation names in call order
func (t *Transport) Ops() []string {
	var out []string
	for _, c := range t.Calls() {
		out = append(out, c.Op)
	}
	return out
}

func (t *Transport) ReplyText(ctx context.Context, to model.MessageRef, text string, format delivery.Format) (model.MessageRef, error) {
	t.record(Call{Op: "reply", Msg: to, Text: text, Format: format})
	if t.ErrReply != nil {
		return model.MessageRef{}, t.ErrReply
	}
	return t.newMessage(to.ChatID), nil
}

func (t *Transport) EditText(ctx context.Context, msg model.MessageRef, text string, format delivery.Format) error {
	t.record(Call{Op: "edit", Msg: msg, Text: text, Format: format})
	return t.ErrEdit
}

func (t *Transport) Delete(ctx context.Context, msg model.MessageRef) error {
	t.record(Call{Op: "delete", Msg: msg})
	return t.ErrDelete
}

func (t *Transport) SendText(ctx context.Context, chatID int64, text string) error {
	t.record(Call{Op: "send", Msg: model.MessageRef{ChatID: chatID}, Text: text})
	return t.ErrSend
}

func (t *Transport) SendVideo(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error {
	t.record(Call{Op: "video", Msg: to, Path: path, Meta: meta})
	return t.ErrVideo
}

func (t *Transport) SendAudio(ctx context.Context, to model.MessageRef, path string, meta model.MediaMetadata) error {
	t.record(Call{Op: "audio", Msg: to, Path: path, Meta: meta})
	return t.ErrAudio
}

func (t *Transport) ReplyChoices(ctx context.Context, to model.MessageRef, text, photoURL string, rows [][]delivery.Choice) (model.MessageRef, error) {
	t.record(Call{Op: "choices", Msg: to, Text: text, PhotoURL: photoURL, Rows: rows})
	if photoURL != "" && t.ErrPhoto != nil {
		return model.MessageRef{}, t.ErrPhoto
	}
	if t.ErrChoices != nil {
		return model.MessageRef{}, t.ErrChoices
	}
	return t.newMessage(to.ChatID), nil
}

func (t *Transport) AnswerCallback(ctx context.Context, callbackID, text string) error {
	t.record(Call{Op: "answer", Text: text, Callback: callbackID})
	return t.ErrAnswer
}

var _ delivery.Transport = (*Transport)(nil)
