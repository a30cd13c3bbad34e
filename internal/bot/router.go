package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/pipeline"
	"github.com/ytget/yt-downloader-bot/internal/selector"
)

// Commands
const (
	CommandStart    = "/start"
	CommandHelp     = "/help"
	CommandDownload = "/download"
	CommandAudio    = "/audio"
	CommandCustom   = "/" + selector.CommandCustom
)

// Downloader runs download requests
type Downloader interface {
	Handle(ctx context.Context, sub pipeline.Submission) (*model.Request, error)
}

// Chooser runs interactive format selection
type Chooser interface {
	Offer(ctx context.Context, req selector.OfferRequest) error
	Select(ctx context.Context, sel selector.Selection) (selector.State, error)
}

// Router maps Telegram updates onto the pipeline
type Router struct {
	ctx        context.Context
	downloader Downloader
	chooser    Chooser
	out        *delivery.Adapter
	auditChat  int64
}

// NewRouter creates a router. Requests run under ctx so they stop on shutdown.
// A zero auditChat disables audit lines.
func NewRouter(ctx context.Context, downloader Downloader, chooser Chooser, out *delivery.Adapter, auditChat int64) *Router {
	return &Router{
		ctx:        ctx,
		downloader: downloader,
		chooser:    chooser,
		out:        out,
		auditChat:  auditChat,
	}
}

// Register installs the handlers on b
func (r *Router) Register(b *tele.Bot) {
	b.Handle(CommandStart, r.onWelcome)
	b.Handle(CommandHelp, r.onWelcome)
	b.Handle(CommandDownload, r.onDownload)
	b.Handle(CommandAudio, r.onAudio)
	b.Handle(CommandCustom, r.onCustom)
	b.Handle("\f"+SelectUnique, r.onSelect)

	for _, endpoint := range []string{tele.OnText, tele.OnPhoto, tele.OnVideo, tele.OnDocument, tele.OnAudio, tele.OnVoice} {
		b.Handle(endpoint, r.onPlain)
	}
}

func (r *Router) onWelcome(c tele.Context) error {
	name := ""
	if c.Sender() != nil {
		name = c.Sender().FirstName
	}
	return c.Reply(WelcomeText(name), tele.ModeMarkdown, tele.NoPreview)
}

func (r *Router) onDownload(c tele.Context) error {
	return r.download(c.Message(), CommandDownload[1:], CommandURL(c.Message()), false)
}

func (r *Router) onAudio(c tele.Context) error {
	return r.download(c.Message(), CommandAudio[1:], CommandURL(c.Message()), true)
}

// onPlain treats any private message as a download of its text or caption.
// Group chats only react to commands.
func (r *Router) onPlain(c tele.Context) error {
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	return r.download(c.Message(), CommandDownload[1:], PlainURL(c.Message()), false)
}

func (r *Router) download(msg *tele.Message, command, url string, audio bool) error {
	media, format := MediaVideo, model.FormatVideo
	if audio {
		media, format = MediaAudio, model.FormatAudio
	}
	if url != "" {
		r.audit(msg, url, media)
	}

	req, err := r.downloader.Handle(r.ctx, pipeline.Submission{
		Command:     command,
		Origin:      MessageRef(msg),
		RequesterID: senderID(msg),
		URL:         url,
		FormatSpec:  format,
		AudioOnly:   audio,
	})
	logOutcome(req, err)
	return nil
}

func (r *Router) onCustom(c tele.Context) error {
	msg := c.Message()
	err := r.chooser.Offer(r.ctx, selector.OfferRequest{
		Origin:      MessageRef(msg),
		RequesterID: senderID(msg),
		URL:         CommandURL(msg),
	})
	if err != nil && !errors.Is(err, model.ErrUsage) {
		log.Warn().Err(err).Int64("chat_id", c.Chat().ID).Msg("format offer failed")
	}
	return nil
}

func (r *Router) onSelect(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Message == nil {
		return nil
	}

	offer := cb.Message
	origin := offer.ReplyTo
	if origin == nil || origin.Sender == nil {
		// the request message is gone, nothing left to download
		if err := r.out.Answer(r.ctx, cb.ID, selector.TextExpired); err != nil {
			log.Warn().Err(err).Msg("failed to answer orphan selection")
		}
		return nil
	}

	var responder int64
	if cb.Sender != nil {
		responder = cb.Sender.ID
	}

	state, err := r.chooser.Select(r.ctx, selector.Selection{
		CallbackID:  cb.ID,
		ResponderID: responder,
		RequesterID: origin.Sender.ID,
		Offer:       MessageRef(offer),
		OfferedAt:   offer.Time(),
		Origin:      MessageRef(origin),
		URL:         CommandURL(origin),
		Token:       cb.Data,
	})
	log.Debug().Err(err).Str("state", string(state)).Int("offer_id", offer.ID).Msg("selection handled")
	return nil
}

func (r *Router) audit(msg *tele.Message, text, media string) {
	if r.auditChat == 0 || msg == nil {
		return
	}
	if err := r.out.Notify(r.ctx, r.auditChat, AuditText(msg, text, media)); err != nil {
		log.Warn().Err(err).Int64("audit_chat", r.auditChat).Msg("failed to post audit line")
	}
}

func logOutcome(req *model.Request, err error) {
	if req == nil {
		return
	}
	event := log.Info()
	if err != nil {
		event = log.Debug().Err(err)
	}
	event.Str("request_key", req.Key.String()).Str("status", req.Status.String()).
		Dur("elapsed", req.FinishedAt.Sub(req.StartedAt)).Msg("request finished")
}
