package selector

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/pipeline"
)

// Texts shown to the user
const (
	TextGettingFormats   = "Getting formats..."
	TextChooseFormat     = "Choose a format"
	TextNoFormats        = "No video formats available for this link"
	TextNotRequester     = "You didn't send the request"
	TextExpired          = "This selection has expired"
	TextInvalidSelection = "Invalid selection"
)

// CommandCustom is the command that starts a format selection
const CommandCustom = "custom"

// RowWidth is the number of buttons per row
const RowWidth = 2

// DefaultTTL is how long an offer stays selectable
const DefaultTTL = 10 * time.Minute

// State is the lifecycle state of an offer
type State string

const (
	StateOffered  State = "Offered"
	StateSelected State = "Selected"
	StateExpired  State = "Expired"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Resolver lists the formats of a link
type Resolver interface {
	Resolve(ctx context.Context, url string) (*download.Catalog, error)
}

// Handoff runs an accepted selection as a regular request
type Handoff interface {
	Handle(ctx context.Context, sub pipeline.Submission) (*model.Request, error)
}

// OfferRequest asks for the format list of URL
type OfferRequest struct {
	Origin      model.MessageRef
	RequesterID int64
	URL         string
}

// Selection is a button press on an offer
type Selection struct {
	CallbackID  string
	ResponderID int64
	RequesterID int64            // author of the message the offer replies to
	Offer       model.MessageRef // the offer message itself
	OfferedAt   time.Time
	Origin      model.MessageRef // the message the offer replies to
	URL         string
	Token       string
}

// Selector offers formats and accepts selections
type Selector struct {
	resolver    Resolver
	out         *delivery.Adapter
	handoff     Handoff
	ttl         time.Duration
	maxFileSize int64
	now         func() time.Time
}

// New creates a selector. A non-positive ttl disables expiry.
func New(resolver Resolver, out *delivery.Adapter, handoff Handoff, ttl time.Duration, maxFileSize int64) *Selector {
	return &Selector{
		resolver:    resolver,
		out:         out,
		handoff:     handoff,
		ttl:         ttl,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// Offer probes the link and replies to the origin with one button per video format
func (s *Selector) Offer(ctx context.Context, req OfferRequest) error {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		if _, err := s.out.Reply(ctx, req.Origin, pipeline.UserMessage(model.ErrUsage, s.maxFileSize, CommandCustom), delivery.Plain); err != nil {
			log.Warn().Err(err).Msg("failed to send usage hint")
		}
		return model.ErrUsage
	}

	pending, err := s.out.Reply(ctx, req.Origin, TextGettingFormats, delivery.Plain)
	if err != nil {
		return err
	}
	key := model.KeyFor(pending)

	catalog, err := s.resolver.Resolve(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("request_key", key.String()).Str("url", url).Msg("format probe failed")
		if rerr := s.out.ReportError(ctx, key, pipeline.UserMessage(err, s.maxFileSize, CommandCustom)); rerr != nil {
			log.Warn().Err(rerr).Str("request_key", key.String()).Msg("failed to report probe error")
		}
		return err
	}

	rows := BuildRows(catalog.VideoFormats())
	if len(rows) == 0 {
		if err := s.out.ReportStatus(ctx, key, TextNoFormats); err != nil {
			log.Warn().Err(err).Str("request_key", key.String()).Msg("failed to report empty catalog")
		}
		return nil
	}

	if err := s.out.Delete(ctx, pending); err != nil {
		log.Warn().Err(err).Str("request_key", key.String()).Msg("failed to delete pending message")
	}

	offer, err := s.out.Offer(ctx, req.Origin, TextChooseFormat, catalog.Thumbnail, rows)
	if err != nil {
		return err
	}

	log.Info().Int64("chat_id", offer.ChatID).Int("offer_id", offer.MessageID).Int("formats", len(catalog.Formats)).
		Str("url", url).Msg("formats offered")
	return nil
}

// Select validates a button press and hands an accepted choice off as a request
func (s *Selector) Select(ctx context.Context, sel Selection) (State, error) {
	logger := log.With().Int64("chat_id", sel.Offer.ChatID).Int("offer_id", sel.Offer.MessageID).
		Int64("responder", sel.ResponderID).Logger()

	if sel.ResponderID != sel.RequesterID {
		logger.Info().Int64("requester", sel.RequesterID).Msg("selection by another user rejected")
		s.answer(ctx, sel.CallbackID, TextNotRequester)
		return StateOffered, model.ErrUnauthorized
	}

	if s.expired(sel.OfferedAt) {
		logger.Info().Time("offered_at", sel.OfferedAt).Msg("selection expired")
		s.answer(ctx, sel.CallbackID, TextExpired)
		s.deleteOffer(ctx, sel.Offer)
		return StateExpired, model.ErrSelectionExpired
	}

	if !tokenPattern.MatchString(sel.Token) {
		logger.Warn().Str("token", sel.Token).Msg("malformed selection token")
		s.answer(ctx, sel.CallbackID, TextInvalidSelection)
		return StateOffered, model.ErrInvalidSelection
	}

	s.answer(ctx, sel.CallbackID, "")
	s.deleteOffer(ctx, sel.Offer)

	logger.Info().Str("format_id", sel.Token).Msg("format selected")

	_, err := s.handoff.Handle(ctx, pipeline.Submission{
		Command:     CommandCustom,
		Origin:      sel.Origin,
		RequesterID: sel.RequesterID,
		URL:         sel.URL,
		FormatSpec:  model.SelectedFormatSpec(sel.Token),
	})
	return StateSelected, err
}

func (s *Selector) expired(offeredAt time.Time) bool {
	if s.ttl <= 0 || offeredAt.IsZero() {
		return false
	}
	return s.now().Sub(offeredAt) > s.ttl
}

func (s *Selector) answer(ctx context.Context, callbackID, text string) {
	if err := s.out.Answer(ctx, callbackID, text); err != nil {
		log.Warn().Err(err).Str("callback_id", callbackID).Msg("failed to answer callback")
	}
}

func (s *Selector) deleteOffer(ctx context.Context, offer model.MessageRef) {
	if err := s.out.Delete(ctx, offer); err != nil {
		log.Warn().Err(err).Int("offer_id", offer.MessageID).Msg("failed to delete offer")
	}
}

// BuildRows lays formats out as buttons, RowWidth per row. Formats sharing a
// label collapse into one button at the first position carrying the last id.
func BuildRows(formats []model.FormatDescriptor) [][]delivery.Choice {
	var (
		order []string
		ids   = make(map[string]string)
	)
	for _, f := range formats {
		label := f.Label()
		if _, seen := ids[label]; !seen {
			order = append(order, label)
		}
		ids[label] = f.FormatID
	}

	var rows [][]delivery.Choice
	for i := 0; i < len(order); i += RowWidth {
		end := i + RowWidth
		if end > len(order) {
			end = len(order)
		}
		row := make([]delivery.Choice, 0, end-i)
		for _, label := range order[i:end] {
			row = append(row, delivery.Choice{Label: label, Token: ids[label]})
		}
		rows = append(rows, row)
	}
	return rows
}
