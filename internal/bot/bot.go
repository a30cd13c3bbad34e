package bot

import (
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

// DefaultPollTimeout is the long polling timeout
const DefaultPollTimeout = 10 * time.Second

// New creates a long polling telebot bot that logs handler errors
func New(token string, pollTimeout time.Duration) (*tele.Bot, error) {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return newBot(tele.Settings{
		Token:   token,
		Poller:  &tele.LongPoller{Timeout: pollTimeout},
		OnError: logError,
	})
}

// newBot creates the bot with panic recovery installed before any handler is registered
func newBot(settings tele.Settings) (*tele.Bot, error) {
	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}
	b.Use(middleware.Recover())
	return b, nil
}

func logError(err error, c tele.Context) {
	event := log.Error().Err(err)
	if c != nil && c.Chat() != nil {
		event = event.Int64("chat_id", c.Chat().ID)
	}
	event.Msg("telegram handler failed")
}
