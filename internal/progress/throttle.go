package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Stage labels used in progress texts
const (
	StageDownloading = "Downloading"
	StageCompressing = "Compressing"
)

// DefaultInterval is the minimum spacing between two progress edits of one request
const DefaultInterval = 5 * time.Second

// Event is one raw progress observation. Done and Total share a unit
// (bytes while downloading, microseconds of output while transcoding).
// An event with a Notice is a stage change: its text is the notice and it
// always passes the throttle.
type Event struct {
	Stage  string
	Title  string
	Done   int64
	Total  int64
	Notice string
}

// Percent returns floor(Done*100/Total) clamped to 0..100; 0 when Total is unknown
func (e Event) Percent() int {
	if e.Total <= 0 || e.Done <= 0 {
		return 0
	}
	p := e.Done * 100 / e.Total
	if p > 100 {
		p = 100
	}
	return int(p)
}

// Text renders the status text for the event
func (e Event) Text() string {
	if e.Notice != "" {
		return e.Notice
	}
	stage := e.Stage
	if stage == "" {
		stage = StageDownloading
	}
	return fmt.Sprintf("%s %s\n\n%d%%", stage, e.Title, e.Percent())
}

// Forward queues ev on events without blocking. A full channel drops the
// event with a debug log and Forward reports false; a nil channel drops silently.
func Forward(events chan<- Event, ev Event) bool {
	if events == nil {
		return false
	}
	select {
	case events <- ev:
		return true
	default:
		log.Debug().Str("stage", ev.Stage).Int64("done", ev.Done).Int64("total", ev.Total).Msg("progress event dropped")
		return false
	}
}

// Emitter receives the edits the throttle lets through
type Emitter interface {
	ReportStatus(ctx context.Context, key model.RequestKey, text string) error
}

// Throttle decides which progress events become status edits
type Throttle struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

// NewThrottle creates a throttle over store. A non-positive interval falls back to DefaultInterval.
func NewThrottle(store Store, interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{store: store, interval: interval, now: time.Now}
}

// SetClock replaces the time source; intended for tests
func (t *Throttle) SetClock(now func() time.Time) {
	t.now = now
}

// Observe handles one event for key and reports whether an edit was emitted.
// The first event of a key and every notice always pass; a notice restarts
// the interval. Emit failures are logged and dropped.
func (t *Throttle) Observe(ctx context.Context, key model.RequestKey, ev Event, emit Emitter) bool {
	now := t.now()
	if state, ok := t.store.Get(key); ok && ev.Notice == "" && now.Sub(state.LastUpdate) < t.interval {
		return false
	}

	percent := ev.Percent()
	t.store.Set(key, State{LastUpdate: now, LastPercent: percent})

	if err := emit.ReportStatus(ctx, key, ev.Text()); err != nil {
		log.Warn().Err(err).Str("request_key", key.String()).Int("percent", percent).Msg("progress edit dropped")
	}
	return true
}

// Run consumes events for key until the channel is closed or ctx is done
func (t *Throttle) Run(ctx context.Context, key model.RequestKey, events <-chan Event, emit Emitter) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Observe(ctx, key, ev, emit)
		}
	}
}

// Evict forgets the state of key
func (t *Throttle) Evict(key model.RequestKey) {
	t.store.Evict(key)
}
