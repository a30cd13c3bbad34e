package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/compress"
	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
	"github.com/ytget/yt-downloader-bot/internal/progress"
)

// Manager constants
const (
	// ArtifactPrefix starts the name of every file a request produces
	ArtifactPrefix = "dl-"

	// DefaultMaxConcurrent is used when Options.MaxConcurrent is not positive
	DefaultMaxConcurrent = 4

	// eventBuffer is the capacity of the progress channel between a stage and the throttle
	eventBuffer = 16

	// finishTimeout bounds the final status edit when the request context is gone
	finishTimeout = 10 * time.Second
)

// ErrClosed is returned for requests submitted after Close
var ErrClosed = errors.New("manager is shutting down")

// Options configures a Manager
type Options struct {
	WorkDir       string
	MaxFileSize   int64
	MaxConcurrent int
}

// Submission is a request as it arrives from the chat
type Submission struct {
	Command     string
	Origin      model.MessageRef
	RequesterID int64
	URL         string
	FormatSpec  string
	AudioOnly   bool
}

// Manager runs requests end to end
type Manager struct {
	fetcher  Fetcher
	post     PostProcessor
	out      *delivery.Adapter
	throttle *progress.Throttle
	opts     Options

	sem chan struct{}
	wg  sync.WaitGroup

	requests      map[model.RequestKey]*model.Request
	requestsMutex sync.RWMutex
	closed        bool // guarded by requestsMutex

	onUpdate  func(model.Request) // status change callback
	newPrefix func() string
	now       func() time.Time
}

// NewManager creates a manager
func NewManager(fetcher Fetcher, post PostProcessor, out *delivery.Adapter, throttle *progress.Throttle, opts Options) *Manager {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Manager{
		fetcher:   fetcher,
		post:      post,
		out:       out,
		throttle:  throttle,
		opts:      opts,
		sem:       make(chan struct{}, opts.MaxConcurrent),
		requests:  make(map[model.RequestKey]*model.Request),
		newPrefix: generatePrefix,
		now:       time.Now,
	}
}

// SetUpdateCallback sets the function called after every status change
func (m *Manager) SetUpdateCallback(callback func(model.Request)) {
	m.onUpdate = callback
}

// Handle runs one request to completion and returns its final state.
// The returned error is the terminal error already reported to the user.
// A panic inside the request is reported like any other failure.
func (m *Manager) Handle(ctx context.Context, sub Submission) (result *model.Request, err error) {
	req := &model.Request{
		Command:     sub.Command,
		Origin:      sub.Origin,
		RequesterID: sub.RequesterID,
		SourceURL:   strings.TrimSpace(sub.URL),
		FormatSpec:  sub.FormatSpec,
		AudioOnly:   sub.AudioOnly,
		Status:      model.RequestStatusValidating,
		StartedAt:   m.now(),
	}

	if req.SourceURL == "" {
		req.Status = model.RequestStatusFailed
		req.LastError = model.ErrUsage.Error()
		req.FinishedAt = m.now()
		if _, err := m.out.Reply(ctx, sub.Origin, UserMessage(model.ErrUsage, m.opts.MaxFileSize, sub.Command), delivery.Plain); err != nil {
			log.Warn().Err(err).Int64("chat_id", sub.Origin.ChatID).Msg("failed to send usage hint")
		}
		return req, model.ErrUsage
	}

	if m.isClosed() {
		req.Status = model.RequestStatusFailed
		req.LastError = ErrClosed.Error()
		req.FinishedAt = m.now()
		if _, rerr := m.out.Reply(ctx, sub.Origin, UserMessage(ErrClosed, m.opts.MaxFileSize, sub.Command), delivery.Plain); rerr != nil {
			log.Warn().Err(rerr).Int64("chat_id", sub.Origin.ChatID).Msg("failed to send shutdown notice")
		}
		return req, ErrClosed
	}

	key, err := m.out.Begin(ctx, sub.Origin, TextDownloading)
	if err != nil {
		req.Status = model.RequestStatusFailed
		req.LastError = err.Error()
		req.FinishedAt = m.now()
		log.Error().Err(err).Int64("chat_id", sub.Origin.ChatID).Msg("failed to post initial status")
		return req, err
	}
	req.Key = key
	req.Prefix = m.newPrefix()

	if !m.register(req) {
		return m.fail(ctx, req, ErrClosed)
	}
	defer m.cleanup(req)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("request_key", key.String()).Interface("panic", r).Str("stack", string(debug.Stack())).
				Msg("request panicked")
			result, err = m.fail(ctx, req, fmt.Errorf("unexpected fault: %v", r))
		}
	}()

	logger := log.With().Str("request_key", key.String()).Str("prefix", req.Prefix).Logger()
	logger.Info().Str("url", req.SourceURL).Str("format", req.FormatSpec).Bool("audio", req.AudioOnly).Msg("request accepted")

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return m.fail(ctx, req, ctx.Err())
	}

	// fetch
	m.setStatus(req, model.RequestStatusFetching)
	var fetched *download.Result
	err = m.track(ctx, key, func(events chan<- progress.Event) error {
		var ferr error
		fetched, ferr = m.fetcher.Fetch(ctx, download.Job{
			URL:        req.SourceURL,
			FormatSpec: req.FormatSpec,
			Prefix:     req.Prefix,
			AudioOnly:  req.AudioOnly,
		}, events)
		return ferr
	})
	if err != nil {
		return m.fail(ctx, req, err)
	}
	m.setTitle(req, fetched.Metadata.Title)

	artifact := fetched.Artifact
	meta := fetched.Metadata
	kind := model.MediaAudio

	// post-process
	if !req.AudioOnly {
		kind = model.MediaVideo
		m.setStatus(req, model.RequestStatusPostProcessing)

		var processed *compress.Result
		err = m.track(ctx, key, func(events chan<- progress.Event) error {
			var perr error
			processed, perr = m.post.Process(ctx, compress.Job{
				Input:  artifact,
				Title:  meta.Title,
				Events: events,
				Stage: func(stage string) {
					select {
					case events <- progress.Event{Notice: stageText(stage)}:
					case <-ctx.Done():
					}
				},
			})
			return perr
		})
		if err != nil {
			return m.fail(ctx, req, err)
		}

		artifact = processed.Artifact
		if processed.Width > 0 && processed.Height > 0 {
			meta.Width, meta.Height = processed.Width, processed.Height
		}
	}

	// deliver
	m.setStatus(req, model.RequestStatusDelivering)
	if err := m.out.ReportStatus(ctx, key, TextSending); err != nil {
		logger.Warn().Err(err).Msg("failed to report sending status")
	}

	if err := m.out.SendResult(ctx, req.Origin, artifact, kind, meta); err != nil {
		return m.fail(ctx, req, err)
	}

	if err := m.out.FinalizeStatus(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("failed to remove status message")
	}
	m.setStatus(req, model.RequestStatusDone)

	logger.Info().Str("path", artifact.Path).Int64("size", artifact.SizeBytes).Msg("request done")
	return m.snapshot(req), nil
}

// track runs stage with a progress channel drained by the throttle.
// Stage notices share the channel so they are edited in order with progress.
func (m *Manager) track(ctx context.Context, key model.RequestKey, stage func(events chan<- progress.Event) error) error {
	events := make(chan progress.Event, eventBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.throttle.Run(ctx, key, events, m.out)
	}()
	defer func() {
		close(events)
		<-done
	}()

	return stage(events)
}

func stageText(stage string) string {
	if stage == compress.StageConvert {
		return TextConverting
	}
	return TextCompressing
}

// fail reports err to the user with one status edit and marks the request failed
func (m *Manager) fail(ctx context.Context, req *model.Request, err error) (*model.Request, error) {
	text := UserMessage(err, m.opts.MaxFileSize, req.Command)

	event := log.Error()
	if errors.Is(err, model.ErrInvalidURL) || errors.Is(err, model.ErrSizeLimitExceeded) {
		event = log.Warn()
	}
	event.Err(err).Str("request_key", req.Key.String()).Str("url", req.SourceURL).Msg("request failed")

	editCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	if rerr := m.out.ReportError(editCtx, req.Key, text); rerr != nil {
		log.Warn().Err(rerr).Str("request_key", req.Key.String()).Msg("failed to report error")
	}

	m.requestsMutex.Lock()
	req.LastError = err.Error()
	m.requestsMutex.Unlock()
	m.setStatus(req, model.RequestStatusFailed)

	return m.snapshot(req), err
}

// cleanup always runs: the artifacts of the request are swept by prefix
func (m *Manager) cleanup(req *model.Request) {
	removed, err := platform.RemoveByPrefix(m.opts.WorkDir, req.Prefix)
	if err != nil {
		log.Error().Err(err).Str("request_key", req.Key.String()).Str("prefix", req.Prefix).Msg("artifact cleanup failed")
	} else if removed > 0 {
		log.Debug().Str("request_key", req.Key.String()).Int("removed", removed).Msg("artifacts removed")
	}

	m.throttle.Evict(req.Key)

	m.requestsMutex.Lock()
	delete(m.requests, req.Key)
	m.requestsMutex.Unlock()

	m.wg.Done()
}

// register adds req to the in-flight set unless the manager is closed.
// wg.Add happens under the same lock as Close so it never races Wait.
func (m *Manager) register(req *model.Request) bool {
	m.requestsMutex.Lock()
	if m.closed {
		m.requestsMutex.Unlock()
		return false
	}
	m.wg.Add(1)
	m.requests[req.Key] = req
	m.requestsMutex.Unlock()
	m.notifyUpdate(req)
	return true
}

func (m *Manager) isClosed() bool {
	m.requestsMutex.RLock()
	defer m.requestsMutex.RUnlock()
	return m.closed
}

// Close stops accepting requests. In-flight requests keep running; use Wait for them.
func (m *Manager) Close() {
	m.requestsMutex.Lock()
	m.closed = true
	m.requestsMutex.Unlock()
}

func (m *Manager) setStatus(req *model.Request, next model.RequestStatus) {
	m.requestsMutex.Lock()
	if !req.Status.CanTransition(next) {
		m.requestsMutex.Unlock()
		log.Warn().Str("request_key", req.Key.String()).Str("from", req.Status.String()).Str("to", next.String()).
			Msg("ignoring invalid status transition")
		return
	}
	req.Status = next
	if next.IsFinished() {
		req.FinishedAt = m.now()
	}
	m.requestsMutex.Unlock()
	m.notifyUpdate(req)
}

func (m *Manager) setTitle(req *model.Request, title string) {
	m.requestsMutex.Lock()
	req.Title = title
	m.requestsMutex.Unlock()
}

func (m *Manager) snapshot(req *model.Request) *model.Request {
	m.requestsMutex.RLock()
	defer m.requestsMutex.RUnlock()
	cp := *req
	return &cp
}

// notifyUpdate calls the update callback if set
func (m *Manager) notifyUpdate(req *model.Request) {
	if m.onUpdate != nil {
		m.onUpdate(*m.snapshot(req))
	}
}

// GetRequest returns a snapshot of the in-flight request with key
func (m *Manager) GetRequest(key model.RequestKey) (model.Request, bool) {
	m.requestsMutex.RLock()
	defer m.requestsMutex.RUnlock()
	req, exists := m.requests[key]
	if !exists {
		return model.Request{}, false
	}
	return *req, true
}

// GetAllRequests returns snapshots of the in-flight requests, oldest first
func (m *Manager) GetAllRequests() []model.Request {
	m.requestsMutex.RLock()
	requests := make([]model.Request, 0, len(m.requests))
	for _, req := range m.requests {
		requests = append(requests, *req)
	}
	m.requestsMutex.RUnlock()

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].StartedAt.Before(requests[j].StartedAt)
	})
	return requests
}

// Wait blocks until every in-flight request finished or ctx is done
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for requests: %w", ctx.Err())
	}
}

// Sweep removes leftovers of earlier runs from the work dir
func (m *Manager) Sweep() (int, error) {
	return platform.RemoveByPrefix(m.opts.WorkDir, ArtifactPrefix)
}

// generatePrefix generates a unique artifact prefix using UUID v7 so leftovers sort by creation time
func generatePrefix() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(ArtifactPrefix+"%d", time.Now().UnixNano())
	}
	return ArtifactPrefix + id.String()
}
