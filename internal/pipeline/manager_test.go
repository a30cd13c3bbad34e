package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ytget/yt-downloader-bot/internal/compress"
	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/delivery/deliverytest"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/progress"
)

const (
	testURL     = "https://youtu.be/dQw4w9WgXcQ"
	testCeiling = 50_000_000
)

var testOrigin = model.MessageRef{ChatID: 42, MessageID: 7}

type fakeFetcher struct {
	calls int32
	fetch func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fetch(ctx, job, events)
}

type fakePost struct {
	calls   int32
	process func(ctx context.Context, job compress.Job) (*compress.Result, error)
}

func (f *fakePost) Process(ctx context.Context, job compress.Job) (*compress.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.process(ctx, job)
}

// writeArtifact creates <prefix><suffix> in dir
func writeArtifact(t *testing.T, dir, prefix, suffix string) model.ArtifactFile {
	t.Helper()
	path := filepath.Join(dir, prefix+suffix)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
	return model.ArtifactFile{Path: path, SizeBytes: 5}
}

func fetchWriting(t *testing.T, dir, ext string, meta model.MediaMetadata) func(context.Context, download.Job, chan<- progress.Event) (*download.Result, error) {
	return func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
		events <- progress.Event{Title: meta.Title, Done: 50, Total: 100}
		art := writeArtifact(t, dir, job.Prefix, ext)
		art.Kind = model.ArtifactRaw
		if job.AudioOnly {
			art.Kind = model.ArtifactAudio
		}
		return &download.Result{Artifact: art, Metadata: meta}, nil
	}
}

func postWriting(t *testing.T) func(context.Context, compress.Job) (*compress.Result, error) {
	return func(ctx context.Context, job compress.Job) (*compress.Result, error) {
		job.Stage(compress.StageCompress)
		base := strings.TrimSuffix(job.Input.Path, filepath.Ext(job.Input.Path))
		writeArtifact(t, "", base, "-compressed.mp4")
		job.Stage(compress.StageConvert)
		out := writeArtifact(t, "", base, "-converted.mp4")
		out.Kind = model.ArtifactConverted
		return &compress.Result{Artifact: out, Width: 640, Height: 360, Passes: 1}, nil
	}
}

func newTestManager(t *testing.T, fetcher Fetcher, post PostProcessor, maxConcurrent int) (*Manager, *deliverytest.Transport, string) {
	t.Helper()
	dir := t.TempDir()
	tr := deliverytest.New()
	m := NewManager(fetcher, post, delivery.NewAdapter(tr), progress.NewThrottle(progress.NewMemoryStore(), time.Hour), Options{
		WorkDir:       dir,
		MaxFileSize:   testCeiling,
		MaxConcurrent: maxConcurrent,
	})
	var n int32
	m.newPrefix = func() string {
		return ArtifactPrefix + "test-" + string(rune('a'+atomic.AddInt32(&n, 1)))
	}
	return m, tr, dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected no leftover artifacts, got %v", names)
	}
}

func editTexts(tr *deliverytest.Transport) []string {
	var out []string
	for _, c := range tr.CallsOf("edit") {
		out = append(out, c.Text)
	}
	return out
}

func TestHandle_VideoSuccess(t *testing.T) {
	fetcher := &fakeFetcher{}
	post := &fakePost{}
	m, tr, dir := newTestManager(t, fetcher, post, 1)
	fetcher.fetch = fetchWriting(t, dir, ".webm", model.MediaMetadata{Title: "Clip", Width: 1920, Height: 1080})
	post.process = postWriting(t)

	var statuses []model.RequestStatus
	m.SetUpdateCallback(func(r model.Request) { statuses = append(statuses, r.Status) })

	req, err := m.Handle(context.Background(), Submission{Command: "download", Origin: testOrigin, RequesterID: 1, URL: testURL, FormatSpec: model.FormatVideo})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Status != model.RequestStatusDone {
		t.Errorf("Expected Done, got %s", req.Status)
	}
	if req.Title != "Clip" {
		t.Errorf("Expected title Clip, got %s", req.Title)
	}

	wantOps := []string{"reply", "edit", "edit", "edit", "edit", "video", "delete"}
	gotOps := tr.Ops()
	if strings.Join(gotOps, ",") != strings.Join(wantOps, ",") {
		t.Errorf("Expected ops %v, got %v", wantOps, gotOps)
	}

	wantEdits := []string{"Downloading Clip\n\n50%", TextCompressing, TextConverting, TextSending}
	if strings.Join(editTexts(tr), "|") != strings.Join(wantEdits, "|") {
		t.Errorf("Expected edits %q, got %q", wantEdits, editTexts(tr))
	}

	video := tr.CallsOf("video")[0]
	if video.Msg != testOrigin {
		t.Errorf("Expected reply to origin, got %v", video.Msg)
	}
	if video.Meta.Width != 640 || video.Meta.Height != 360 {
		t.Errorf("Expected post-processed dimensions 640x360, got %dx%d", video.Meta.Width, video.Meta.Height)
	}
	if !strings.HasSuffix(video.Path, "-converted.mp4") {
		t.Errorf("Expected converted artifact, got %s", video.Path)
	}

	if tr.CallsOf("delete")[0].Msg != req.Key.Message() {
		t.Errorf("Expected status message deletion, got %v", tr.CallsOf("delete")[0].Msg)
	}

	wantStatuses := []model.RequestStatus{
		model.RequestStatusValidating,
		model.RequestStatusFetching,
		model.RequestStatusPostProcessing,
		model.RequestStatusDelivering,
		model.RequestStatusDone,
	}
	if len(statuses) != len(wantStatuses) {
		t.Fatalf("Expected statuses %v, got %v", wantStatuses, statuses)
	}
	for i := range wantStatuses {
		if statuses[i] != wantStatuses[i] {
			t.Errorf("Status %d: expected %s, got %s", i, wantStatuses[i], statuses[i])
		}
	}

	assertEmptyDir(t, dir)
	if len(m.GetAllRequests()) != 0 {
		t.Error("Expected no in-flight requests after completion")
	}
}

func TestHandle_AudioSkipsPostProcessing(t *testing.T) {
	fetcher := &fakeFetcher{}
	post := &fakePost{process: postWriting(t)}
	m, tr, dir := newTestManager(t, fetcher, post, 1)
	fetcher.fetch = fetchWriting(t, dir, ".mp3", model.MediaMetadata{Title: "Song", Performer: "Band"})

	_, err := m.Handle(context.Background(), Submission{Command: "audio", Origin: testOrigin, URL: testURL, FormatSpec: model.FormatAudio, AudioOnly: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if atomic.LoadInt32(&post.calls) != 0 {
		t.Errorf("Expected no post-processing for audio, got %d calls", post.calls)
	}
	audio := tr.CallsOf("audio")
	if len(audio) != 1 {
		t.Fatalf("Expected one audio message, got %v", tr.Ops())
	}
	if audio[0].Meta.Title != "Song" || audio[0].Meta.Performer != "Band" {
		t.Errorf("Unexpected audio metadata: %+v", audio[0].Meta)
	}
	for _, text := range editTexts(tr) {
		if text == TextCompressing || text == TextConverting {
			t.Errorf("Unexpected post-processing status %q", text)
		}
	}
	assertEmptyDir(t, dir)
}

func TestHandle_PanicIsReportedAndCleanedUp(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, tr, dir := newTestManager(t, fetcher, &fakePost{}, 1)
	fetcher.fetch = func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
		writeArtifact(t, dir, job.Prefix, ".mp4.part")
		panic("extractor state corrupted")
	}

	var (
		req *model.Request
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Expected Handle to contain the panic, got %v", r)
			}
		}()
		req, err = m.Handle(context.Background(), Submission{Command: "download", Origin: testOrigin, URL: testURL})
	}()

	if err == nil || !strings.Contains(err.Error(), "extractor state corrupted") {
		t.Errorf("Expected the fault as error, got %v", err)
	}
	if req == nil || req.Status != model.RequestStatusFailed {
		t.Fatalf("Expected Failed request, got %+v", req)
	}

	edits := tr.CallsOf("edit")
	if len(edits) == 0 {
		t.Fatalf("Expected an error edit, got ops %v", tr.Ops())
	}
	last := edits[len(edits)-1]
	if last.Text != "There was an error downloading your video, make sure it doesn't exceed *50MB*" {
		t.Errorf("Unexpected error text %q", last.Text)
	}
	if last.Format != delivery.Markdown {
		t.Error("Expected error edit in markdown")
	}
	assertEmptyDir(t, dir)
	if len(m.GetAllRequests()) != 0 {
		t.Error("Expected no in-flight requests after a panic")
	}

	// the semaphore slot was released
	fetcher.fetch = fetchWriting(t, dir, ".mp3", model.MediaMetadata{Title: "Next"})
	if _, err := m.Handle(context.Background(), Submission{Origin: testOrigin, URL: testURL, AudioOnly: true}); err != nil {
		t.Errorf("Expected the next request to succeed, got %v", err)
	}
}

func TestHandle_ConvertNoticeFollowsCompressProgress(t *testing.T) {
	fetcher := &fakeFetcher{}
	post := &fakePost{}
	m, tr, dir := newTestManager(t, fetcher, post, 1)
	m.throttle = progress.NewThrottle(progress.NewMemoryStore(), time.Nanosecond)
	fetcher.fetch = fetchWriting(t, dir, ".webm", model.MediaMetadata{Title: "Clip"})
	post.process = func(ctx context.Context, job compress.Job) (*compress.Result, error) {
		job.Stage(compress.StageCompress)
		for i := int64(1); i <= 10; i++ {
			select {
			case job.Events <- progress.Event{Stage: progress.StageCompressing, Title: "Clip", Done: i, Total: 10}:
			default:
			}
		}
		job.Stage(compress.StageConvert)
		base := strings.TrimSuffix(job.Input.Path, filepath.Ext(job.Input.Path))
		out := writeArtifact(t, "", base, "-converted.mp4")
		return &compress.Result{Artifact: out}, nil
	}

	if _, err := m.Handle(context.Background(), Submission{Origin: testOrigin, URL: testURL}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	edits := editTexts(tr)
	converting := -1
	for i, text := range edits {
		if text == TextConverting && converting < 0 {
			converting = i
		}
		if converting >= 0 && strings.HasPrefix(text, progress.StageCompressing+" Clip") {
			t.Errorf("Compress progress %q edited after %q: %q", text, TextConverting, edits)
		}
	}
	if converting < 0 {
		t.Errorf("Expected a converting status, got %q", edits)
	}
}

func TestClose_RejectsNewRequests(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, tr, dir := newTestManager(t, fetcher, &fakePost{}, 1)
	fetcher.fetch = fetchWriting(t, dir, ".mp3", model.MediaMetadata{})

	m.Close()
	req, err := m.Handle(context.Background(), Submission{Origin: testOrigin, URL: testURL, AudioOnly: true})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed, got %v", err)
	}
	if req.Status != model.RequestStatusFailed {
		t.Errorf("Expected Failed, got %s", req.Status)
	}
	if atomic.LoadInt32(&fetcher.calls) != 0 {
		t.Error("Expected no fetch after Close")
	}
	replies := tr.CallsOf("reply")
	if len(replies) != 1 || replies[0].Text != TextShuttingDown {
		t.Errorf("Expected shutdown notice, got %+v", replies)
	}
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Expected Wait to return at once, got %v", err)
	}
}

func TestHandle_MissingURLIsUsageError(t *testing.T) {
	fetcher := &fakeFetcher{}
	m, tr, _ := newTestManager(t, fetcher, &fakePost{}, 1)

	req, err := m.Handle(context.Background(), Submission{Command: "audio", Origin: testOrigin, URL: "  "})
	if !errors.Is(err, model.ErrUsage) {
		t.Fatalf("Expected ErrUsage, got %v", err)
	}
	if req.Status != model.RequestStatusFailed {
		t.Errorf("Expected Failed, got %s", req.Status)
	}
	if atomic.LoadInt32(&fetcher.calls) != 0 {
		t.Error("Expected no fetch for a usage error")
	}

	replies := tr.CallsOf("reply")
	if len(replies) != 1 || replies[0].Text != "Invalid usage, use /audio url" {
		t.Errorf("Expected usage reply, got %+v", replies)
	}
}

func TestHandle_TerminalErrors(t *testing.T) {
	tests := []struct {
		name      string
		fetchErr  error
		postErr   error
		videoErr  error
		wantText  string
		wantVideo int
	}{
		{
			name:     "invalid url",
			fetchErr: model.ErrInvalidURL,
			wantText: TextInvalidURL,
		},
		{
			name:     "extraction",
			fetchErr: &model.ExtractionError{URL: testURL, Err: errors.New("removed")},
			wantText: "There was an error downloading your video, make sure it doesn't exceed *50MB*",
		},
		{
			name:     "transcode",
			postErr:  &model.TranscodeError{Stage: compress.StageConvert, Err: errors.New("bad stream")},
			wantText: "There was an error downloading your video, make sure it doesn't exceed *50MB*",
		},
		{
			name:      "delivery",
			videoErr:  errors.New("Request Entity Too Large"),
			wantText:  "Couldn't send file, make sure it's supported by Telegram and it doesn't exceed *50MB*",
			wantVideo: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			post := &fakePost{}
			m, tr, dir := newTestManager(t, fetcher, post, 1)
			tr.ErrVideo = tt.videoErr

			ok := fetchWriting(t, dir, ".webm", model.MediaMetadata{Title: "Clip"})
			fetcher.fetch = func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
				res, err := ok(ctx, job, events)
				if tt.fetchErr != nil {
					return nil, tt.fetchErr
				}
				return res, err
			}
			post.process = func(ctx context.Context, job compress.Job) (*compress.Result, error) {
				if tt.postErr != nil {
					return nil, tt.postErr
				}
				return postWriting(t)(ctx, job)
			}

			req, err := m.Handle(context.Background(), Submission{Command: "download", Origin: testOrigin, URL: testURL})
			if err == nil {
				t.Fatal("Expected an error")
			}
			if req.Status != model.RequestStatusFailed || req.LastError == "" {
				t.Errorf("Expected Failed with error, got %s %q", req.Status, req.LastError)
			}

			edits := tr.CallsOf("edit")
			last := edits[len(edits)-1]
			if last.Text != tt.wantText {
				t.Errorf("Expected final edit %q, got %q", tt.wantText, last.Text)
			}
			if last.Format != delivery.Markdown {
				t.Error("Expected error edit in markdown")
			}
			if got := len(tr.CallsOf("video")); got != tt.wantVideo {
				t.Errorf("Expected %d send attempts, got %d", tt.wantVideo, got)
			}
			if len(tr.CallsOf("delete")) != 0 {
				t.Error("Expected the status message to stay with the error")
			}
			assertEmptyDir(t, dir)
		})
	}
}

// sizeLimitExtractor leaves a partial file behind and aborts like yt-dlp does
type sizeLimitExtractor struct {
	calls int32
}

func (s *sizeLimitExtractor) Probe(ctx context.Context, url string) (*download.ProbeResult, error) {
	return nil, errors.New("not used")
}

func (s *sizeLimitExtractor) Fetch(ctx context.Context, url string, opts download.FetchOptions, onProgress func(download.Progress)) (*download.FetchResult, error) {
	atomic.AddInt32(&s.calls, 1)
	partial := strings.Replace(opts.OutputTemplate, download.OutputExtTemplate, ".mp4.part", 1)
	if err := os.WriteFile(partial, []byte("half"), 0644); err != nil {
		return nil, err
	}
	return nil, model.ErrSizeLimitExceeded
}

func TestHandle_SizeLimitWithRealExecutor(t *testing.T) {
	ext := &sizeLimitExtractor{}
	dir := t.TempDir()
	tr := deliverytest.New()
	m := NewManager(download.NewExecutor(ext, dir, testCeiling), &fakePost{}, delivery.NewAdapter(tr),
		progress.NewThrottle(progress.NewMemoryStore(), time.Hour), Options{WorkDir: dir, MaxFileSize: testCeiling})

	_, err := m.Handle(context.Background(), Submission{Command: "download", Origin: testOrigin, URL: testURL})
	if !errors.Is(err, model.ErrSizeLimitExceeded) {
		t.Fatalf("Expected ErrSizeLimitExceeded, got %v", err)
	}

	texts := editTexts(tr)
	if len(texts) == 0 || !strings.Contains(texts[len(texts)-1], "*50MB*") {
		t.Errorf("Expected the ceiling in megabytes, got %q", texts)
	}
	assertEmptyDir(t, dir)
}

func TestHandle_InvalidURLNeverReachesExtractor(t *testing.T) {
	ext := &sizeLimitExtractor{}
	dir := t.TempDir()
	tr := deliverytest.New()
	m := NewManager(download.NewExecutor(ext, dir, testCeiling), &fakePost{}, delivery.NewAdapter(tr),
		progress.NewThrottle(progress.NewMemoryStore(), time.Hour), Options{WorkDir: dir, MaxFileSize: testCeiling})

	_, err := m.Handle(context.Background(), Submission{Command: "download", Origin: testOrigin, URL: "https://youtu.be/short"})
	if !errors.Is(err, model.ErrInvalidURL) {
		t.Fatalf("Expected ErrInvalidURL, got %v", err)
	}
	if atomic.LoadInt32(&ext.calls) != 0 {
		t.Errorf("Expected no extractor calls, got %d", ext.calls)
	}
	texts := editTexts(tr)
	if texts[len(texts)-1] != TextInvalidURL {
		t.Errorf("Expected %q, got %q", TextInvalidURL, texts)
	}
}

func TestHandle_BoundedConcurrency(t *testing.T) {
	var running, peak int32
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	m, _, dir := newTestManager(t, fetcher, &fakePost{}, 1)
	fetcher.fetch = func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		art := writeArtifact(t, dir, job.Prefix, ".mp3")
		return &download.Result{Artifact: art}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			origin := model.MessageRef{ChatID: int64(i + 1), MessageID: 1}
			m.Handle(context.Background(), Submission{Origin: origin, URL: testURL, AudioOnly: true})
		}(i)
	}

	// all three requests register before any fetch is released
	deadline := time.Now().Add(2 * time.Second)
	for len(m.GetAllRequests()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := len(m.GetAllRequests()); got != 3 {
		t.Fatalf("Expected 3 in-flight requests, got %d", got)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got != 1 {
		t.Errorf("Expected at most 1 concurrent fetch, got %d", got)
	}
	assertEmptyDir(t, dir)
}

func TestWait(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	m, _, dir := newTestManager(t, fetcher, &fakePost{}, 1)
	fetcher.fetch = func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
		<-release
		return &download.Result{Artifact: writeArtifact(t, dir, job.Prefix, ".mp3")}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Handle(context.Background(), Submission{Origin: testOrigin, URL: testURL, AudioOnly: true})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.GetAllRequests()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx); err == nil {
		t.Error("Expected Wait to time out while a request is running")
	}

	close(release)
	<-done
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Expected Wait to return after completion, got %v", err)
	}
}

func TestGetRequest(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{}
	m, tr, dir := newTestManager(t, fetcher, &fakePost{}, 1)
	fetcher.fetch = func(ctx context.Context, job download.Job, events chan<- progress.Event) (*download.Result, error) {
		<-release
		return &download.Result{Artifact: writeArtifact(t, dir, job.Prefix, ".mp3")}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Handle(context.Background(), Submission{Origin: testOrigin, URL: testURL, AudioOnly: true})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.GetAllRequests()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if len(tr.CallsOf("reply")) != 1 {
		t.Fatalf("Expected the initial status reply, got %v", tr.Ops())
	}
	all := m.GetAllRequests()
	if len(all) != 1 {
		t.Fatalf("Expected one request, got %d", len(all))
	}
	got, ok := m.GetRequest(all[0].Key)
	if !ok || got.SourceURL != testURL || !got.AudioOnly {
		t.Errorf("Unexpected request snapshot: %+v", got)
	}
	if _, ok := m.GetRequest(model.RequestKey{ChatID: 1, MessageID: 1}); ok {
		t.Error("Expected unknown key to be missing")
	}

	close(release)
	<-done
}

func TestSweep(t *testing.T) {
	m, _, dir := newTestManager(t, &fakeFetcher{}, &fakePost{}, 1)
	writeArtifact(t, dir, ArtifactPrefix+"old", ".mp4")
	writeArtifact(t, dir, ArtifactPrefix+"old", ".mp4.part")
	writeArtifact(t, dir, "keep", ".txt")

	removed, err := m.Sweep()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed files, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.txt")); err != nil {
		t.Error("Expected unrelated files to stay")
	}
}

func TestGeneratePrefix(t *testing.T) {
	a, b := generatePrefix(), generatePrefix()
	if !strings.HasPrefix(a, ArtifactPrefix) {
		t.Errorf("Expected prefix %s, got %s", ArtifactPrefix, a)
	}
	if a == b {
		t.Error("Expected unique prefixes")
	}
}
