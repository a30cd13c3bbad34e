package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
	"github.com/ytget/yt-downloader-bot/internal/progress"
)

// Download constants
const (
	// OutputExtTemplate is appended to the request prefix to form the yt-dlp output template
	OutputExtTemplate = ".%(ext)s"

	// AudioFormatMP3 is the container extracted audio is converted to
	AudioFormatMP3 = "mp3"
)

// Job describes one fetch
type Job struct {
	URL        string
	FormatSpec string
	Prefix     string
	AudioOnly  bool
}

// Result is a fetched artifact plus what the extractor reported about it
type Result struct {
	Artifact model.ArtifactFile
	Metadata model.MediaMetadata
}

// Executor runs fetches into a working directory
type Executor struct {
	extractor   Extractor
	workDir     string
	maxFileSize int64
	tagger      func(path string, meta model.MediaMetadata) error
}

// NewExecutor creates an executor writing artifacts into workDir
func NewExecutor(extractor Extractor, workDir string, maxFileSize int64) *Executor {
	return &Executor{
		extractor:   extractor,
		workDir:     workDir,
		maxFileSize: maxFileSize,
		tagger:      TagAudio,
	}
}

// WorkDir returns the artifact directory
func (e *Executor) WorkDir() string {
	return e.workDir
}

// Fetch validates the job URL, downloads it and locates the produced artifact.
// Every raw progress update is forwarded to events unchanged and without
// blocking: while the channel is full updates are dropped (see progress.Forward).
// events may be nil.
func (e *Executor) Fetch(ctx context.Context, job Job, events chan<- progress.Event) (*Result, error) {
	url, err := platform.ValidateURL(job.URL)
	if err != nil {
		return nil, err
	}
	if job.Prefix == "" {
		return nil, errors.New("empty artifact prefix")
	}
	if err := platform.CreateDirectoryIfNotExists(e.workDir); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	opts := FetchOptions{
		Format:         job.FormatSpec,
		OutputTemplate: filepath.Join(e.workDir, job.Prefix+OutputExtTemplate),
		MaxFileSize:    e.maxFileSize,
	}
	if job.AudioOnly {
		opts.ExtractAudio = true
		opts.AudioFormat = AudioFormatMP3
		if opts.Format == "" {
			opts.Format = model.FormatAudio
		}
	} else if opts.Format == "" {
		opts.Format = model.FormatVideo
	}

	log.Debug().Str("url", url).Str("format", opts.Format).Str("prefix", job.Prefix).Msg("fetch started")

	fetched, err := e.extractor.Fetch(ctx, url, opts, func(p Progress) {
		progress.Forward(events, progress.Event{
			Stage: progress.StageDownloading,
			Title: p.Title,
			Done:  p.DownloadedBytes,
			Total: p.TotalBytes,
		})
	})
	if err != nil {
		if errors.Is(err, model.ErrSizeLimitExceeded) {
			return nil, err
		}
		return nil, &model.ExtractionError{URL: url, Err: err}
	}

	path, err := e.locate(job.Prefix, job.AudioOnly)
	if err != nil {
		return nil, &model.ExtractionError{URL: url, Err: err}
	}
	size, err := platform.FileSize(path)
	if err != nil {
		return nil, &model.ExtractionError{URL: url, Err: err}
	}

	meta := model.MediaMetadata{
		Title:     fetched.Title,
		Performer: fetched.Uploader,
		Width:     fetched.Width,
		Height:    fetched.Height,
		Duration:  fetched.Duration,
	}
	kind := model.ArtifactRaw
	if job.AudioOnly {
		kind = model.ArtifactAudio
		if e.tagger != nil {
			if err := e.tagger(path, meta); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("audio tagging failed")
			}
		}
	}

	log.Info().Str("path", path).Int64("size", size).Str("kind", string(kind)).Msg("fetch completed")

	return &Result{
		Artifact: model.ArtifactFile{Path: path, SizeBytes: size, Kind: kind},
		Metadata: meta,
	}, nil
}

// locate picks the artifact named exactly "<prefix>.<ext>". Intermediate
// files such as "<prefix>.f137.mp4" left by merges are not candidates.
func (e *Executor) locate(prefix string, audio bool) (string, error) {
	files, err := platform.FindByPrefix(e.workDir, prefix)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, f := range files {
		name := filepath.Base(f)
		if strings.TrimSuffix(name, filepath.Ext(name)) == prefix {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no artifact with prefix %s", prefix)
	}
	if audio {
		for _, c := range candidates {
			if strings.EqualFold(filepath.Ext(c), "."+AudioFormatMP3) {
				return c, nil
			}
		}
	}
	return candidates[0], nil
}
