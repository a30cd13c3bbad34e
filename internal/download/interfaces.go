package download

import (
	"context"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// Extractor is the extraction collaborator: it understands remote platforms
// and yields metadata or downloaded files.
type Extractor interface {
	// Probe returns metadata and formats without downloading media.
	Probe(ctx context.Context, url string) (*ProbeResult, error)

	// Fetch downloads url according to opts. It returns an error wrapping
	// model.ErrSizeLimitExceeded when the size ceiling aborted the download.
	Fetch(ctx context.Context, url string, opts FetchOptions, onProgress func(Progress)) (*FetchResult, error)
}

// FetchOptions configures a single fetch
type FetchOptions struct {
	Format         string
	OutputTemplate string // yt-dlp output template, e.g. "outputs/dl-x.%(ext)s"
	MaxFileSize    int64  // bytes, 0 disables the ceiling
	ExtractAudio   bool
	AudioFormat    string
}

// Progress is the extractor-native progress observation
type Progress struct {
	Title           string
	DownloadedBytes int64
	TotalBytes      int64
}

// ProbeResult is what the extractor knows about a URL before downloading
type ProbeResult struct {
	Title     string
	Thumbnail string
	Formats   []model.FormatDescriptor
}

// FetchResult is the metadata of a finished fetch
type FetchResult struct {
	Title    string
	Uploader string
	Width    int
	Height   int
	Duration int // seconds
}
