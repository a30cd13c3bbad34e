package compress

import (
	"context"
)

// Runner defines the interface for the transcoding binaries.
type Runner interface {
	// Transcode runs ffmpeg with args. onProgress receives the output
	// position in microseconds whenever ffmpeg reports it.
	Transcode(ctx context.Context, args []string, onProgress func(outTimeUs int64)) error

	// Probe reads dimensions and duration of the media at path.
	Probe(ctx context.Context, path string) (*MediaInfo, error)
}

// MediaInfo is what ffprobe reports about a file
type MediaInfo struct {
	Width    int
	Height   int
	Duration float64 // seconds
}
