package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-downloader-bot/internal/model"
)

// yt-dlp constants
const (
	// ProgressFrequency is how often yt-dlp reports progress to the callback
	ProgressFrequency = 500 * time.Millisecond

	// MaxFileSizeMarker is printed by yt-dlp when --max-filesize aborts a download
	MaxFileSizeMarker = "larger than max-filesize"

	// NoneCodec marks a missing stream in yt-dlp format listings
	NoneCodec = "none"

	// MergeFormatMP4 is the container for merged video+audio selections
	MergeFormatMP4 = "mp4"
)

// YTDLP implements Extractor with the yt-dlp binary
type YTDLP struct {
	executable string
}

// NewYTDLP creates an extractor. An empty executable uses yt-dlp from PATH.
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

func (y *YTDLP) command() *ytdlp.Command {
	dl := ytdlp.New()
	if y.executable != "" {
		dl.SetExecutable(y.executable)
	}
	return dl
}

// Probe implements Extractor
func (y *YTDLP) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	dl := y.command().
		NoPlaylist().
		SkipDownload().
		DumpJSON()

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp probe: %w", withStderr(err, res))
	}

	info, err := parseInfo(res.Stdout)
	if err != nil {
		return nil, err
	}

	return &ProbeResult{
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Formats:   info.descriptors(),
	}, nil
}

// Fetch implements Extractor
func (y *YTDLP) Fetch(ctx context.Context, url string, opts FetchOptions, onProgress func(Progress)) (*FetchResult, error) {
	dl := y.command().
		NoPlaylist().
		ForceOverwrites().
		PrintJSON().
		Progress().
		Format(opts.Format).
		Output(opts.OutputTemplate)

	if opts.MaxFileSize > 0 {
		dl.MaxFileSize(strconv.FormatInt(opts.MaxFileSize, 10))
	}
	if opts.ExtractAudio {
		dl.ExtractAudio()
		if opts.AudioFormat != "" {
			dl.AudioFormat(opts.AudioFormat)
		}
	} else {
		dl.MergeOutputFormat(MergeFormatMP4)
	}

	if onProgress != nil {
		dl.ProgressFunc(ProgressFrequency, func(update ytdlp.ProgressUpdate) {
			if update.Status != ytdlp.ProgressStatusDownloading {
				return
			}
			p := Progress{
				DownloadedBytes: int64(update.DownloadedBytes),
				TotalBytes:      int64(update.TotalBytes),
			}
			if update.Info != nil && update.Info.Title != nil {
				p.Title = *update.Info.Title
			}
			onProgress(p)
		})
	}

	res, err := dl.Run(ctx, url)
	if res != nil && strings.Contains(res.Stdout+res.Stderr, MaxFileSizeMarker) {
		return nil, fmt.Errorf("yt-dlp aborted: %w", model.ErrSizeLimitExceeded)
	}
	if err != nil {
		return nil, fmt.Errorf("yt-dlp fetch: %w", withStderr(err, res))
	}

	info, err := parseInfo(res.Stdout)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Title:    info.Title,
		Uploader: info.Uploader,
		Width:    int(info.Width),
		Height:   int(info.Height),
		Duration: int(info.Duration),
	}, nil
}

// ytdlpInfo is the subset of the yt-dlp info JSON the bot uses
type ytdlpInfo struct {
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Uploader  string        `json:"uploader"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Duration  float64       `json:"duration"`
	Formats   []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID   string  `json:"format_id"`
	Resolution string  `json:"resolution"`
	Height     float64 `json:"height"`
	Ext        string  `json:"ext"`
	VideoExt   string  `json:"video_ext"`
	AudioExt   string  `json:"audio_ext"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
}

// parseInfo finds the last JSON object line in yt-dlp output
func parseInfo(output string) (*ytdlpInfo, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info ytdlpInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}
		return &info, nil
	}
	return nil, errors.New("no info json in yt-dlp output")
}

func (i *ytdlpInfo) descriptors() []model.FormatDescriptor {
	out := make([]model.FormatDescriptor, 0, len(i.Formats))
	for _, f := range i.Formats {
		if f.FormatID == "" {
			continue
		}
		hasVideo := streamPresent(f.VideoExt, f.VCodec)
		hasAudio := streamPresent(f.AudioExt, f.ACodec)
		out = append(out, model.FormatDescriptor{
			FormatID:   f.FormatID,
			Resolution: f.Resolution,
			Height:     int(f.Height),
			Ext:        f.Ext,
			HasVideo:   hasVideo,
			HasAudio:   hasAudio,
		})
	}
	return out
}

// streamPresent prefers the *_ext field and falls back to the codec when
// the extractor did not report an extension.
func streamPresent(ext, codec string) bool {
	if ext != "" {
		return ext != NoneCodec
	}
	return codec != "" && codec != NoneCodec
}

func withStderr(err error, res *ytdlp.Result) error {
	if res == nil {
		return err
	}
	stderr := strings.TrimSpace(res.Stderr)
	if stderr == "" {
		return err
	}
	if idx := strings.LastIndex(stderr, "\n"); idx >= 0 {
		stderr = stderr[idx+1:]
	}
	return fmt.Errorf("%w: %s", err, stderr)
}
