package compress

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executable and I/O constants
const (
	FFmpegCommand      = "ffmpeg"
	FFprobeCommand     = "ffprobe"
	FFprobeLogLevel    = "error"
	FFprobeShowEntries = "stream=width,height:format=duration"
	FFprobeStreams     = "v:0"
	FFprobeOutputJSON  = "json"
	ProgressPipeTarget = "pipe:2"
	ProgressTimePrefix = "out_time_us="

	maxStderrLine = 1024 * 1024
)

// FFmpeg implements Runner with the ffmpeg and ffprobe binaries
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates a runner. Empty paths fall back to the binaries in PATH.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if ffprobePath == "" {
		ffprobePath = FFprobeCommand
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Transcode implements Runner
func (f *FFmpeg) Transcode(ctx context.Context, args []string, onProgress func(outTimeUs int64)) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	// Setup progress monitoring
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// stderr must be drained before Wait closes it
	tail := monitorProgress(stderr, onProgress)

	if err := cmd.Wait(); err != nil {
		if tail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, tail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// Probe implements Runner
func (f *FFmpeg) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", FFprobeLogLevel,
		"-select_streams", FFprobeStreams,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputJSON,
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return parseProbeOutput(output)
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbeOutput(output []byte) (*MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	if len(out.Streams) > 0 {
		info.Width = out.Streams[0].Width
		info.Height = out.Streams[0].Height
	}
	if d := strings.TrimSpace(out.Format.Duration); d != "" {
		duration, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = duration
	}
	return info, nil
}

// monitorProgress reads ffmpeg's -progress output until EOF and returns the
// last line that was not a progress key, usually the error message. stderr is
// always read to EOF, even after a line too long to scan.
func monitorProgress(stderr io.Reader, onProgress func(int64)) string {
	var last string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxStderrLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if us, ok := parseOutTime(line); ok {
			if onProgress != nil {
				onProgress(us)
			}
			continue
		}
		if line != "" && !strings.Contains(line, "=") {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Msg("ffmpeg stderr scan stopped, discarding the rest")
		io.Copy(io.Discard, stderr)
	}
	return last
}

// parseOutTime parses "out_time_us=123456"
func parseOutTime(line string) (int64, bool) {
	if !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return us, true
}
