package compress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/platform"
	"github.com/ytget/yt-downloader-bot/internal/progress"
)

// FFmpeg constants for compression settings
const (
	// Video codec settings
	VideoCodec  = "libx264"
	VideoPreset = "veryfast"
	CopyCodec   = "copy"

	// Audio codec settings
	AudioCodec   = "aac"
	AudioBitrate = "128k"

	// Container flags
	FastStartFlag = "+faststart"

	// Output suffixes
	ConvertedSuffix    = "-converted"
	OutputExtensionMP4 = ".mp4"

	// MaxPasses bounds the compress ladder
	MaxPasses = 2
)

// Stage names carried by TranscodeError and reported to the user
const (
	StageProbe    = "probe"
	StageCompress = "compress"
	StageConvert  = "convert"
)

// Pass is one rung of the compress ladder
type Pass struct {
	Name         string
	Width        int
	VideoBitrate string
	AudioBitrate string
	Suffix       string
}

// Ladder lists the compress passes in the order they are tried
var Ladder = [MaxPasses]Pass{
	{Name: "standard", Width: 640, VideoBitrate: "1M", AudioBitrate: AudioBitrate, Suffix: "-compressed"},
	{Name: "aggressive", Width: 426, VideoBitrate: "500k", AudioBitrate: "64k", Suffix: "-compressed-min"},
}

// Job is one post-processing run
type Job struct {
	Input  model.ArtifactFile
	Title  string
	Events chan<- progress.Event // optional, receives transcoding progress
	Stage  func(stage string)    // optional, called when a stage starts
}

// Result is the final artifact plus the dimensions measured on it
type Result struct {
	Artifact model.ArtifactFile
	Width    int
	Height   int
	Passes   int
}

// Pipeline runs compress and convert over fetched video
type Pipeline struct {
	runner  Runner
	ceiling int64
}

// NewPipeline creates a pipeline whose compress ladder targets ceiling bytes
func NewPipeline(runner Runner, ceiling int64) *Pipeline {
	return &Pipeline{runner: runner, ceiling: ceiling}
}

// Process compresses the input, retries once more aggressively when the
// result is still over the ceiling, then converts for transport. The input
// artifact is left in place for the caller's prefix cleanup.
func (p *Pipeline) Process(ctx context.Context, job Job) (*Result, error) {
	if _, err := os.Stat(job.Input.Path); err != nil {
		return nil, &model.TranscodeError{Stage: StageProbe, Err: fmt.Errorf("input file does not exist: %w", err)}
	}

	info, err := p.runner.Probe(ctx, job.Input.Path)
	if err != nil {
		return nil, &model.TranscodeError{Stage: StageProbe, Err: err}
	}

	notify(job, StageCompress)
	compressed, passes, err := p.reduce(ctx, job, info.Duration)
	if err != nil {
		return nil, err
	}

	notify(job, StageConvert)
	converted, err := p.convert(ctx, job, compressed, info.Duration)
	if err != nil {
		return nil, err
	}

	final, err := p.runner.Probe(ctx, converted.Path)
	if err != nil {
		return nil, &model.TranscodeError{Stage: StageProbe, Err: err}
	}

	if p.ceiling > 0 && converted.SizeBytes > p.ceiling {
		log.Warn().Str("path", converted.Path).Int64("size", converted.SizeBytes).Int64("ceiling", p.ceiling).
			Msg("artifact still over ceiling after compress ladder")
	}

	return &Result{
		Artifact: *converted,
		Width:    final.Width,
		Height:   final.Height,
		Passes:   passes,
	}, nil
}

// reduce walks the ladder. Every pass encodes from the raw input and the
// walk stops at the first result within the ceiling or after the last pass.
func (p *Pipeline) reduce(ctx context.Context, job Job, duration float64) (*model.ArtifactFile, int, error) {
	var out *model.ArtifactFile
	for i, pass := range Ladder {
		if out != nil {
			os.Remove(out.Path)
		}

		outputPath := generateOutputPath(job.Input.Path, pass.Suffix)
		args := BuildCompressArgs(job.Input.Path, outputPath, pass)
		if err := p.run(ctx, job, args, outputPath, duration); err != nil {
			return nil, i + 1, &model.TranscodeError{Stage: StageCompress, Err: fmt.Errorf("pass %s: %w", pass.Name, err)}
		}

		size, err := platform.FileSize(outputPath)
		if err != nil {
			return nil, i + 1, &model.TranscodeError{Stage: StageCompress, Err: err}
		}
		out = &model.ArtifactFile{Path: outputPath, SizeBytes: size, Kind: model.ArtifactCompressed}

		log.Debug().Str("pass", pass.Name).Int64("size", size).Int64("ceiling", p.ceiling).Msg("compress pass finished")

		if !p.overCeiling(size) {
			return out, i + 1, nil
		}
	}
	return out, len(Ladder), nil
}

func (p *Pipeline) convert(ctx context.Context, job Job, input *model.ArtifactFile, duration float64) (*model.ArtifactFile, error) {
	outputPath := generateOutputPath(job.Input.Path, ConvertedSuffix)
	args := BuildConvertArgs(input.Path, outputPath)
	if err := p.run(ctx, job, args, outputPath, duration); err != nil {
		return nil, &model.TranscodeError{Stage: StageConvert, Err: err}
	}

	size, err := platform.FileSize(outputPath)
	if err != nil {
		return nil, &model.TranscodeError{Stage: StageConvert, Err: err}
	}
	return &model.ArtifactFile{Path: outputPath, SizeBytes: size, Kind: model.ArtifactConverted}, nil
}

// run executes one ffmpeg invocation and removes its partial output on failure
func (p *Pipeline) run(ctx context.Context, job Job, args []string, outputPath string, duration float64) error {
	total := int64(duration * 1_000_000)
	err := p.runner.Transcode(ctx, args, func(outTimeUs int64) {
		progress.Forward(job.Events, progress.Event{Stage: progress.StageCompressing, Title: job.Title, Done: outTimeUs, Total: total})
	})
	if err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Str("path", outputPath).Msg("failed to remove partial output")
		}
		return err
	}
	return nil
}

func (p *Pipeline) overCeiling(size int64) bool {
	return p.ceiling > 0 && size > p.ceiling
}

func notify(job Job, stage string) {
	if job.Stage != nil {
		job.Stage(stage)
	}
}

// BuildCompressArgs builds the ffmpeg arguments for one ladder pass
func BuildCompressArgs(inputPath, outputPath string, pass Pass) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vf", fmt.Sprintf("scale=%d:-2", pass.Width), // Keep aspect, even height
		"-c:v", VideoCodec, // Video codec
		"-preset", VideoPreset, // Encoding preset
		"-b:v", pass.VideoBitrate, // Video bitrate ceiling
		"-maxrate", pass.VideoBitrate,
		"-bufsize", pass.VideoBitrate,
		"-c:a", AudioCodec, // Audio codec
		"-b:a", pass.AudioBitrate, // Audio bitrate
		"-movflags", FastStartFlag, // MP4 optimization
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats",
		outputPath,
	}
}

// BuildConvertArgs builds the ffmpeg arguments that normalize the container
// to an h264/aac mp4 playable inline by chat clients
func BuildConvertArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-map", "0:v:0",
		"-map", "0:a:0?",
		"-c:v", CopyCodec,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// generateOutputPath derives a sibling path so the request prefix is kept
func generateOutputPath(inputPath, suffix string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	return baseName + suffix + OutputExtensionMP4
}
