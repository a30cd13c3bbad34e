// Package compress implements the post-processing pipeline for fetched video:
// a bounded compress ladder followed by a convert stage, driven by ffmpeg and
// ffprobe.
package compress
