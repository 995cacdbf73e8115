// Package muxer merges separately downloaded video and audio tracks.
package muxer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Metadata is written into the merged container.
type Metadata struct {
	Title       string
	Artist      string
	Date        string
	Description string
}

// Muxer merges a video and an audio file into one output.
type Muxer interface {
	Available() bool
	Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error
}

// FFmpegMuxer shells out to ffmpeg with stream copy.
type FFmpegMuxer struct {
	Path string
}

// NewFFmpegMuxer builds a muxer around the given ffmpeg binary, or the
// one on PATH when path is empty.
func NewFFmpegMuxer(path string) *FFmpegMuxer {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegMuxer{Path: path}
}

func (f *FFmpegMuxer) Available() bool {
	_, err := exec.LookPath(f.Path)
	return err == nil
}

// Merge remuxes both inputs into outputPath without re-encoding and
// removes the inputs on success.
func (f *FFmpegMuxer) Merge(ctx context.Context, videoPath, audioPath, outputPath string, meta Metadata) error {
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "copy",
	}
	if meta.Title != "" {
		args = append(args, "-metadata", "title="+meta.Title)
	}
	if meta.Artist != "" {
		args = append(args, "-metadata", "artist="+meta.Artist)
	}
	if meta.Date != "" {
		args = append(args, "-metadata", "date="+meta.Date)
	}
	if meta.Description != "" {
		args = append(args, "-metadata", "comment="+meta.Description)
	}
	args = append(args, "-y", outputPath)

	if err := exec.CommandContext(ctx, f.Path, args...).Run(); err != nil {
		return fmt.Errorf("ffmpeg merge: %w", err)
	}

	_ = os.Remove(videoPath)
	_ = os.Remove(audioPath)
	return nil
}
