package muxer

import "testing"

func TestNewFFmpegMuxerDefaultsPath(t *testing.T) {
	if got := NewFFmpegMuxer("").Path; got != "ffmpeg" {
		t.Fatalf("default path = %q, want ffmpeg", got)
	}
	if got := NewFFmpegMuxer("/opt/ffmpeg/bin/ffmpeg").Path; got != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("explicit path = %q", got)
	}
}

func TestAvailableReportsMissingBinary(t *testing.T) {
	mux := NewFFmpegMuxer("definitely-not-a-real-binary-7f3a")
	if mux.Available() {
		t.Fatal("Available() = true for a nonexistent binary")
	}
}
