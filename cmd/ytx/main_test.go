package main

import (
	"path/filepath"
	"testing"

	"github.com/famomatic/ytx/client"
)

func TestFormatExtractionEvent(t *testing.T) {
	got := formatExtractionEvent(client.ExtractionEvent{
		Stage:  "client_loop",
		Client: "mweb",
		Detail: "age gate fallback",
	})
	want := "[extract] client_loop client=mweb detail=age gate fallback"
	if got != want {
		t.Fatalf("formatExtractionEvent() = %q, want %q", got, want)
	}

	got = formatExtractionEvent(client.ExtractionEvent{Stage: "fetching_webpage"})
	if got != "[extract] fetching_webpage" {
		t.Fatalf("formatExtractionEvent() = %q", got)
	}
}

func TestOutputPath(t *testing.T) {
	info := &client.VideoInfo{ID: "dQw4w9WgXcQ", Title: "hello/world: a?test"}
	stream := client.StreamDescriptor{Ext: "mp4"}

	got := outputPath("%(title)s.%(ext)s", info, stream)
	if got != "hello_world_ a_test.mp4" {
		t.Fatalf("outputPath = %q", got)
	}

	got = outputPath("out/%(id)s.%(ext)s", info, stream)
	if got != "out/dQw4w9WgXcQ.mp4" {
		t.Fatalf("outputPath = %q", got)
	}
}

func TestDownloadArchiveRerunIdempotency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.txt")

	archive, err := newDownloadArchive(path)
	if err != nil {
		t.Fatalf("newDownloadArchive: %v", err)
	}
	if archive.Has("dQw4w9WgXcQ") {
		t.Fatal("empty archive reported a hit")
	}
	if err := archive.Add("dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := archive.Add("dQw4w9WgXcQ"); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := newDownloadArchive(path)
	if err != nil {
		t.Fatalf("newDownloadArchive: %v", err)
	}
	defer reopened.Close()
	if !reopened.Has("dQw4w9WgXcQ") {
		t.Fatal("reopened archive lost the recorded id")
	}
}
