package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// downloadArchive is a plain text file with one downloaded video id per
// line, used to make batch reruns idempotent.
type downloadArchive struct {
	file *os.File
	seen map[string]bool
}

func newDownloadArchive(path string) (*downloadArchive, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open download archive: %w", err)
	}
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			seen[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read download archive: %w", err)
	}
	return &downloadArchive{file: f, seen: seen}, nil
}

func (a *downloadArchive) Has(videoID string) bool {
	return a.seen[videoID]
}

func (a *downloadArchive) Add(videoID string) error {
	if a.seen[videoID] {
		return nil
	}
	if _, err := fmt.Fprintln(a.file, videoID); err != nil {
		return fmt.Errorf("write download archive: %w", err)
	}
	a.seen[videoID] = true
	return nil
}

func (a *downloadArchive) Close() error {
	return a.file.Close()
}
