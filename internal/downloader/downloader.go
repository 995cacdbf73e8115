// Package downloader fetches media streams: progressive URLs by parallel
// byte ranges, and segmented DASH/HLS playlists with live refresh.
package downloader

import (
	"context"
	"io"
)

// Downloader writes a whole segmented stream to w, in segment order.
type Downloader interface {
	Download(ctx context.Context, w io.Writer) error
}

// ProgressReporter observes download progress. totalBytes is -1 when the
// size is unknown.
type ProgressReporter interface {
	OnProgress(bytesWritten, totalBytes int64)
}
