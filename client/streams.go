package client

import (
	"context"

	"github.com/famomatic/ytx/internal/formats"
)

// StreamResponse pairs the folded streams with the player build their
// signatures belong to.
type StreamResponse struct {
	PlayerURL string
	Streams   []StreamDescriptor
}

// GetStreams extracts the manifest and folds it into stream descriptors
// in one call.
func (c *Client) GetStreams(ctx context.Context, input string) (*StreamResponse, error) {
	manifest, err := c.GetManifest(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.GetStreamsFromManifest(ctx, manifest)
}

// GetStreamsFromManifest folds an already-fetched manifest. Streams are
// ordered best-first.
func (c *Client) GetStreamsFromManifest(_ context.Context, manifest *Manifest) (*StreamResponse, error) {
	var streams []StreamDescriptor
	for _, entry := range manifest.Responses {
		pr, err := entry.decode()
		if err != nil {
			c.logger.Warnf("manifest entry from %s skipped: %v", entry.Client, err)
			continue
		}
		streams = append(streams, formats.Reduce(pr, entry.Client)...)
	}
	formats.SortByBest(streams)
	return &StreamResponse{PlayerURL: manifest.PlayerURL, Streams: streams}, nil
}
