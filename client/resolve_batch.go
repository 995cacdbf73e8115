package client

import (
	"context"
	"net/url"

	"github.com/famomatic/ytx/internal/challenge"
)

// ResolveStreams resolves several descriptors against one manifest. All
// sig and n challenges are collected and solved up front, so the player
// script loads once however many streams follow.
func (c *Client) ResolveStreams(ctx context.Context, manifest *Manifest, streams []StreamDescriptor) ([]string, error) {
	batch := challenge.NewProviderBatchSolver(challenge.EngineProvider{Engine: c.decipher})
	for _, s := range streams {
		switch {
		case s.Source.IsSignature():
			values, err := url.ParseQuery(s.Source.Signature)
			if err != nil {
				continue
			}
			batch.AddSig(values.Get("s"))
			if u, err := url.Parse(values.Get("url")); err == nil {
				batch.AddN(u.Query().Get("n"))
			}
		case s.Source.IsURL():
			if u, err := url.Parse(s.Source.URL); err == nil {
				batch.AddN(u.Query().Get("n"))
			}
		}
	}
	if err := batch.Solve(ctx, manifest.PlayerURL); err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(streams))
	for _, s := range streams {
		u, err := c.ResolveStream(ctx, manifest, s)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, u)
	}
	return resolved, nil
}
