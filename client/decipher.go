package client

import (
	"context"
	"fmt"
)

// DecipherSignature resolves a signatureCipher query into a playable URL
// against the given player build.
func (c *Client) DecipherSignature(ctx context.Context, signatureQuery, playerURL string) (string, error) {
	return c.decipher.DecipherQuery(ctx, signatureQuery, playerURL)
}

// ResolveStreamURL rewrites a direct stream URL's throttled "n" parameter.
// URLs without one pass through unchanged.
func (c *Client) ResolveStreamURL(ctx context.Context, rawURL, playerURL string) (string, error) {
	return c.decipher.ResolveStreamURL(ctx, rawURL, playerURL)
}

// ResolveStream turns a descriptor into a final playable URL: deciphering
// the signature when the source demands it, solving the n challenge, and
// attaching a proof-of-origin token when the source client's policy asks
// for one.
func (c *Client) ResolveStream(ctx context.Context, manifest *Manifest, stream StreamDescriptor) (string, error) {
	var (
		resolved string
		err      error
	)
	switch {
	case stream.Source.IsSignature():
		resolved, err = c.DecipherSignature(ctx, stream.Source.Signature, manifest.PlayerURL)
	case stream.Source.IsURL():
		resolved, err = c.ResolveStreamURL(ctx, stream.Source.URL, manifest.PlayerURL)
	default:
		return "", fmt.Errorf("%w: stream has no source", ErrInvalidInput)
	}
	if err != nil {
		return "", err
	}
	return c.applyGvsPoToken(ctx, resolved, stream.SourceClient, manifest.Premium)
}
