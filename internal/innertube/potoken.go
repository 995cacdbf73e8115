package innertube

import "context"

// PoTokenProvider supplies proof-of-origin tokens for a client. clientID
// is the profile name ("web", "tv", ...); an empty token means the
// provider has nothing for that client.
type PoTokenProvider interface {
	GetToken(ctx context.Context, clientID string) (string, error)
}

// PoTokenProviderFunc adapts a function to PoTokenProvider.
type PoTokenProviderFunc func(ctx context.Context, clientID string) (string, error)

func (f PoTokenProviderFunc) GetToken(ctx context.Context, clientID string) (string, error) {
	return f(ctx, clientID)
}
