package challenge

import (
	"context"
	"strings"
	"sync"

	"github.com/famomatic/ytx/internal/innertube"
)

// poTokenCache remembers the token minted per client so repeated
// attempts within one extraction reuse it instead of hitting the
// provider again. Blank tokens never enter the cache.
type poTokenCache struct {
	base innertube.PoTokenProvider

	mu     sync.Mutex
	tokens map[string]string
}

// NewCachedPoTokenProvider wraps base with client-keyed memoization. A
// nil base stays nil.
func NewCachedPoTokenProvider(base innertube.PoTokenProvider) innertube.PoTokenProvider {
	if base == nil {
		return nil
	}
	return &poTokenCache{base: base, tokens: map[string]string{}}
}

func (c *poTokenCache) GetToken(ctx context.Context, clientID string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(clientID))
	if key == "" {
		return c.base.GetToken(ctx, clientID)
	}

	c.mu.Lock()
	cached := c.tokens[key]
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	token, err := c.base.GetToken(ctx, clientID)
	if err == nil && strings.TrimSpace(token) != "" {
		c.mu.Lock()
		c.tokens[key] = token
		c.mu.Unlock()
	}
	return token, err
}
