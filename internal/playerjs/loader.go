package playerjs

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/famomatic/ytx/internal/cache"
	"github.com/famomatic/ytx/internal/jsontree"
	"github.com/famomatic/ytx/internal/types"
)

// TextFetcher downloads a URL as text. Relative URLs resolve against the
// site origin.
type TextFetcher interface {
	Text(ctx context.Context, rawURL string) (string, error)
}

// stsScope holds memoized signature timestamps keyed by player fingerprint.
const stsScope = "youtube-sts"

var signatureTimestampPattern = regexp.MustCompile(`(?:signatureTimestamp|sts)\s*:\s*([0-9]{5})`)

// Loader fetches player scripts and memoizes them in the code cache, one
// entry per player build.
type Loader struct {
	Fetch   TextFetcher
	Codes   *cache.Store
	Players *cache.ScopedStore
}

// NewLoader wires a Loader over the shared caches.
func NewLoader(fetch TextFetcher, codes *cache.Store, players *cache.ScopedStore) *Loader {
	return &Loader{Fetch: fetch, Codes: codes, Players: players}
}

// Load returns the script body for playerURL, downloading it on first use.
func (l *Loader) Load(ctx context.Context, playerURL string) (string, error) {
	key, err := CacheKey(playerURL)
	if err != nil {
		return "", err
	}
	if code, ok := l.Codes.Get(key); ok {
		return code, nil
	}
	code, err := l.Fetch.Text(ctx, playerURL)
	if err != nil {
		return "", err
	}
	l.Codes.Add(key, code)
	return code, nil
}

// SignatureTimestamp resolves the player build's signature timestamp. A
// numeric STS in ytcfg wins; otherwise the value is mined from the script
// body and memoized per fingerprint so later videos on the same build skip
// the scan.
func (l *Loader) SignatureTimestamp(ctx context.Context, playerURL string, ytcfg map[string]any) (int, error) {
	if sts, ok := jsontree.Int(ytcfg, "STS"); ok && sts > 0 {
		return sts, nil
	}

	key, err := CacheKey(playerURL)
	if err != nil {
		return 0, err
	}
	if cached, ok := l.Players.Get(stsScope, key); ok {
		sts, err := strconv.Atoi(cached)
		if err == nil {
			return sts, nil
		}
	}

	code, err := l.Load(ctx, playerURL)
	if err != nil {
		return 0, err
	}
	m := signatureTimestampPattern.FindStringSubmatch(code)
	if m == nil {
		return 0, fmt.Errorf("%w: player script carries no signature timestamp", types.ErrDataMissing)
	}
	sts, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: signature timestamp: %v", types.ErrDecode, err)
	}
	l.Players.Add(stsScope, key, m[1])
	return sts, nil
}
