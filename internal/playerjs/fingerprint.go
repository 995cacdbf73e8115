// Package playerjs identifies, loads and executes the player script: the
// build fingerprint, the signature timestamp, and the sig/n challenge
// solving that rewrites stream URLs.
package playerjs

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/famomatic/ytx/internal/types"
)

// playerIDPatterns are tried in order against the player script URL. The
// first named "id" capture wins.
var playerIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/s/player/(?P<id>[a-zA-Z0-9_-]{8,})/(?:tv-)?player`),
	regexp.MustCompile(`/(?P<id>[a-zA-Z0-9_-]{8,})/player(?:_ias\.vflset(?:/[a-zA-Z]{2,3}_[a-zA-Z]{2,3})?|-plasma-ias-(?:phone|tablet)-[a-z]{2}_[A-Z]{2}\.vflset)/base\.js$`),
	regexp.MustCompile(`\b(?P<id>vfl[a-zA-Z0-9_-]+)\b.*?\.js$`),
}

// ExtractPlayerID pulls the build id out of a player script URL.
func ExtractPlayerID(playerURL string) (string, error) {
	for _, re := range playerIDPatterns {
		m := re.FindStringSubmatch(playerURL)
		if m == nil {
			continue
		}
		for i, name := range re.SubexpNames() {
			if name == "id" && m[i] != "" {
				return m[i], nil
			}
		}
	}
	return "", fmt.Errorf("%w: cannot identify player: %s", types.ErrPlayerIdentification, playerURL)
}

// PlayerIDAndPath returns the build id and the URL path of a player
// script URL. Relative URLs keep their path as given.
func PlayerIDAndPath(playerURL string) (id, path string, err error) {
	id, err = ExtractPlayerID(playerURL)
	if err != nil {
		return "", "", err
	}
	u, err := url.Parse(playerURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: player url: %v", types.ErrPlayerIdentification, err)
	}
	return id, u.Path, nil
}

// CacheKey derives the "<id>-<path>" key under which a player build's
// script and derived values are cached.
func CacheKey(playerURL string) (string, error) {
	id, path, err := PlayerIDAndPath(playerURL)
	if err != nil {
		return "", err
	}
	return id + "-" + path, nil
}
