package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/orchestrator"
)

func hasPoTokenInURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Query().Get("pot") != "" {
		return true
	}
	return strings.Contains(u.Path, "/pot/")
}

func injectPoToken(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: stream url: %v", ErrInvalidInput, err)
	}
	q := u.Query()
	q.Set("pot", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// applyGvsPoToken enforces the source client's media-URL token policy:
// required without a provider fails, anything else degrades to the bare
// URL with a warning at most.
func (c *Client) applyGvsPoToken(ctx context.Context, rawURL, sourceClient string, premium bool) (string, error) {
	if rawURL == "" || hasPoTokenInURL(rawURL) {
		return rawURL, nil
	}
	profile, ok := c.registry.Get(innertube.ClientID(sourceClient))
	if !ok {
		return rawURL, nil
	}
	pol := profile.GvsPoTokenPolicy[innertube.StreamingProtocolHTTPS]
	required := pol.Required && !(premium && pol.NotRequiredForPremium)
	if !required && !pol.Recommended {
		return rawURL, nil
	}

	if c.poTokens == nil {
		if required {
			return "", &orchestrator.PoTokenRequiredError{Client: sourceClient}
		}
		return rawURL, nil
	}

	token, err := c.poTokens.GetToken(ctx, sourceClient)
	if err != nil || token == "" {
		if required {
			return "", &orchestrator.PoTokenRequiredError{Client: sourceClient}
		}
		if err != nil {
			c.logger.Warnf("po token provider for %s: %v", sourceClient, err)
		}
		return rawURL, nil
	}
	return injectPoToken(rawURL, token)
}
