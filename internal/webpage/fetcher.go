package webpage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/andybalholm/brotli"

	"github.com/famomatic/ytx/internal/cookies"
	"github.com/famomatic/ytx/internal/types"
)

// DefaultOrigin is the site origin watch pages and player scripts hang off.
const DefaultOrigin = "https://www.youtube.com"

const iframeAPIURL = DefaultOrigin + "/iframe_api"

// The script escapes path slashes, so an optional backslash precedes each.
var iframePlayerIDPattern = regexp.MustCompile(`player\\?/([0-9a-fA-F]{8})\\?/`)

// Fetcher performs the plain GET surface of the extraction pipeline: the
// watch page, player scripts and the iframe API probe.
type Fetcher struct {
	HTTP *http.Client
	Jar  *cookies.Jar

	// Origin overrides the site origin, for tests.
	Origin string
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return http.DefaultClient
}

func (f *Fetcher) origin() string {
	if f.Origin != "" {
		return f.Origin
	}
	return DefaultOrigin
}

// WatchPage GETs /watch for the video with the consent-bypass query the
// frontends send, presenting userAgent when non-empty.
func (f *Fetcher) WatchPage(ctx context.Context, videoID types.VideoID, userAgent string) (string, error) {
	u, err := url.Parse(f.origin() + "/watch")
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	q := url.Values{}
	q.Set("bpctr", "9999999999")
	q.Set("has_verified", "1")
	q.Set("v", videoID.String())
	u.RawQuery = q.Encode()

	return f.getText(ctx, u.String(), userAgent)
}

// Text GETs rawURL as plain text. Relative URLs are resolved against the
// site origin.
func (f *Fetcher) Text(ctx context.Context, rawURL string) (string, error) {
	if len(rawURL) > 0 && rawURL[0] == '/' {
		rawURL = f.origin() + rawURL
	}
	return f.getText(ctx, rawURL, "")
}

// IframePlayerID probes /iframe_api for the current player build id.
func (f *Fetcher) IframePlayerID(ctx context.Context) (string, error) {
	target := iframeAPIURL
	if f.Origin != "" {
		target = f.Origin + "/iframe_api"
	}
	body, err := f.getText(ctx, target, "")
	if err != nil {
		return "", err
	}
	m := iframePlayerIDPattern.FindStringSubmatch(body)
	if len(m) < 2 {
		return "", fmt.Errorf("%w: iframe api exposes no player id", types.ErrDataMissing)
	}
	return m[1], nil
}

func (f *Fetcher) getText(ctx context.Context, rawURL, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}
	req.Header.Set("Accept-Encoding", "gzip, br")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if f.Jar != nil {
		if host := req.URL.Hostname(); host != "" {
			if domain := f.Jar.ForHost(host); len(domain) > 0 {
				req.Header.Set("Cookie", domain.HeaderValue())
			}
		}
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", types.ErrTransport, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &types.HTTPStatusError{Status: resp.StatusCode, URL: rawURL}
	}

	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrTransport, err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", types.ErrTransport, rawURL, err)
	}
	return string(body), nil
}
