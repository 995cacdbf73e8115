package client

import (
	"net/http"
	"net/url"
	"strings"
)

// forwardedForTransport stamps X-Forwarded-For on every request.
type forwardedForTransport struct {
	base http.RoundTripper
	addr string
}

func (t forwardedForTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	clone := r.Clone(r.Context())
	clone.Header.Set("X-Forwarded-For", t.addr)
	return t.base.RoundTrip(clone)
}

func buildHTTPClient(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}

	transport := http.DefaultTransport
	if proxy := strings.TrimSpace(cfg.ProxyURL); proxy != "" {
		if parsed, err := url.Parse(proxy); err == nil && parsed.Scheme != "" && parsed.Host != "" {
			if base, ok := http.DefaultTransport.(*http.Transport); ok {
				cloned := base.Clone()
				cloned.Proxy = http.ProxyURL(parsed)
				transport = cloned
			}
		}
	}
	if addr := strings.TrimSpace(cfg.SourceAddress); addr != "" {
		transport = forwardedForTransport{base: transport, addr: addr}
	}

	if transport == http.DefaultTransport {
		return http.DefaultClient
	}
	return &http.Client{Transport: transport}
}
