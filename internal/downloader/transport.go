package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// applyRequestHeaders copies caller-supplied headers onto req, replacing
// any default the transport set for the same key.
func applyRequestHeaders(req *http.Request, headers http.Header) {
	for k, vals := range headers {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
	}
}

// resolveURL interprets ref relative to base. Unparsable inputs pass
// ref through untouched.
func resolveURL(base, ref string) string {
	b, berr := url.Parse(base)
	r, rerr := url.Parse(ref)
	if berr != nil || rerr != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// TransportConfig controls retry, backoff and concurrency for segment
// fetches. The zero value gets sane defaults.
type TransportConfig struct {
	MaxRetries       int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	RetryStatusCodes []int

	// MaxConcurrency bounds parallel segment fetches in static manifests.
	MaxConcurrency int

	// SkipUnavailableFragments tolerates 404/410 segments in live
	// manifests, up to MaxSkippedFragments (0 means unlimited).
	SkipUnavailableFragments bool
	MaxSkippedFragments      int
}

func (c TransportConfig) normalized() TransportConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 3 * time.Second
	}
	if len(c.RetryStatusCodes) == 0 {
		c.RetryStatusCodes = []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		}
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	return c
}

func (c TransportConfig) backoffFor(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return backoff
}

func (c TransportConfig) retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *fetchStatusError
	if errors.As(err, &statusErr) {
		for _, code := range c.RetryStatusCodes {
			if statusErr.StatusCode == code {
				return true
			}
		}
		return false
	}
	return true
}

// skippable reports whether err is a missing-fragment error the config
// allows skipping.
func (c TransportConfig) skippable(err error) bool {
	if !c.SkipUnavailableFragments {
		return false
	}
	var statusErr *fetchStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone
}

type fetchStatusError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *fetchStatusError) Error() string {
	return fmt.Sprintf("fetch failed: status=%d", e.StatusCode)
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchBytes GETs rawURL with the config's retry policy, honoring
// Retry-After when the server sends one.
func fetchBytes(ctx context.Context, client *http.Client, rawURL string, headers http.Header, cfg TransportConfig) ([]byte, error) {
	cfg = cfg.normalized()
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		applyRequestHeaders(req, headers)

		body, err := readResponse(client, req)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !cfg.retryable(lastErr) || attempt == cfg.MaxRetries {
			return nil, lastErr
		}
		backoff := cfg.backoffFor(attempt)
		var statusErr *fetchStatusError
		if errors.As(lastErr, &statusErr) && statusErr.RetryAfter > backoff {
			backoff = statusErr.RetryAfter
		}
		if err := waitBackoff(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func readResponse(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &fetchStatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return io.ReadAll(resp.Body)
}

func parseRetryAfter(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(raw); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}
