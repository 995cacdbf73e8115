package innertube

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/famomatic/ytx/internal/cookies"
	"github.com/famomatic/ytx/internal/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestDoAssemblesPlayerRequest(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWeb)

	var captured *http.Request
	var capturedBody map[string]any
	client := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &capturedBody); err != nil {
				t.Fatalf("request body: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"ok":true}`), nil
		})},
	}

	resp, err := client.Do(context.Background(), &Request{
		Profile:     profile,
		Endpoint:    EndpointPlayer,
		Query:       map[string]any{"videoId": "dQw4w9WgXcQ"},
		VisitorData: "CgtW",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v, ok := resp.Object["ok"].(bool); !ok || !v {
		t.Fatalf("decoded object = %v", resp.Object)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("method = %s", captured.Method)
	}
	if captured.URL.String() != "https://www.youtube.com/youtubei/v1/player?prettyPrint=false" {
		t.Fatalf("url = %s", captured.URL)
	}
	if got := captured.Header.Get("X-YouTube-Client-Name"); got != "1" {
		t.Fatalf("client name header = %q", got)
	}
	if got := captured.Header.Get("X-YouTube-Client-Version"); got != profile.Version {
		t.Fatalf("client version header = %q", got)
	}
	if got := captured.Header.Get("X-Goog-Visitor-Id"); got != "CgtW" {
		t.Fatalf("visitor header = %q", got)
	}
	if got := captured.Header.Get("Origin"); got != "https://www.youtube.com" {
		t.Fatalf("origin header = %q", got)
	}

	if capturedBody["videoId"] != "dQw4w9WgXcQ" {
		t.Fatalf("body videoId = %v", capturedBody["videoId"])
	}
	clientCtx, _ := capturedBody["context"].(map[string]any)
	inner, _ := clientCtx["client"].(map[string]any)
	if inner["clientName"] != "WEB" || inner["hl"] != "en" {
		t.Fatalf("context client = %v", inner)
	}
	if inner["timeZone"] != "UTC" {
		t.Fatalf("timeZone = %v", inner["timeZone"])
	}
}

func TestDoSendsEmbedContext(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWebEmbedded)

	var capturedBody map[string]any
	client := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &capturedBody)
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
	}

	if _, err := client.Do(context.Background(), &Request{Profile: profile, Endpoint: EndpointPlayer}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	ctxObj, _ := capturedBody["context"].(map[string]any)
	third, _ := ctxObj["thirdParty"].(map[string]any)
	if third["embedUrl"] != profile.EmbedURL || profile.EmbedURL == "" {
		t.Fatalf("thirdParty = %v", third)
	}
}

func TestDoSendsCookiesAndAuthorization(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWeb)
	jar := cookies.NewJarWithCookies([]cookies.Cookie{
		cookies.NewCookie("SAPISID", "testsid", ".youtube.com"),
		cookies.NewCookie("LOGIN_INFO", "x", ".youtube.com"),
	})

	var captured *http.Request
	client := &Client{
		Jar: jar,
		Now: func() time.Time { return authNow },
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
	}

	_, err := client.Do(context.Background(), &Request{Profile: profile, Endpoint: EndpointPlayer, Authenticated: true})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := captured.Header.Get("Cookie"); got == "" {
		t.Fatal("no Cookie header sent")
	}
	want := "SAPISIDHASH 1700000000_90b09b595049a7391f1c365039b543a7521401bd"
	if got := captured.Header.Get("Authorization"); got != want {
		t.Fatalf("authorization = %q, want %q", got, want)
	}
}

func TestDoDecodesGzipResponse(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWeb)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"compressed":true}`))
	_ = zw.Close()

	client := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Encoding": {"gzip"}},
				Body:       io.NopCloser(bytes.NewReader(buf.Bytes())),
			}, nil
		})},
	}

	resp, err := client.Do(context.Background(), &Request{Profile: profile, Endpoint: EndpointPlayer})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v, _ := resp.Object["compressed"].(bool); !v {
		t.Fatalf("object = %v", resp.Object)
	}
}

func TestDoSurfacesHTTPStatus(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWeb)
	client := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusForbidden, `forbidden`), nil
		})},
	}

	_, err := client.Do(context.Background(), &Request{Profile: profile, Endpoint: EndpointPlayer})
	var statusErr *types.HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusForbidden {
		t.Fatalf("err = %v, want 403 HTTPStatusError", err)
	}
	if !errors.Is(err, types.ErrTransport) {
		t.Fatalf("err = %v does not match ErrTransport", err)
	}
}

func TestDoAppendsAPIKey(t *testing.T) {
	profile, _ := DefaultRegistry().Get(ClientWeb)

	var captured *http.Request
	client := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
	}

	if _, err := client.Do(context.Background(), &Request{Profile: profile, Endpoint: EndpointPlayer, APIKey: "k123"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	q := captured.URL.Query()
	if q.Get("key") != "k123" || q.Get("prettyPrint") != "false" {
		t.Fatalf("query = %v", q)
	}
}
