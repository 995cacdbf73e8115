package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/types"
	"github.com/famomatic/ytx/internal/webpage"
)

const (
	testVideoID   = "dQw4w9WgXcQ"
	testPlayerJS  = "/s/player/abcd1234/player_ias.vflset/en_US/base.js"
	testWatchPage = `<!DOCTYPE html><html><head><script>
ytcfg.set({"PLAYER_JS_URL":"` + testPlayerJS + `","INNERTUBE_CONTEXT":{"client":{"clientName":"WEB","clientVersion":"2.20250925.01.00"}},"VISITOR_DATA":"CgtzdGlja3k%3D"});
var ytInitialData = {"topbar":{}};
var ytInitialPlayerResponse = {"videoDetails":{"videoId":"` + testVideoID + `","title":"t"},"streamingData":{"formats":[{"itag":18}]}};
</script></head><body></body></html>`
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type pageStub struct {
	html     string
	err      error
	iframeID string
}

func (p pageStub) WatchPage(context.Context, types.VideoID, string) (string, error) {
	return p.html, p.err
}

func (p pageStub) IframePlayerID(context.Context) (string, error) {
	if p.iframeID == "" {
		return "", errors.New("no iframe id")
	}
	return p.iframeID, nil
}

type tsStub struct{}

func (tsStub) SignatureTimestamp(context.Context, string, map[string]any) (int, error) {
	return 19876, nil
}

// apiClient routes /youtubei/v1/player calls through respond, keyed by the
// Innertube clientName read from the request body.
func apiClient(respond func(clientName string, body map[string]any) string) *innertube.Client {
	return &innertube.Client{HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "/youtubei/v1/player") {
			return nil, fmt.Errorf("unexpected request to %s", r.URL)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		name := ""
		if ctx, ok := body["context"].(map[string]any); ok {
			if cl, ok := ctx["client"].(map[string]any); ok {
				name, _ = cl["clientName"].(string)
			}
		}
		payload := respond(name, body)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(bytes.NewReader([]byte(payload))),
		}, nil
	})}}
}

func okPlayerResponse(videoID string) string {
	return `{"responseContext":{"visitorData":"CgtmcmVzaA%3D%3D"},"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"` + videoID + `"},"streamingData":{"formats":[]}}`
}

func ageGatedResponse(videoID string) string {
	return `{"playabilityStatus":{"status":"LOGIN_REQUIRED","desktopLegacyAgeGateReason":1},"videoDetails":{"videoId":"` + videoID + `"}}`
}

func mustVideoID(t *testing.T, s string) types.VideoID {
	t.Helper()
	id, err := types.NewVideoID(s)
	if err != nil {
		t.Fatalf("NewVideoID(%q): %v", s, err)
	}
	return id
}

func TestExtractCollectsEveryClient(t *testing.T) {
	e := &Engine{
		Client:     apiClient(func(string, map[string]any) string { return okPlayerResponse(testVideoID) }),
		Pages:      pageStub{html: testWatchPage},
		Timestamps: tsStub{},
	}

	res, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// Initial page response plus the four anonymous-tier clients.
	want := []string{"web", "android_sdkless", "tv", "web_safari", "web"}
	if len(res.Responses) != len(want) {
		t.Fatalf("responses = %d, want %d", len(res.Responses), len(want))
	}
	for i, name := range want {
		if res.Responses[i].Client != name {
			t.Fatalf("responses[%d].Client = %q, want %q", i, res.Responses[i].Client, name)
		}
	}

	if _, ok := res.Responses[0].Raw["streamingData"]; ok {
		t.Fatal("initial page response kept its streamingData")
	}
	if len(res.Responses[1].Raw["streamingData"].(map[string]any)) == 0 {
		t.Fatal("api response lost its streamingData")
	}

	if res.PlayerURL != webpage.DefaultOrigin+testPlayerJS {
		t.Fatalf("player url = %q", res.PlayerURL)
	}
	if res.Authenticated || res.Premium {
		t.Fatal("anonymous extraction reported a logged-in session")
	}
}

func TestExtractSkipsMismatchedVideoID(t *testing.T) {
	e := &Engine{
		Client: apiClient(func(string, map[string]any) string { return okPlayerResponse("aaaaaaaaaaa") }),
		Pages:  pageStub{html: "<html></html>"},
	}

	_, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	if !errors.Is(err, types.ErrNoPlayerResponse) {
		t.Fatalf("err = %v, want ErrNoPlayerResponse", err)
	}
	var failed *AllClientsFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("err = %T, want *AllClientsFailedError", err)
	}
	if len(failed.Attempts) != 4 {
		t.Fatalf("attempts = %d, want 4", len(failed.Attempts))
	}
	for _, a := range failed.Attempts {
		if !errors.Is(a, types.ErrDataMissing) {
			t.Fatalf("attempt %v does not match ErrDataMissing", a)
		}
	}
}

func TestExtractAgeGateFallsBackToEmbedded(t *testing.T) {
	e := &Engine{
		Client: apiClient(func(name string, _ map[string]any) string {
			if name == "WEB_EMBEDDED_PLAYER" {
				return okPlayerResponse(testVideoID)
			}
			return ageGatedResponse(testVideoID)
		}),
		Pages: pageStub{html: testWatchPage},
	}
	var order []string
	e.Events = func(ev ExtractionEvent) {
		if ev.Stage == StageClientLoop && ev.Detail == "attempt" {
			order = append(order, ev.Client)
		}
	}

	res, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var accepted []string
	for _, r := range res.Responses {
		if r.Player.PlayabilityStatus.IsOK() && len(r.Raw) > 0 && r.Client != "web" {
			accepted = append(accepted, r.Client)
		}
	}
	if len(accepted) != 1 || accepted[0] != "web_embedded" {
		t.Fatalf("accepted = %v, want [web_embedded]", accepted)
	}

	// The fallback is appended once and tried right after the client that
	// hit the gate.
	wantOrder := []string{"android_sdkless", "web_embedded", "tv", "web_safari", "web"}
	if len(order) != len(wantOrder) {
		t.Fatalf("attempt order = %v, want %v", order, wantOrder)
	}
	for i, name := range wantOrder {
		if order[i] != name {
			t.Fatalf("attempt order = %v, want %v", order, wantOrder)
		}
	}
}

type poTokenRegistry struct {
	innertube.Registry
	required innertube.ClientID
}

func (r poTokenRegistry) Get(id innertube.ClientID) (innertube.ClientProfile, bool) {
	p, ok := r.Registry.Get(id)
	if id == r.required {
		p.PlayerPoTokenPolicy.Required = true
	}
	return p, ok
}

func TestExtractEnforcesPoTokenPolicy(t *testing.T) {
	registry := poTokenRegistry{Registry: innertube.DefaultRegistry(), required: innertube.ClientWeb}

	e := &Engine{
		Client:    apiClient(func(string, map[string]any) string { return okPlayerResponse(testVideoID) }),
		Pages:     pageStub{html: "<html></html>"},
		Registry:  registry,
		Overrides: []innertube.ClientID{innertube.ClientWeb},
	}

	_, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	var failed *AllClientsFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("err = %v, want *AllClientsFailedError", err)
	}
	var required *PoTokenRequiredError
	if len(failed.Attempts) != 1 || !errors.As(failed.Attempts[0], &required) {
		t.Fatalf("attempts = %v, want one PoTokenRequiredError", failed.Attempts)
	}
}

func TestExtractPassesPoTokenToPlayerRequest(t *testing.T) {
	registry := poTokenRegistry{Registry: innertube.DefaultRegistry(), required: innertube.ClientWeb}

	var gotToken string
	e := &Engine{
		Client: apiClient(func(_ string, body map[string]any) string {
			if dims, ok := body["serviceIntegrityDimensions"].(map[string]any); ok {
				gotToken, _ = dims["poToken"].(string)
			}
			return okPlayerResponse(testVideoID)
		}),
		Pages:     pageStub{html: "<html></html>"},
		Registry:  registry,
		Overrides: []innertube.ClientID{innertube.ClientWeb},
		PoTokens: innertube.PoTokenProviderFunc(func(context.Context, string) (string, error) {
			return "test-po-token", nil
		}),
	}

	res, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(res.Responses))
	}
	if gotToken != "test-po-token" {
		t.Fatalf("poToken sent = %q", gotToken)
	}
}

func TestExtractSeedsSessionFromInitialResponse(t *testing.T) {
	// Only the webpage-embedded player response carries the session ids;
	// every API attempt must still go out with the delegation headers.
	watchPage := `<html><script>
var ytInitialPlayerResponse = {"responseContext":{"visitorData":"CgtwYWdl","mainAppWebResponseContext":{"datasyncId":"delegated-123||user-456"}},"videoDetails":{"videoId":"` + testVideoID + `","title":"t"}};
</script></html>`

	var pageIDs, authUsers, visitors []string
	client := &innertube.Client{HTTP: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		pageIDs = append(pageIDs, r.Header.Get("X-Goog-PageId"))
		authUsers = append(authUsers, r.Header.Get("X-Goog-AuthUser"))
		visitors = append(visitors, r.Header.Get("X-Goog-Visitor-Id"))
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(bytes.NewReader([]byte(okPlayerResponse(testVideoID)))),
		}, nil
	})}}

	e := &Engine{Client: client, Pages: pageStub{html: watchPage}}
	if _, err := e.Extract(context.Background(), mustVideoID(t, testVideoID)); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(pageIDs) == 0 {
		t.Fatal("no player requests were sent")
	}
	for i := range pageIDs {
		if pageIDs[i] != "delegated-123" {
			t.Fatalf("request %d X-Goog-PageId = %q, want delegated-123", i, pageIDs[i])
		}
		if authUsers[i] != "0" {
			t.Fatalf("request %d X-Goog-AuthUser = %q, want 0", i, authUsers[i])
		}
		if visitors[i] != "CgtwYWdl" {
			t.Fatalf("request %d X-Goog-Visitor-Id = %q", i, visitors[i])
		}
	}
}

func TestExtractWatchPageFailureIsFatal(t *testing.T) {
	pageErr := errors.New("network down")
	e := &Engine{
		Client: apiClient(func(string, map[string]any) string { return okPlayerResponse(testVideoID) }),
		Pages:  pageStub{err: pageErr},
	}
	_, err := e.Extract(context.Background(), mustVideoID(t, testVideoID))
	if !errors.Is(err, pageErr) {
		t.Fatalf("err = %v, want the page error", err)
	}
}
