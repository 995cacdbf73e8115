package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/famomatic/ytx/internal/orchestrator"
	"github.com/famomatic/ytx/internal/playerjs"
)

const (
	testVideoID  = "dQw4w9WgXcQ"
	testPlayerJS = "/s/player/abcd1234/player_ias.vflset/en_US/base.js"
)

const testWatchHTML = `<!DOCTYPE html><html><head><script>
ytcfg.set({"PLAYER_JS_URL":"` + testPlayerJS + `","INNERTUBE_CONTEXT":{"client":{"clientName":"WEB","clientVersion":"2.20250925.01.00"}}});
var ytInitialData = {"topbar":{}};
</script></head><body></body></html>`

const testPlayerBody = `{"playabilityStatus":{"status":"OK"},
"videoDetails":{"videoId":"` + testVideoID + `","title":"Test Video","author":"Chan","channelId":"UC123","lengthSeconds":"100","viewCount":"1500","keywords":["k1","k2"],"thumbnail":{"thumbnails":[{"url":"https://i.ytimg.com/vi/x/hq.jpg","width":480,"height":360}]}},
"microformat":{"playerMicroformatRenderer":{"description":{"simpleText":"A description."}}},
"streamingData":{
 "formats":[{"itag":18,"url":"https://r1.example/videoplayback?itag=18","mimeType":"video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"","bitrate":500000,"width":640,"height":360,"quality":"medium"}],
 "adaptiveFormats":[{"itag":251,"signatureCipher":"s=abc&sp=sig&url=https%3A%2F%2Fr1.example%2Fvideoplayback%3Fitag%3D251","mimeType":"audio/webm; codecs=\"opus\"","bitrate":128000,"audioQuality":"AUDIO_QUALITY_MEDIUM"}]}}`

const fakeSolverLib = `var lib = {reverseString: function(s){return s.split("").reverse().join("");}};`

const fakeSolverCore = `function jsc(input){
	var responses = [];
	for (var i = 0; i < input.requests.length; i++) {
		var req = input.requests[i];
		var data = {};
		for (var j = 0; j < req.challenges.length; j++) {
			var c = req.challenges[j];
			data[c] = req.type === "sig" ? reverseString(c) : c.slice(1);
		}
		responses.push({type: req.type, data: data});
	}
	return {type: "result", responses: responses};
}`

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func textResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func fakeSiteClient(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch {
		case r.URL.Path == "/watch":
			return textResponse(testWatchHTML), nil
		case strings.HasPrefix(r.URL.Path, "/s/player/"):
			return textResponse(`var config = {signatureTimestamp:19876};`), nil
		case strings.Contains(r.URL.Path, "/youtubei/v1/player"):
			return textResponse(testPlayerBody), nil
		case r.URL.String() == playerjs.SolverLibURL:
			return textResponse(fakeSolverLib), nil
		case r.URL.String() == playerjs.SolverCoreURL:
			return textResponse(fakeSolverCore), nil
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			return textResponse("{}"), nil
		}
	})}
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	cfg.HTTPClient = fakeSiteClient(t)
	if cfg.DefaultClient == "" && len(cfg.ClientOverrides) == 0 {
		cfg.DefaultClient = ClientWeb
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestGetStreams(t *testing.T) {
	c := newTestClient(t, Config{})

	res, err := c.GetStreams(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("GetStreams: %v", err)
	}
	if res.PlayerURL != "https://www.youtube.com"+testPlayerJS {
		t.Fatalf("player url = %q", res.PlayerURL)
	}
	if len(res.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(res.Streams))
	}

	// Best-first: the 360p muxed format before the audio-only one.
	if res.Streams[0].Itag != "18" || res.Streams[1].Itag != "251" {
		t.Fatalf("order = %q, %q", res.Streams[0].Itag, res.Streams[1].Itag)
	}
	if !res.Streams[0].Source.IsURL() {
		t.Fatalf("itag 18 source = %+v", res.Streams[0].Source)
	}
	if !res.Streams[1].Source.IsSignature() {
		t.Fatalf("itag 251 source = %+v", res.Streams[1].Source)
	}
	if res.Streams[1].ACodec != "opus" || res.Streams[1].Quality != "AUDIO_QUALITY_MEDIUM" {
		t.Fatalf("itag 251 = %+v", res.Streams[1])
	}
}

func TestGetVideoInfo(t *testing.T) {
	c := newTestClient(t, Config{})

	info, err := c.GetVideoInfo(context.Background(), "https://www.youtube.com/watch?v="+testVideoID)
	if err != nil {
		t.Fatalf("GetVideoInfo: %v", err)
	}
	if info.ID != testVideoID || info.Title != "Test Video" {
		t.Fatalf("info = %+v", info)
	}
	if info.Duration != 100 || info.ViewCount != 1500 {
		t.Fatalf("duration/views = %d/%d", info.Duration, info.ViewCount)
	}
	if info.Channel != "Chan" || info.ChannelID != "UC123" {
		t.Fatalf("channel = %q/%q", info.Channel, info.ChannelID)
	}
	if info.Description != "A description." {
		t.Fatalf("description = %q", info.Description)
	}
	if info.MediaType != "video" || info.AgeLimit != 0 {
		t.Fatalf("media type = %q, age limit = %d", info.MediaType, info.AgeLimit)
	}
	if len(info.Thumbnails) != 1 || info.Thumbnails[0].Width != 480 {
		t.Fatalf("thumbnails = %+v", info.Thumbnails)
	}
	if len(info.Keywords) != 2 {
		t.Fatalf("keywords = %v", info.Keywords)
	}
}

func TestManifestFeedsBothFolds(t *testing.T) {
	c := newTestClient(t, Config{})

	manifest, err := c.GetManifest(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	if len(manifest.Responses) != 1 || manifest.Responses[0].Client != "web" {
		t.Fatalf("manifest responses = %+v", manifest.Responses)
	}

	streams, err := c.GetStreamsFromManifest(context.Background(), manifest)
	if err != nil {
		t.Fatalf("GetStreamsFromManifest: %v", err)
	}
	info, err := c.GetVideoInfoFromManifest(context.Background(), manifest)
	if err != nil {
		t.Fatalf("GetVideoInfoFromManifest: %v", err)
	}
	if len(streams.Streams) != 2 || info.Title != "Test Video" {
		t.Fatalf("folds = %d streams, title %q", len(streams.Streams), info.Title)
	}
}

func TestResolveStreamDeciphersSignature(t *testing.T) {
	c := newTestClient(t, Config{
		PoTokenProvider: PoTokenProviderFunc(func(context.Context, string) (string, error) {
			return "tok123", nil
		}),
	})

	manifest, err := c.GetManifest(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	streams, err := c.GetStreamsFromManifest(context.Background(), manifest)
	if err != nil {
		t.Fatalf("GetStreamsFromManifest: %v", err)
	}

	var ciphered StreamDescriptor
	for _, s := range streams.Streams {
		if s.Source.IsSignature() {
			ciphered = s
		}
	}
	resolved, err := c.ResolveStream(context.Background(), manifest, ciphered)
	if err != nil {
		t.Fatalf("ResolveStream: %v", err)
	}
	if !strings.Contains(resolved, "sig=cba") || !strings.Contains(resolved, "itag=251") {
		t.Fatalf("resolved = %q", resolved)
	}
	if !strings.Contains(resolved, "pot=tok123") {
		t.Fatalf("resolved = %q, want media po token", resolved)
	}
}

func TestResolveStreamsBatch(t *testing.T) {
	c := newTestClient(t, Config{
		PoTokenProvider: PoTokenProviderFunc(func(context.Context, string) (string, error) {
			return "tok123", nil
		}),
	})

	manifest, err := c.GetManifest(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	streams, err := c.GetStreamsFromManifest(context.Background(), manifest)
	if err != nil {
		t.Fatalf("GetStreamsFromManifest: %v", err)
	}

	resolved, err := c.ResolveStreams(context.Background(), manifest, streams.Streams)
	if err != nil {
		t.Fatalf("ResolveStreams: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved = %d urls, want 2", len(resolved))
	}
	if !strings.Contains(resolved[0], "itag=18") {
		t.Fatalf("resolved[0] = %q", resolved[0])
	}
	if !strings.Contains(resolved[1], "sig=cba") {
		t.Fatalf("resolved[1] = %q", resolved[1])
	}
}

func TestApplyGvsPoToken(t *testing.T) {
	const mediaURL = "https://r1.example/videoplayback?itag=18"
	c := newTestClient(t, Config{})

	// Web media URLs require a token for anonymous playback.
	if _, err := c.applyGvsPoToken(context.Background(), mediaURL, "web", false); err == nil {
		t.Fatal("required policy without provider did not fail")
	} else {
		var required *orchestrator.PoTokenRequiredError
		if !errors.As(err, &required) {
			t.Fatalf("err = %v, want PoTokenRequiredError", err)
		}
	}

	// Premium lifts the web requirement.
	got, err := c.applyGvsPoToken(context.Background(), mediaURL, "web", true)
	if err != nil || !strings.HasSuffix(got, "itag=18") {
		t.Fatalf("premium web url = %q, %v", got, err)
	}

	// Sdkless android has no media token policy at all.
	got, err = c.applyGvsPoToken(context.Background(), mediaURL, "android_sdkless", false)
	if err != nil || got != mediaURL {
		t.Fatalf("android_sdkless url = %q, %v", got, err)
	}

	withProvider := newTestClient(t, Config{
		PoTokenProvider: PoTokenProviderFunc(func(context.Context, string) (string, error) {
			return "tok123", nil
		}),
	})
	got, err = withProvider.applyGvsPoToken(context.Background(), mediaURL, "web", false)
	if err != nil {
		t.Fatalf("applyGvsPoToken: %v", err)
	}
	if !strings.Contains(got, "pot=tok123") {
		t.Fatalf("url = %q, want pot param", got)
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{testVideoID, testVideoID},
		{"https://www.youtube.com/watch?v=" + testVideoID, testVideoID},
		{"https://youtu.be/" + testVideoID + "?t=1", testVideoID},
		{"https://www.youtube.com/shorts/" + testVideoID, testVideoID},
		{"https://www.youtube.com/embed/" + testVideoID, testVideoID},
		{"https://www.youtube.com/live/" + testVideoID, testVideoID},
		{"youtube.com/watch?v=" + testVideoID, testVideoID},
		{"https://music.youtube.com/watch?v=" + testVideoID, testVideoID},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.in)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ExtractVideoID(%q) = %q", tt.in, got)
		}
	}

	for _, bad := range []string{"", "short", "https://example.com/watch?v=" + testVideoID} {
		if _, err := ExtractVideoID(bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ExtractVideoID(%q) err = %v, want ErrInvalidInput", bad, err)
		}
	}
}
