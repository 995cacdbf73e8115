package innertube

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/famomatic/ytx/internal/cookies"
	"github.com/famomatic/ytx/internal/types"
)

// DefaultTimeout bounds one Innertube exchange when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 30 * time.Second

// Endpoint selects the Innertube API method.
type Endpoint int

const (
	EndpointPlayer Endpoint = iota
	EndpointNext
	EndpointBrowse
)

func (e Endpoint) path() string {
	switch e {
	case EndpointPlayer:
		return "player"
	case EndpointNext:
		return "next"
	case EndpointBrowse:
		return "browse"
	}
	return ""
}

func (e Endpoint) String() string { return e.path() }

// Client posts Innertube API calls for any profile, attaching cookies and
// cookie-derived authorization from the shared jar.
type Client struct {
	HTTP    *http.Client
	Jar     *cookies.Jar
	Timeout time.Duration

	// Now is overridable for tests; SAPISID hashes embed the timestamp.
	Now func() time.Time
}

// Request describes one Innertube exchange.
type Request struct {
	Profile  ClientProfile
	Endpoint Endpoint

	// Query carries the body fields beside context (videoId, playbackContext, ...).
	Query map[string]any

	// ContextClient replaces the profile's context.client when non-empty,
	// typically with the client block mined from a page ytcfg.
	ContextClient map[string]any

	// Headers are applied last and override the assembled defaults.
	Headers http.Header

	// VisitorData overrides visitor-id resolution; when empty the blobs
	// are searched instead.
	VisitorData string
	ConfigBlobs []map[string]any

	APIKey        string
	Session       AuthSession
	Authenticated bool
}

// Response is a decoded Innertube payload, kept raw for typed re-decoding.
type Response struct {
	Raw    []byte
	Object map[string]any
}

// Decode unmarshals the raw payload into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("%w: %v", types.ErrDecode, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Do sends one POST to https://<host>/youtubei/v1/<endpoint> and decodes
// the JSON reply.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	profile := req.Profile
	host := profile.Host
	if host == "" {
		host = defaultHost
	}
	origin := "https://" + host

	clientCtx := profile.ClientContext()
	if len(req.ContextClient) > 0 {
		clientCtx = maps.Clone(req.ContextClient)
	}
	clientCtx["hl"] = preferredLocale
	clientCtx["timeZone"] = "UTC"
	clientCtx["utcOffsetMinutes"] = 0

	contextObj := map[string]any{"client": clientCtx}
	if profile.EmbedURL != "" {
		contextObj["thirdParty"] = map[string]any{"embedUrl": profile.EmbedURL}
	}

	body := make(map[string]any, len(req.Query)+1)
	body["context"] = contextObj
	for k, v := range req.Query {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s body: %v", types.ErrInvalidInput, req.Endpoint, err)
	}

	query := url.Values{"prettyPrint": {"false"}}
	if req.APIKey != "" {
		query.Set("key", req.APIKey)
	}
	apiURL := origin + "/youtubei/v1/" + req.Endpoint.path() + "?" + query.Encode()

	if _, ok := ctx.Deadline(); !ok {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	httpReq.Header.Set("X-YouTube-Client-Name", strconv.Itoa(profile.ContextNameID))
	httpReq.Header.Set("X-YouTube-Client-Version", profile.Version)
	httpReq.Header.Set("Origin", origin)

	visitor := req.VisitorData
	if visitor == "" {
		visitor = SearchVisitorData(req.ConfigBlobs...)
	}
	if visitor != "" {
		httpReq.Header.Set("X-Goog-Visitor-Id", visitor)
	}
	if ua := profile.UserAgentFor(req.Authenticated); ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}

	var domain cookies.DomainCookies
	if c.Jar != nil {
		domain = c.Jar.ForHost(host)
	}
	if len(domain) > 0 {
		httpReq.Header.Set("Cookie", domain.HeaderValue())
	}
	for key, values := range BuildAuthHeaders(domain, origin, c.now(), req.Session) {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		if name, ok := types.ClientNameFromContext(ctx); ok {
			return nil, fmt.Errorf("%w: post %s as %s: %v", types.ErrTransport, req.Endpoint, name, err)
		}
		return nil, fmt.Errorf("%w: post %s: %v", types.ErrTransport, req.Endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", types.ErrTransport, req.Endpoint, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &types.HTTPStatusError{Status: resp.StatusCode, URL: apiURL}
		}
		return nil, fmt.Errorf("%w: %s response is not a JSON object: %v", types.ErrDecode, req.Endpoint, err)
	}
	return &Response{Raw: data, Object: obj}, nil
}

// readBody drains the response, undoing the negotiated content encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzReader.Close()
		reader = gzReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(reader)
}
