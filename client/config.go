package client

import (
	"io"
	"net/http"
	"time"

	"github.com/famomatic/ytx/internal/cookies"
	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/orchestrator"
)

// Cookie re-exports the jar's cookie record.
type Cookie = cookies.Cookie

// ParseNetscapeCookies reads a Netscape-format cookie file for
// Config.AuthCookies.
func ParseNetscapeCookies(r io.Reader) ([]Cookie, error) {
	return cookies.ParseNetscape(r)
}

// ClientID re-exports the profile identifiers usable as DefaultClient or
// ClientOverrides values.
type ClientID = innertube.ClientID

const (
	ClientWeb            = innertube.ClientWeb
	ClientWebSafari      = innertube.ClientWebSafari
	ClientWebEmbedded    = innertube.ClientWebEmbedded
	ClientWebMusic       = innertube.ClientWebMusic
	ClientWebCreator     = innertube.ClientWebCreator
	ClientAndroid        = innertube.ClientAndroid
	ClientAndroidSdkless = innertube.ClientAndroidSdkless
	ClientAndroidVR      = innertube.ClientAndroidVR
	ClientIOS            = innertube.ClientIOS
	ClientMWeb           = innertube.ClientMWeb
	ClientTV             = innertube.ClientTV
	ClientTVSimply       = innertube.ClientTVSimply
	ClientTVEmbedded     = innertube.ClientTVEmbedded
)

// Config tunes a Client. The zero value extracts anonymously with the
// default client tiers.
type Config struct {
	// AuthCookies seeds the jar with cookies from a logged-in account,
	// typically parsed from a Netscape cookie file.
	AuthCookies []cookies.Cookie

	// PreferInsecure fetches site pages over http instead of https.
	PreferInsecure bool

	// SourceAddress is sent as X-Forwarded-For on every site request.
	SourceAddress string

	// DefaultClient pins the extraction to one client profile instead of
	// the tier defaults. ClientOverrides wins when both are set.
	DefaultClient innertube.ClientID

	// ClientOverrides replaces the client trial order entirely.
	ClientOverrides []innertube.ClientID

	// HTTPClient overrides the transport. ProxyURL is ignored when set.
	HTTPClient *http.Client
	ProxyURL   string

	// RequestTimeout bounds each Innertube call. Zero means the package
	// default.
	RequestTimeout time.Duration

	// PoTokenProvider supplies proof-of-origin tokens per client. Tokens
	// are cached per client id for the life of the Client.
	PoTokenProvider innertube.PoTokenProvider

	// OnExtractionEvent observes state-machine transitions.
	OnExtractionEvent orchestrator.EventSink

	Logger Logger
}

func (c Config) overrides() []innertube.ClientID {
	if len(c.ClientOverrides) > 0 {
		return c.ClientOverrides
	}
	if c.DefaultClient != "" {
		return []innertube.ClientID{c.DefaultClient}
	}
	return nil
}
