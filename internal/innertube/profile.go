// Package innertube implements the JSON API client used by the site's own
// frontends: client profiles, request/response shapes, header assembly and
// cookie-based authorization.
package innertube

import "strings"

// ClientID identifies one Innertube client profile in the registry.
// The text before the first underscore is the base family, the remainder
// the variant (e.g. "web_embedded" -> base "web", variant "embedded").
type ClientID string

const (
	ClientWeb            ClientID = "web"
	ClientWebSafari      ClientID = "web_safari"
	ClientWebEmbedded    ClientID = "web_embedded"
	ClientWebMusic       ClientID = "web_music"
	ClientWebCreator     ClientID = "web_creator"
	ClientAndroid        ClientID = "android"
	ClientAndroidSdkless ClientID = "android_sdkless"
	ClientAndroidVR      ClientID = "android_vr"
	ClientIOS            ClientID = "ios"
	ClientMWeb           ClientID = "mweb"
	ClientTV             ClientID = "tv"
	ClientTVSimply       ClientID = "tv_simply"
	ClientTVEmbedded     ClientID = "tv_embedded"
)

func (c ClientID) String() string { return string(c) }

// Base returns the client family name ("web", "android", ...).
func (c ClientID) Base() string {
	base, _, _ := strings.Cut(string(c), "_")
	return base
}

// Variant returns the part after the first underscore, or "" for base clients.
func (c ClientID) Variant() string {
	_, variant, _ := strings.Cut(string(c), "_")
	return variant
}

// IsEmbedded reports whether the client impersonates an embedded player.
func (c ClientID) IsEmbedded() bool { return c.Variant() == "embedded" }

// basePriorities orders client families for fallback scheduling. Higher
// wins. Unknown families sort below everything.
var basePriorities = []string{"android", "mweb", "tv", "web", "ios"}

// Priority ranks clients for ordering in diagnostics and fallback lists.
// Embedded variants rank one step above their base siblings.
func (c ClientID) Priority() int {
	index := -1
	for i, base := range basePriorities {
		if base == c.Base() {
			index = i
			break
		}
	}
	if c.IsEmbedded() {
		return 10*index - 2
	}
	return 10*index - 3
}

// VideoStreamingProtocol represents the protocol used for video streaming.
type VideoStreamingProtocol string

const (
	StreamingProtocolHTTPS VideoStreamingProtocol = "https"
	StreamingProtocolDASH  VideoStreamingProtocol = "dash"
	StreamingProtocolHLS   VideoStreamingProtocol = "hls"
)

// GvsPoTokenPolicy describes how strictly a client needs a Proof of Origin
// token for media (GVS) URLs under a given streaming protocol.
type GvsPoTokenPolicy struct {
	Required                   bool
	Recommended                bool
	NotRequiredForPremium      bool
	NotRequiredWithPlayerToken bool
}

// PlayerPoTokenPolicy describes PO-token handling for the player request itself.
type PlayerPoTokenPolicy struct {
	Required              bool
	Recommended           bool
	NotRequiredForPremium bool
}

// SubsPoTokenPolicy describes PO-token handling for subtitle URLs.
type SubsPoTokenPolicy struct {
	Required bool
}

// PoTokenFetchPolicy controls how strictly POT fetching is enforced.
type PoTokenFetchPolicy string

const (
	PoTokenFetchPolicyRequired    PoTokenFetchPolicy = "required"
	PoTokenFetchPolicyRecommended PoTokenFetchPolicy = "recommended"
	PoTokenFetchPolicyNever       PoTokenFetchPolicy = "never"
)

// ClientProfile is one Innertube client identity: the context it sends, the
// host it talks to and the capabilities the orchestrator keys decisions on.
type ClientProfile struct {
	ID            ClientID
	Name          string // Innertube clientName, e.g. "WEB"
	Version       string
	Host          string
	ContextNameID int // X-YouTube-Client-Name header value

	UserAgent         string
	DeviceMake        string
	DeviceModel       string
	OsName            string
	OsVersion         string
	AndroidSDKVersion int

	SupportsCookies bool
	RequireJSPlayer bool
	RequireAuth     bool

	// AuthenticatedUserAgent replaces UserAgent when cookies authenticate
	// the session. Only the TV client carries one.
	AuthenticatedUserAgent string

	// EmbedURL is sent as context.thirdParty.embedUrl for embedded variants.
	EmbedURL string

	GvsPoTokenPolicy    map[VideoStreamingProtocol]GvsPoTokenPolicy
	PlayerPoTokenPolicy PlayerPoTokenPolicy
	SubsPoTokenPolicy   SubsPoTokenPolicy

	Priority int
}

// ClientContext renders the profile's context.client object. Optional
// device fields are only present when the profile defines them.
func (p ClientProfile) ClientContext() map[string]any {
	ctx := map[string]any{
		"clientName":    p.Name,
		"clientVersion": p.Version,
		"hl":            preferredLocale,
	}
	if p.UserAgent != "" {
		ctx["userAgent"] = p.UserAgent
	}
	if p.DeviceMake != "" {
		ctx["deviceMake"] = p.DeviceMake
	}
	if p.DeviceModel != "" {
		ctx["deviceModel"] = p.DeviceModel
	}
	if p.OsName != "" {
		ctx["osName"] = p.OsName
	}
	if p.OsVersion != "" {
		ctx["osVersion"] = p.OsVersion
	}
	if p.AndroidSDKVersion != 0 {
		ctx["androidSdkVersion"] = p.AndroidSDKVersion
	}
	return ctx
}

// UserAgentFor returns the User-Agent the profile presents, swapping in the
// authenticated variant when the session carries login cookies.
func (p ClientProfile) UserAgentFor(authenticated bool) string {
	if authenticated && p.AuthenticatedUserAgent != "" {
		return p.AuthenticatedUserAgent
	}
	return p.UserAgent
}

// Registry exposes the immutable client profile table.
type Registry interface {
	Get(id ClientID) (ClientProfile, bool)
	All() []ClientProfile
}
