// Package policy decides which Innertube clients an extraction attempts
// and in what order, based on the session's authentication tier.
package policy

import (
	"regexp"
	"strings"

	"github.com/famomatic/ytx/internal/innertube"
	"github.com/famomatic/ytx/internal/jsontree"
)

// Logger receives selection warnings.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

var musicURLPattern = regexp.MustCompile(`(https?://)?music\.youtube\.com/`)

// IsMusicURL reports whether rawURL points at the music frontend.
func IsMusicURL(rawURL string) bool {
	return musicURLPattern.MatchString(rawURL)
}

// IsPremiumSubscriber inspects the watch page's initial data for the
// premium topbar markers. Unauthenticated sessions are never premium.
func IsPremiumSubscriber(authenticated bool, initialData map[string]any) bool {
	if !authenticated || len(initialData) == 0 {
		return false
	}
	tlr, ok := jsontree.Map(initialData, "topbar", "desktopTopbarRenderer", "logo", "topbarLogoRenderer")
	if !ok {
		return false
	}
	if icon, _ := jsontree.String(tlr, "iconImage", "iconType"); icon == "YOUTUBE_PREMIUM_LOGO" {
		return true
	}
	return strings.Contains(strings.ToLower(tooltipText(tlr)), "premium")
}

func tooltipText(tlr map[string]any) string {
	if text, ok := jsontree.String(tlr, "tooltipText", "simpleText"); ok {
		return text
	}
	runs, ok := jsontree.Slice(tlr, "tooltipText", "runs")
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, run := range runs {
		if m, ok := run.(map[string]any); ok {
			if text, ok := jsontree.String(m, "text"); ok {
				b.WriteString(text)
			}
		}
	}
	return b.String()
}

// Input captures everything client selection keys on.
type Input struct {
	// URL is the original request URL when one exists; it decides the
	// music frontend special case alongside IsMusic.
	URL     string
	IsMusic bool

	Authenticated     bool
	PremiumSubscriber bool

	// Overrides replaces the tier defaults when non-empty.
	Overrides []innertube.ClientID
}

// Clients returns the ordered client ids for one extraction. Premium
// sessions lead with clients that skip PO-token enforcement; anonymous
// ones lead with the sdkless android frontend. Authenticated sessions
// drop clients that cannot carry cookies and, on the music frontend, add
// the music web client.
func Clients(in Input, log Logger) []innertube.ClientID {
	if log == nil {
		log = nopLogger{}
	}

	var clients []innertube.ClientID
	switch {
	case len(in.Overrides) > 0:
		clients = append(clients, in.Overrides...)
	case in.PremiumSubscriber:
		clients = []innertube.ClientID{
			innertube.ClientTV,
			innertube.ClientWebCreator,
			innertube.ClientWebSafari,
			innertube.ClientWeb,
		}
	case in.Authenticated:
		clients = []innertube.ClientID{
			innertube.ClientTV,
			innertube.ClientWebSafari,
			innertube.ClientWeb,
		}
	default:
		clients = []innertube.ClientID{
			innertube.ClientAndroidSdkless,
			innertube.ClientTV,
			innertube.ClientWebSafari,
			innertube.ClientWeb,
		}
	}

	if in.Authenticated {
		if in.IsMusic || IsMusicURL(in.URL) {
			clients = append(clients, innertube.ClientWebMusic)
		}
		clients = dropCookieless(clients, log)
	}

	return dedupe(clients)
}

// Select resolves Clients against the registry, skipping unknown ids.
func Select(registry innertube.Registry, in Input, log Logger) []innertube.ClientProfile {
	ids := Clients(in, log)
	profiles := make([]innertube.ClientProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := registry.Get(id); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

func dropCookieless(clients []innertube.ClientID, log Logger) []innertube.ClientID {
	registry := innertube.DefaultRegistry()
	kept := clients[:0]
	for _, id := range clients {
		p, ok := registry.Get(id)
		if ok && !p.SupportsCookies {
			log.Warnf("skipping client %q: it does not support cookies", id)
			continue
		}
		kept = append(kept, id)
	}
	return kept
}

func dedupe(clients []innertube.ClientID) []innertube.ClientID {
	seen := make(map[innertube.ClientID]struct{}, len(clients))
	unique := clients[:0]
	for _, id := range clients {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
