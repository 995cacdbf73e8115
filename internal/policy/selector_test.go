package policy

import (
	"fmt"
	"testing"

	"github.com/famomatic/ytx/internal/innertube"
)

type warnRecorder struct {
	warnings []string
}

func (w *warnRecorder) Warnf(format string, args ...any) {
	w.warnings = append(w.warnings, fmt.Sprintf(format, args...))
}

func idsEqual(t *testing.T, got, want []innertube.ClientID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("clients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clients[%d] = %q, want %q (full %v)", i, got[i], want[i], got)
		}
	}
}

func TestClientsAnonymous(t *testing.T) {
	got := Clients(Input{}, nil)
	idsEqual(t, got, []innertube.ClientID{
		innertube.ClientAndroidSdkless,
		innertube.ClientTV,
		innertube.ClientWebSafari,
		innertube.ClientWeb,
	})
}

func TestClientsAuthenticated(t *testing.T) {
	got := Clients(Input{Authenticated: true}, nil)
	idsEqual(t, got, []innertube.ClientID{
		innertube.ClientTV,
		innertube.ClientWebSafari,
		innertube.ClientWeb,
	})
}

func TestClientsPremium(t *testing.T) {
	got := Clients(Input{Authenticated: true, PremiumSubscriber: true}, nil)
	idsEqual(t, got, []innertube.ClientID{
		innertube.ClientTV,
		innertube.ClientWebCreator,
		innertube.ClientWebSafari,
		innertube.ClientWeb,
	})
}

func TestClientsMusicURLAddsWebMusic(t *testing.T) {
	got := Clients(Input{Authenticated: true, URL: "https://music.youtube.com/watch?v=jNQXAC9IVRw"}, nil)
	idsEqual(t, got, []innertube.ClientID{
		innertube.ClientTV,
		innertube.ClientWebSafari,
		innertube.ClientWeb,
		innertube.ClientWebMusic,
	})
}

func TestClientsMusicIgnoredWhenAnonymous(t *testing.T) {
	got := Clients(Input{IsMusic: true}, nil)
	for _, id := range got {
		if id == innertube.ClientWebMusic {
			t.Fatalf("web_music selected without authentication: %v", got)
		}
	}
}

func TestClientsAuthenticatedDropsCookieless(t *testing.T) {
	log := &warnRecorder{}
	got := Clients(Input{
		Authenticated: true,
		Overrides:     []innertube.ClientID{innertube.ClientAndroidSdkless, innertube.ClientWeb},
	}, log)
	idsEqual(t, got, []innertube.ClientID{innertube.ClientWeb})
	if len(log.warnings) != 1 {
		t.Fatalf("warnings = %v, want one skip notice", log.warnings)
	}
}

func TestClientsDeduplicates(t *testing.T) {
	got := Clients(Input{Overrides: []innertube.ClientID{
		innertube.ClientWeb, innertube.ClientTV, innertube.ClientWeb,
	}}, nil)
	idsEqual(t, got, []innertube.ClientID{innertube.ClientWeb, innertube.ClientTV})
}

func TestSelectResolvesProfiles(t *testing.T) {
	profiles := Select(innertube.DefaultRegistry(), Input{}, nil)
	if len(profiles) != 4 {
		t.Fatalf("profiles = %d, want 4", len(profiles))
	}
	if profiles[0].ID != innertube.ClientAndroidSdkless {
		t.Fatalf("first profile = %q", profiles[0].ID)
	}
}

func TestIsMusicURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://music.youtube.com/watch?v=jNQXAC9IVRw", true},
		{"http://music.youtube.com/", true},
		{"music.youtube.com/watch", true},
		{"https://www.youtube.com/watch?v=jNQXAC9IVRw", false},
	}
	for _, tc := range cases {
		if got := IsMusicURL(tc.url); got != tc.want {
			t.Fatalf("IsMusicURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestIsPremiumSubscriber(t *testing.T) {
	premiumData := map[string]any{
		"topbar": map[string]any{
			"desktopTopbarRenderer": map[string]any{
				"logo": map[string]any{
					"topbarLogoRenderer": map[string]any{
						"iconImage": map[string]any{"iconType": "YOUTUBE_PREMIUM_LOGO"},
					},
				},
			},
		},
	}
	if !IsPremiumSubscriber(true, premiumData) {
		t.Fatal("premium logo not detected")
	}
	if IsPremiumSubscriber(false, premiumData) {
		t.Fatal("anonymous session reported premium")
	}

	tooltipData := map[string]any{
		"topbar": map[string]any{
			"desktopTopbarRenderer": map[string]any{
				"logo": map[string]any{
					"topbarLogoRenderer": map[string]any{
						"iconImage":   map[string]any{"iconType": "YOUTUBE_LOGO"},
						"tooltipText": map[string]any{"runs": []any{map[string]any{"text": "YouTube Premium"}}},
					},
				},
			},
		},
	}
	if !IsPremiumSubscriber(true, tooltipData) {
		t.Fatal("premium tooltip not detected")
	}

	if IsPremiumSubscriber(true, map[string]any{}) {
		t.Fatal("empty initial data reported premium")
	}
}
