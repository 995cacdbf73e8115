package innertube

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/famomatic/ytx/internal/cookies"
)

// DefaultOrigin is the origin SAPISID hashes bind to when none is given.
const DefaultOrigin = "https://www.youtube.com"

const loginInfoCookie = "LOGIN_INFO"

// SidCookies holds the session cookies an Authorization header can be
// derived from. Slot zero falls back to __Secure-3PAPISID when SAPISID is
// absent.
type SidCookies struct {
	Sapisid   string
	Sapisid1P string
	Sapisid3P string
}

// SidCookiesFrom extracts the three SID slots from the site's cookies.
func SidCookiesFrom(dc cookies.DomainCookies) SidCookies {
	var sids SidCookies
	if c, ok := dc.Get("SAPISID"); ok {
		sids.Sapisid = c.Value
	}
	if c, ok := dc.Get("__Secure-1PAPISID"); ok {
		sids.Sapisid1P = c.Value
	}
	if c, ok := dc.Get("__Secure-3PAPISID"); ok {
		sids.Sapisid3P = c.Value
		if sids.Sapisid == "" {
			sids.Sapisid = c.Value
		}
	}
	return sids
}

// Empty reports whether no SID cookie was found.
func (s SidCookies) Empty() bool {
	return s.Sapisid == "" && s.Sapisid1P == "" && s.Sapisid3P == ""
}

// AuthSession carries per-request identity material into header assembly.
type AuthSession struct {
	DelegatedSessionID string
	UserSessionID      string
	SessionIndex       *int
	LoggedIn           bool
}

// makeSidAuthorization emits "<scheme> <ts>_<sha1hex>[_<extra>]". The hash
// covers "[extra ]ts sid origin" joined by single spaces; the trailing part
// repeats the extra values verbatim.
func makeSidAuthorization(scheme, sid, origin string, now time.Time, extra []string) string {
	ts := strconv.FormatInt(now.Unix(), 10)

	hashParts := make([]string, 0, 4)
	if len(extra) > 0 {
		hashParts = append(hashParts, strings.Join(extra, ":"))
	}
	hashParts = append(hashParts, ts, sid, origin)
	sum := sha1.Sum([]byte(strings.Join(hashParts, " ")))

	parts := []string{ts, hex.EncodeToString(sum[:])}
	if len(extra) > 0 {
		parts = append(parts, strings.Join(extra, ""))
	}
	return scheme + " " + strings.Join(parts, "_")
}

// SidAuthorization builds the space-joined Authorization value for every
// present SID slot, or "" when the jar has none.
func SidAuthorization(sids SidCookies, origin string, now time.Time, userSessionID string) string {
	if origin == "" {
		origin = DefaultOrigin
	}
	var extra []string
	if userSessionID != "" {
		extra = []string{userSessionID}
	}

	tokens := make([]string, 0, 3)
	for _, slot := range []struct {
		scheme string
		sid    string
	}{
		{"SAPISIDHASH", sids.Sapisid},
		{"SAPISID1PHASH", sids.Sapisid1P},
		{"SAPISID3PHASH", sids.Sapisid3P},
	} {
		if slot.sid == "" {
			continue
		}
		tokens = append(tokens, makeSidAuthorization(slot.scheme, slot.sid, origin, now, extra))
	}
	return strings.Join(tokens, " ")
}

// BuildAuthHeaders assembles the cookie-derived request headers:
// Authorization and X-Origin when any SID cookie is present, plus the
// session identity headers.
func BuildAuthHeaders(dc cookies.DomainCookies, origin string, now time.Time, session AuthSession) http.Header {
	out := make(http.Header)
	if session.LoggedIn {
		out.Set("X-Youtube-Bootstrap-Logged-In", "true")
	}
	if session.DelegatedSessionID != "" {
		out.Set("X-Goog-PageId", session.DelegatedSessionID)
	}
	if session.DelegatedSessionID != "" || session.SessionIndex != nil {
		authUser := 0
		if session.SessionIndex != nil {
			authUser = *session.SessionIndex
		}
		out.Set("X-Goog-AuthUser", strconv.Itoa(authUser))
	}

	sids := SidCookiesFrom(dc)
	if sids.Empty() {
		return out
	}
	if origin == "" {
		origin = DefaultOrigin
	}
	if auth := SidAuthorization(sids, origin, now, session.UserSessionID); auth != "" {
		out.Set("Authorization", auth)
		out.Set("X-Origin", origin)
	}
	return out
}

// IsAuthenticated reports whether the cookies carry a usable login:
// LOGIN_INFO plus at least one SID cookie.
func IsAuthenticated(dc cookies.DomainCookies) bool {
	return dc.Exists(loginInfoCookie) && !SidCookiesFrom(dc).Empty()
}
