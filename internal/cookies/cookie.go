// Package cookies holds the domain-indexed cookie jar shared by the
// extraction paths, plus Netscape cookie-file ingestion.
package cookies

import "strings"

// Cookie is one stored cookie. HTTPOnly is inferred at construction for
// __Host- and __Secure- prefixed names.
type Cookie struct {
	Name       string
	Value      string
	Domain     string
	Path       string
	Secure     bool
	Expiration int64 // unix seconds, 0 when unset
	HTTPOnly   bool
}

// NewCookie builds a Cookie with the default path and inferred HTTPOnly.
func NewCookie(name, value, domain string) Cookie {
	return Cookie{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     "/",
		HTTPOnly: inferHTTPOnly(name),
	}
}

func inferHTTPOnly(name string) bool {
	return strings.HasPrefix(name, "__Host-") || strings.HasPrefix(name, "__Secure-")
}

// matchesHost reports whether the cookie applies to host. A leading dot
// on the stored domain includes subdomains, per the Netscape flag.
func (c Cookie) matchesHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	domain := strings.ToLower(strings.TrimSpace(c.Domain))
	if host == "" || domain == "" {
		return false
	}
	if !strings.HasPrefix(domain, ".") {
		return host == domain
	}
	bare := domain[1:]
	return host == bare || strings.HasSuffix(host, domain)
}

// DomainCookies is an ordered cookie list for one host.
type DomainCookies []Cookie

// Get returns the first cookie named name.
func (d DomainCookies) Get(name string) (Cookie, bool) {
	for _, c := range d {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Exists reports whether a cookie named name is present.
func (d DomainCookies) Exists(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// HeaderValue materializes the list as an HTTP Cookie header value,
// preserving order: "k1=v1; k2=v2".
func (d DomainCookies) HeaderValue() string {
	parts := make([]string, 0, len(d))
	for _, c := range d {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
