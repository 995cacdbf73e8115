package cookies

import "sync"

// Jar is a thread-safe cookie set filterable by host. Readers share the
// lock; writers take it exclusively.
type Jar struct {
	mu      sync.RWMutex
	cookies []Cookie
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{}
}

// NewJarWithCookies returns a jar seeded with the given cookies.
func NewJarWithCookies(cookies []Cookie) *Jar {
	j := &Jar{cookies: make([]Cookie, len(cookies))}
	copy(j.cookies, cookies)
	return j
}

// Set appends a cookie to the jar.
func (j *Jar) Set(c Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = append(j.cookies, c)
}

// ForHost returns a snapshot of the cookies applying to host, in
// insertion order.
func (j *Jar) ForHost(host string) DomainCookies {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out DomainCookies
	for _, c := range j.cookies {
		if c.matchesHost(host) {
			out = append(out, c)
		}
	}
	return out
}

// All returns a snapshot of every stored cookie.
func (j *Jar) All() []Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Cookie, len(j.cookies))
	copy(out, j.cookies)
	return out
}

// Len reports the number of stored cookies.
func (j *Jar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.cookies)
}
