package cookies

import (
	"net/http"
	"time"
)

// DefaultPath is used when a cookie is written or deleted without a path.
const DefaultPath = "/"

// Jar is the minimal cookie surface the consent engine needs.
type Jar interface {
	// All returns the cookies currently visible, in jar order. Only Name and
	// Value are meaningful on the returned cookies.
	All() []*http.Cookie
	// Write stores, replaces or (when expired) removes a cookie.
	Write(c *http.Cookie)
}

// Get returns the first visible cookie with the given name.
func Get(jar Jar, name string) (*http.Cookie, bool) {
	for _, c := range jar.All() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Set writes a cookie that expires after the given number of days.
// A zero days value produces a session cookie.
func Set(jar Jar, name, value string, days int, domain, path string) {
	if path == "" {
		path = DefaultPath
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   domain,
		SameSite: http.SameSiteLaxMode,
	}
	if days > 0 {
		c.Expires = time.Now().Add(time.Duration(days) * 24 * time.Hour)
	}
	jar.Write(c)
}

// Delete expires a cookie. The browser only removes a cookie when path and
// domain match the original write, so three writes are issued: bare, with
// path, and with path and domain when a domain is given.
func Delete(jar Jar, name, path, domain string) {
	if path == "" {
		path = DefaultPath
	}

	jar.Write(&http.Cookie{Name: name, MaxAge: -1})
	jar.Write(&http.Cookie{Name: name, MaxAge: -1, Path: path})

	if domain != "" {
		jar.Write(&http.Cookie{Name: name, MaxAge: -1, Path: path, Domain: domain})
	}
}

// expired reports whether a write removes the cookie instead of storing it.
func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

type jarKey struct {
	name   string
	path   string
	domain string
}

// MemoryJar is an in-process Jar. Cookies are identified by name, path and
// domain, like in a browser. Every write is recorded in Writes.
type MemoryJar struct {
	order   []jarKey
	entries map[jarKey]*http.Cookie

	// Writes records every cookie written to the jar, in order.
	Writes []*http.Cookie
}

// NewMemoryJar creates an empty jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{entries: make(map[jarKey]*http.Cookie)}
}

// All returns copies of the stored cookies.
func (j *MemoryJar) All() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(j.order))
	for _, k := range j.order {
		c := *j.entries[k]
		out = append(out, &c)
	}
	return out
}

// Write applies a cookie write.
func (j *MemoryJar) Write(c *http.Cookie) {
	cp := *c
	j.Writes = append(j.Writes, &cp)

	k := jarKey{name: c.Name, path: c.Path, domain: c.Domain}
	if expired(c, time.Now()) {
		if _, ok := j.entries[k]; !ok {
			return
		}
		delete(j.entries, k)
		for i, existing := range j.order {
			if existing == k {
				j.order = append(j.order[:i], j.order[i+1:]...)
				break
			}
		}
		return
	}

	if _, ok := j.entries[k]; !ok {
		j.order = append(j.order, k)
	}
	stored := *c
	j.entries[k] = &stored
}

// Deletions returns the expiring writes recorded for a cookie name.
func (j *MemoryJar) Deletions(name string) []*http.Cookie {
	var out []*http.Cookie
	now := time.Now()
	for _, c := range j.Writes {
		if c.Name == name && expired(c, now) {
			out = append(out, c)
		}
	}
	return out
}
