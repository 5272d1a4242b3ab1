package store

import (
	"context"

	"consent-manager/core/cookies"
)

// CookieStore keeps the value in a cookie.
type CookieStore struct {
	jar              cookies.Jar
	name             string
	domain           string
	path             string
	expiresAfterDays int
}

// NewCookieStore creates a cookie-backed store.
func NewCookieStore(jar cookies.Jar, opts Options) *CookieStore {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	return &CookieStore{
		jar:              jar,
		name:             name,
		domain:           opts.CookieDomain,
		path:             opts.CookiePath,
		expiresAfterDays: opts.CookieExpiresAfterDays,
	}
}

func (s *CookieStore) Get(_ context.Context) (string, bool, error) {
	c, ok := cookies.Get(s.jar, s.name)
	if !ok || c.Value == "" {
		return "", false, nil
	}
	return c.Value, true, nil
}

func (s *CookieStore) Set(_ context.Context, value string) error {
	cookies.Set(s.jar, s.name, value, s.expiresAfterDays, s.domain, s.path)
	return nil
}

// Delete expires the cookie under the configured path and domain.
func (s *CookieStore) Delete(_ context.Context) error {
	cookies.Delete(s.jar, s.name, s.path, s.domain)
	return nil
}
