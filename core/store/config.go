package store

// DefaultName is the key (or cookie name) the consent blob is stored under.
const DefaultName = "klaro"

// Config holds the storage settings of the consent engine.
type Config struct {
	// Method selects the backend (cookie, memory, local, session, object).
	Method string `mapstructure:"method" default:"cookie"`
	// Name is the cookie name or key prefix of the consent blob.
	Name string `mapstructure:"name" default:"klaro"`
	// CookieDomain scopes the consent cookie; empty means the current host.
	CookieDomain string `mapstructure:"cookie_domain" default:""`
	// CookiePath scopes the consent cookie.
	CookiePath string `mapstructure:"cookie_path" default:"/"`
	// CookieExpiresAfterDays is the lifetime of the consent cookie.
	CookieExpiresAfterDays int `mapstructure:"cookie_expires_after_days" default:"120"`
	// SessionTTLMinutes is the lifetime of session (Redis) entries.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" default:"30"`
	// Bucket is the object storage bucket for the object method.
	Bucket string `mapstructure:"bucket" default:"consents"`
	// ObjectPrefix is the key prefix of consent blobs in the bucket.
	ObjectPrefix string `mapstructure:"object_prefix" default:"consents"`
	// Table is the SQL table for the local method.
	Table string `mapstructure:"table" default:"consent_entries"`
}

// Options returns the per-store options for a key.
func (c Config) Options(key string) Options {
	days := c.CookieExpiresAfterDays
	if days <= 0 {
		days = 120
	}
	return Options{
		Name:                   key,
		CookieDomain:           c.CookieDomain,
		CookiePath:             c.CookiePath,
		CookieExpiresAfterDays: days,
	}
}

// MetaSuffix is appended to a blob key for the auxiliary save-type entry.
const MetaSuffix = ":meta"

// Key returns the key of a visitor's blob: the configured name, suffixed with
// the visitor id when one is given.
func (c Config) Key(visitor string) string {
	name := c.Name
	if name == "" {
		name = DefaultName
	}
	if visitor == "" {
		return name
	}
	return name + ":" + visitor
}
