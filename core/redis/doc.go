// Package redis wraps the go-redis client used by the "session" storage
// method. New returns a nil client when no URL is configured, so callers can
// treat Redis as optional.
package redis
