package store

import (
	"context"
	"errors"
	"fmt"

	"consent-manager/core/cookies"
)

var (
	// ErrUnknownMethod is returned for a storage method outside the closed set.
	ErrUnknownMethod = errors.New("unknown storage method")
	// ErrBackendUnavailable is returned when the selected method has no backend wired.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// Store holds a single string value.
type Store interface {
	// Get returns the stored value; ok is false when nothing is stored.
	Get(ctx context.Context) (value string, ok bool, err error)
	Set(ctx context.Context, value string) error
	Delete(ctx context.Context) error
}

// Method names a storage backend.
type Method string

const (
	MethodCookie  Method = "cookie"
	MethodMemory  Method = "memory"
	MethodLocal   Method = "local"
	MethodSession Method = "session"
	MethodObject  Method = "object"
)

// Methods lists the supported methods.
var Methods = []Method{MethodCookie, MethodMemory, MethodLocal, MethodSession, MethodObject}

// ParseMethod validates a method name. An empty name selects the cookie method.
func ParseMethod(name string) (Method, error) {
	if name == "" {
		return MethodCookie, nil
	}
	for _, m := range Methods {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Backends carries the dependencies the methods are built from. Only the one
// needed by the selected method has to be set.
type Backends struct {
	Jar     cookies.Jar
	Local   Handle
	Session Handle
	Object  Handle
}

// Options are the per-store settings.
type Options struct {
	// Name is the cookie name or key the blob is stored under.
	Name                   string
	CookieDomain           string
	CookiePath             string
	CookieExpiresAfterDays int
}

// New builds the store for a method.
func New(method Method, backends Backends, opts Options) (Store, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}

	switch method {
	case "", MethodCookie:
		if backends.Jar == nil {
			return nil, fmt.Errorf("%w: %s needs a cookie jar", ErrBackendUnavailable, MethodCookie)
		}
		return NewCookieStore(backends.Jar, opts), nil
	case MethodMemory:
		return NewMemoryStore(), nil
	case MethodLocal:
		return newKeyValue(method, backends.Local, opts.Name)
	case MethodSession:
		return newKeyValue(method, backends.Session, opts.Name)
	case MethodObject:
		return newKeyValue(method, backends.Object, opts.Name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func newKeyValue(method Method, handle Handle, key string) (Store, error) {
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, method)
	}
	return NewKeyValueStore(handle, key), nil
}
