package store

import "context"

// Handle is a string key-value backend. Missing keys return ok=false.
type Handle interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// KeyValueStore is a Store bound to one key of a Handle.
type KeyValueStore struct {
	handle Handle
	key    string
}

// NewKeyValueStore binds a handle to a key.
func NewKeyValueStore(handle Handle, key string) *KeyValueStore {
	return &KeyValueStore{handle: handle, key: key}
}

// Key returns the key the store is bound to.
func (s *KeyValueStore) Key() string {
	return s.key
}

func (s *KeyValueStore) Get(ctx context.Context) (string, bool, error) {
	return s.handle.GetItem(ctx, s.key)
}

func (s *KeyValueStore) Set(ctx context.Context, value string) error {
	return s.handle.SetItem(ctx, s.key, value)
}

func (s *KeyValueStore) Delete(ctx context.Context) error {
	return s.handle.RemoveItem(ctx, s.key)
}

// GetWithKey reads another key of the same handle.
func (s *KeyValueStore) GetWithKey(ctx context.Context, key string) (string, bool, error) {
	return s.handle.GetItem(ctx, key)
}

// SetWithKey writes another key of the same handle.
func (s *KeyValueStore) SetWithKey(ctx context.Context, key, value string) error {
	return s.handle.SetItem(ctx, key, value)
}

// DeleteWithKey removes another key of the same handle.
func (s *KeyValueStore) DeleteWithKey(ctx context.Context, key string) error {
	return s.handle.RemoveItem(ctx, key)
}
