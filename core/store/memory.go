package store

import "context"

// MemoryStore keeps the value in process memory.
type MemoryStore struct {
	value string
	set   bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith creates a store holding value.
func NewMemoryStoreWith(value string) *MemoryStore {
	return &MemoryStore{value: value, set: true}
}

func (s *MemoryStore) Get(_ context.Context) (string, bool, error) {
	return s.value, s.set, nil
}

func (s *MemoryStore) Set(_ context.Context, value string) error {
	s.value = value
	s.set = true
	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.value = ""
	s.set = false
	return nil
}
