// Package store persists the consent blob.
//
// Every backend stores exactly one opaque string under one key and exposes the
// same three operations: Get, Set and Delete. The engine never persists partial
// state, so there is nothing more to abstract.
//
// # Methods
//
// The backend is chosen by a configured method name from a closed set:
//
//   - cookie (default): the blob lives in a cookie of the visitor's jar.
//   - memory: process memory, for tests and offline runs.
//   - local: a SQL table through GORM (long-lived, like localStorage).
//   - session: Redis with a TTL (session scoped, like sessionStorage).
//   - object: an S3/MinIO object per key.
//
// The three key-value methods share KeyValueStore, which wraps a Handle. The
// handles are also usable directly for bookkeeping under other keys.
//
// # Usage
//
//	st, err := store.New(store.MethodSession, store.Backends{Session: handle}, store.Options{Name: "klaro:" + visitor})
//	value, ok, err := st.Get(ctx)
package store
