// Package store implements durable persistence for the workflow backend.
//
// Persistence is deliberately a flat key-value surface with JSON-encoded
// values, mirroring the browser-local storage layout the product started
// with: history lists, settings objects, account records, and the current
// session pointer all live under string keys. Per-user namespacing is a
// key-building concern, not a schema concern, so the same store logic works
// regardless of the underlying medium.
//
// Two KV implementations are provided: a SQLite-backed one (GORM, pure-Go
// driver) for the server, and an in-memory one for tests.
package store

import "context"

// KV is the minimal durable key-value contract the store is built on.
// Values are opaque strings; this layer always stores JSON documents.
//
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes (or overwrites) the value for key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Well-known key prefixes. A per-user namespace appends ":<userID>".
const (
	keyHistory  = "history"
	keySettings = "settings"
	keyAccounts = "accounts"
	keySession  = "session"
)

// namespacedKey builds the storage key for a logical entry, appending the
// user namespace when one is supplied. An empty userID addresses the
// shared (anonymous) namespace.
func namespacedKey(base, userID string) string {
	if userID == "" {
		return base
	}
	return base + ":" + userID
}
