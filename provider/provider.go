// Package provider defines the storage contract every omnicache backend
// implements.
//
// Drivers operate on physical keys only: the facade has already applied its
// namespace prefix, and a driver MUST NOT transform keys any further.
// Values are opaque bytes and must be returned exactly as stored.
//
// Each driver interprets a zero TTL according to its own backend. That
// difference is intentional and is documented on every driver's Set method.
package provider

import (
	"context"
	"time"
)

// Driver is a minimal byte store with TTLs and batch variants.
// Must be safe for concurrent use.
type Driver interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// GetMulti returns only the keys that were found.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMulti stores every item with the same TTL. ok is true only when
	// every item was accepted. Not transactional: on failure some items may
	// already be stored.
	SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) (ok bool, err error)

	// DelMulti removes every key. Not transactional.
	DelMulti(ctx context.Context, keys []string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Single is the subset of Driver that the Each helpers build batches from.
type Single interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}
