package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value cache the read path can probe before the primary
// store. It is an optimization layer only: every operation reports "miss" or
// "not done" instead of returning transport errors, and callers must always be
// prepared to fall through to the primary store.
//
// A miss because the key is absent and a miss because the backend is down are
// deliberately indistinguishable to callers.
type Store interface {
	// Connect makes a single guarded attempt to reach the backend. It is
	// idempotent and safe for concurrent use. When it returns false the
	// store stays usable but every operation becomes a no-op miss.
	Connect(ctx context.Context) bool
	Close() error

	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool

	// MGet returns only the keys that were present. A failed round trip
	// yields an empty map.
	MGet(ctx context.Context, keys []string) map[string][]byte
	MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) bool

	// DeletePattern removes every key matching a glob pattern and reports
	// how many were removed.
	DeletePattern(ctx context.Context, pattern string) int
}
