package cache

import (
	"context"
	"time"
)

// NoopStore is the always-miss Store used when caching is disabled. Callers
// simply hit the primary store every time.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (*NoopStore) Connect(ctx context.Context) bool { return false }
func (*NoopStore) Close() error                     { return nil }

func (*NoopStore) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (*NoopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return false
}

func (*NoopStore) Delete(ctx context.Context, key string) bool { return false }

func (*NoopStore) MGet(ctx context.Context, keys []string) map[string][]byte {
	return map[string][]byte{}
}

func (*NoopStore) MSet(ctx context.Context, values map[string][]byte, ttl time.Duration) bool {
	return false
}

func (*NoopStore) DeletePattern(ctx context.Context, pattern string) int { return 0 }
