package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/lib/cache"
)

func TestMemoryStoreSetThenGet(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()
	require.True(t, s.Connect(ctx))

	require.True(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	require.True(t, s.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	_, ok := s.Get(ctx, "k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStoreBatchOps(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	ok := s.MSet(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}, time.Minute)
	require.True(t, ok)

	got := s.MGet(ctx, []string{"a", "b", "missing"})
	assert.Len(t, got, 2)
	assert.Equal(t, []byte("1"), got["a"])
	assert.NotContains(t, got, "missing")
}

func TestMemoryStoreDeletePattern(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	s.Set(ctx, "feed:home:u1:0", []byte("x"), time.Minute)
	s.Set(ctx, "feed:home:u2:0", []byte("y"), time.Minute)
	s.Set(ctx, "user:u1", []byte("z"), time.Minute)

	assert.Equal(t, 2, s.DeletePattern(ctx, "feed:home:*"))
	_, ok := s.Get(ctx, "user:u1")
	assert.True(t, ok)
}

func TestNoopStoreAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	s := cache.NewNoopStore()

	assert.False(t, s.Connect(ctx))
	assert.False(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, s.MGet(ctx, []string{"k"}))
	assert.Equal(t, 0, s.DeletePattern(ctx, "*"))
}
