package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/lib/cache"
	"feedcore/lib/feed"
)

// Wires the assembler to real typed caches over the in-memory store,
// exercising the full cache-aside path end to end.
func TestAssembleWithEntityCaches(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1", Username: "alice"}
	caches := cache.New(cache.NewMemoryStore(), nil)
	a := feed.NewAssembler(src, caches.Users, caches.Posts, nil, nil)

	page := []feed.PostSnapshot{post("p1", "u1"), post("p2", "u1")}

	first, err := a.Assemble(ctx, page, "")
	require.NoError(t, err)
	require.Equal(t, 1, src.queryCount("users"))

	// Authors are now cached; the second render never touches the store.
	second, err := a.Assemble(ctx, page, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.queryCount("users"))
	assert.Equal(t, first, second)
}

func TestAssembleIdenticalWhenCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1", Username: "alice"}
	src.reactions["v1"] = map[string]string{"p1": "like"}
	page := []feed.PostSnapshot{post("p1", "u1"), repost("p2", "u1", "p9")}
	src.posts["p9"] = post("p9", "u1")

	healthy := cache.New(cache.NewMemoryStore(), nil)
	dead := cache.New(cache.NewNoopStore(), nil)

	withCache, err := feed.NewAssembler(src, healthy.Users, healthy.Posts, nil, nil).
		Assemble(ctx, page, "v1")
	require.NoError(t, err)
	withoutCache, err := feed.NewAssembler(src, dead.Users, dead.Posts, nil, nil).
		Assemble(ctx, page, "v1")
	require.NoError(t, err)

	assert.Equal(t, withCache, withoutCache)
}

func TestProfileInvalidationReachesNextAssemble(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1", DisplayName: "old"}
	caches := cache.New(cache.NewMemoryStore(), nil)
	hub := cache.NewHub(caches)
	a := feed.NewAssembler(src, caches.Users, caches.Posts, nil, nil)

	page := []feed.PostSnapshot{post("p1", "u1")}
	got, err := a.Assemble(ctx, page, "")
	require.NoError(t, err)
	require.Equal(t, "old", got[0].Author.DisplayName)

	// The profile changes in the store and the hub drops the snapshot.
	src.users["u1"] = feed.UserSnapshot{ID: "u1", DisplayName: "new"}
	hub.OnProfileUpdated(ctx, "u1", nil)

	got, err = a.Assemble(ctx, page, "")
	require.NoError(t, err)
	assert.Equal(t, "new", got[0].Author.DisplayName)
}
