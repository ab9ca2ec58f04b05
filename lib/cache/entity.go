package cache

import (
	"context"
	"fmt"
	"time"

	"feedcore/lib/feed"
	"feedcore/lib/metrics"
)

// entityCache is the shared shape of every typed wrapper: one key rule, one
// TTL, one value type, all delegation to the underlying Store. Encode/decode
// failures count as cache errors and read as misses.
type entityCache[V any] struct {
	store  Store
	m      *metrics.Metrics
	entity string
	ttl    time.Duration
	key    func(id string) string
}

func (c *entityCache[V]) Get(ctx context.Context, id string) (V, bool) {
	data, ok := c.store.Get(ctx, c.key(id))
	if !ok {
		c.m.CacheMiss(c.entity, 1)
		var zero V
		return zero, false
	}
	v, ok := decode[V](data)
	if !ok {
		c.m.CacheError(c.entity)
		var zero V
		return zero, false
	}
	c.m.CacheHit(c.entity, 1)
	return v, true
}

func (c *entityCache[V]) Set(ctx context.Context, id string, v V) {
	data, ok := encode(v)
	if !ok {
		c.m.CacheError(c.entity)
		return
	}
	c.store.Set(ctx, c.key(id), data, c.ttl)
}

func (c *entityCache[V]) Invalidate(ctx context.Context, id string) {
	c.store.Delete(ctx, c.key(id))
}

func (c *entityCache[V]) GetBatch(ctx context.Context, ids []string) map[string]V {
	out := make(map[string]V, len(ids))
	if len(ids) == 0 {
		return out
	}
	keys := make([]string, len(ids))
	byKey := make(map[string]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
		byKey[keys[i]] = id
	}
	for key, data := range c.store.MGet(ctx, keys) {
		v, ok := decode[V](data)
		if !ok {
			c.m.CacheError(c.entity)
			continue
		}
		out[byKey[key]] = v
	}
	c.m.CacheHit(c.entity, len(out))
	c.m.CacheMiss(c.entity, len(ids)-len(out))
	return out
}

func (c *entityCache[V]) SetBatch(ctx context.Context, values map[string]V) {
	if len(values) == 0 {
		return
	}
	encoded := make(map[string][]byte, len(values))
	for id, v := range values {
		data, ok := encode(v)
		if !ok {
			c.m.CacheError(c.entity)
			continue
		}
		encoded[c.key(id)] = data
	}
	c.store.MSet(ctx, encoded, c.ttl)
}

// UserCache holds embeddable profile snapshots under user:<id>.
type UserCache struct{ entityCache[feed.UserSnapshot] }

// PostCache holds list-rendering post snapshots under post:<id>. The TTL is
// shorter than the user TTL because counters churn.
type PostCache struct{ entityCache[feed.PostSnapshot] }

// IDListCache holds follow-graph ID sets (following:<id>, followers:<id>).
type IDListCache struct{ entityCache[[]string] }

// CounterCache holds small integer projections such as unread notification
// counts.
type CounterCache struct{ entityCache[int] }

// TagListCache holds the single site-wide trending tag list.
type TagListCache struct {
	inner entityCache[[]string]
}

func (c *TagListCache) Get(ctx context.Context) ([]string, bool) {
	return c.inner.Get(ctx, "")
}

func (c *TagListCache) Set(ctx context.Context, tags []string) {
	c.inner.Set(ctx, "", tags)
}

func (c *TagListCache) Invalidate(ctx context.Context) {
	c.inner.Invalidate(ctx, "")
}

// PageCache holds fully assembled feed pages keyed per viewer and page
// number. Entries are short-lived; invalidation is TTL-only.
type PageCache struct {
	store Store
	m     *metrics.Metrics
}

func HomeFeedPageKey(userID string, page int) string {
	return fmt.Sprintf("feed:home:%s:%d", userID, page)
}

func ExplorePageKey(page int) string {
	return fmt.Sprintf("feed:explore:%d", page)
}

func ConversationListKey(userID string) string {
	return "conversations:" + userID
}

func (c *PageCache) Get(ctx context.Context, key string) ([]feed.EnrichedPost, bool) {
	data, ok := c.store.Get(ctx, key)
	if !ok {
		c.m.CacheMiss("page", 1)
		return nil, false
	}
	page, ok := decode[[]feed.EnrichedPost](data)
	if !ok {
		c.m.CacheError("page")
		return nil, false
	}
	c.m.CacheHit("page", 1)
	return page, true
}

func (c *PageCache) Set(ctx context.Context, key string, page []feed.EnrichedPost, ttl time.Duration) {
	data, ok := encode(page)
	if !ok {
		c.m.CacheError("page")
		return
	}
	c.store.Set(ctx, key, data, ttl)
}

func (c *PageCache) InvalidateHomeFeeds(ctx context.Context) int {
	return c.store.DeletePattern(ctx, "feed:home:*")
}

// Caches bundles one typed wrapper per entity kind around a single Store.
type Caches struct {
	Users        *UserCache
	Posts        *PostCache
	Following    *IDListCache
	Followers    *IDListCache
	NotifCounts  *CounterCache
	TrendingTags *TagListCache
	Pages        *PageCache
}

func New(store Store, m *metrics.Metrics) *Caches {
	return &Caches{
		Users: &UserCache{entityCache[feed.UserSnapshot]{
			store: store, m: m, entity: "user", ttl: TTLUser, key: userKey,
		}},
		Posts: &PostCache{entityCache[feed.PostSnapshot]{
			store: store, m: m, entity: "post", ttl: TTLPost, key: postKey,
		}},
		Following: &IDListCache{entityCache[[]string]{
			store: store, m: m, entity: "following", ttl: TTLFollowing, key: followingKey,
		}},
		Followers: &IDListCache{entityCache[[]string]{
			store: store, m: m, entity: "followers", ttl: TTLFollowers, key: followersKey,
		}},
		NotifCounts: &CounterCache{entityCache[int]{
			store: store, m: m, entity: "notif_count", ttl: TTLNotifCount, key: notifKey,
		}},
		TrendingTags: &TagListCache{entityCache[[]string]{
			store: store, m: m, entity: "trending_tags", ttl: TTLTrendingTags,
			key: func(string) string { return trendingTagsKey },
		}},
		Pages: &PageCache{store: store, m: m},
	}
}
