package cache

import (
	"context"

	"feedcore/lib/feed"
)

// Hub is the single place mutation handlers call to keep cache staleness
// bounded below the TTLs. Every method runs synchronously: the deletes are
// issued (or attempted; the store swallows transport failures) before the
// mutating handler returns success, so a client that re-reads immediately
// after a write can only race the TTL window, never an unbounded one.
type Hub struct {
	caches *Caches
}

func NewHub(caches *Caches) *Hub {
	return &Hub{caches: caches}
}

// OnPostUpdated drops the post snapshot after a content or visibility edit.
func (h *Hub) OnPostUpdated(ctx context.Context, postID string) {
	h.caches.Posts.Invalidate(ctx, postID)
}

// OnReactionChanged drops the post snapshot because its counters moved.
func (h *Hub) OnReactionChanged(ctx context.Context, postID string) {
	h.caches.Posts.Invalidate(ctx, postID)
}

// OnProfileUpdated drops the user snapshot. When the caller already has the
// fresh snapshot it is written back right away, saving the guaranteed miss on
// the next read; that write is an optimization and may silently not happen.
func (h *Hub) OnProfileUpdated(ctx context.Context, userID string, fresh *feed.UserSnapshot) {
	h.caches.Users.Invalidate(ctx, userID)
	if fresh != nil {
		h.caches.Users.Set(ctx, userID, *fresh)
	}
}

// OnFollowChanged drops both sides of the follow edge.
func (h *Hub) OnFollowChanged(ctx context.Context, followerID, followingID string) {
	h.caches.Following.Invalidate(ctx, followerID)
	h.caches.Followers.Invalidate(ctx, followingID)
}
