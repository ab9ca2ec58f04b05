package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"feedcore/lib/cache"
	"feedcore/lib/feed"
)

const pageSize = 20

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func (app *app) getHomeFeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	page := pageParam(r)

	key := cache.HomeFeedPageKey(userID, page)
	if cached, ok := app.caches.Pages.Get(ctx, key); ok {
		jsonResponse(w, http.StatusOK, cached)
		return
	}

	following, ok := app.caches.Following.Get(ctx, userID)
	if !ok {
		var err error
		following, err = app.store.FollowingIDs(ctx, userID)
		if err != nil {
			app.storeError(w, r, err)
			return
		}
		app.caches.Following.Set(ctx, userID, following)
	}

	// The viewer's own posts belong in their home feed too.
	posts, err := app.store.PostsByAuthors(ctx, append(following, userID), pageSize, page*pageSize)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	enriched, err := app.assembler.Assemble(ctx, posts, userID)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	app.caches.Pages.Set(ctx, key, enriched, cache.TTLFeedPage)
	jsonResponse(w, http.StatusOK, enriched)
}

func (app *app) getRecentFeedHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)
	viewerID := r.URL.Query().Get("viewer")

	// Only the anonymous variant is shared, so only that one is cached.
	key := cache.ExplorePageKey(page)
	if viewerID == "" {
		if cached, ok := app.caches.Pages.Get(ctx, key); ok {
			jsonResponse(w, http.StatusOK, cached)
			return
		}
	}

	posts, err := app.store.RecentPosts(ctx, pageSize, page*pageSize)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	enriched, err := app.assembler.Assemble(ctx, posts, viewerID)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	if viewerID == "" {
		app.caches.Pages.Set(ctx, key, enriched, cache.TTLExplorePage)
	}
	jsonResponse(w, http.StatusOK, enriched)
}

func (app *app) getCommentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "postID")

	comments, err := app.store.CommentsByPost(ctx, postID, pageSize, pageParam(r)*pageSize)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	enriched, err := app.assembler.AssembleComments(ctx, comments)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, enriched)
}

func (app *app) getTrendingTagsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if tags, ok := app.caches.TrendingTags.Get(ctx); ok {
		jsonResponse(w, http.StatusOK, tags)
		return
	}
	tags, err := app.store.TrendingTags(ctx, 24*time.Hour, 20)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	app.caches.TrendingTags.Set(ctx, tags)
	jsonResponse(w, http.StatusOK, tags)
}

func (app *app) getNotificationCountHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if count, ok := app.caches.NotifCounts.Get(ctx, userID); ok {
		jsonResponse(w, http.StatusOK, map[string]int{"count": count})
		return
	}
	count, err := app.store.UnreadNotificationCount(ctx, userID)
	if err != nil {
		app.storeError(w, r, err)
		return
	}
	app.caches.NotifCounts.Set(ctx, userID, count)
	jsonResponse(w, http.StatusOK, map[string]int{"count": count})
}

type createPostPayload struct {
	AuthorID       string   `json:"author_id" validate:"required"`
	Content        string   `json:"content" validate:"required,max=1000"`
	Tags           []string `json:"tags" validate:"max=10"`
	OriginalPostID string   `json:"original_post_id"`
}

func (app *app) createPostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload createPostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.validate.Struct(payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}

	post := feed.PostSnapshot{
		ID:             uuid.NewString(),
		AuthorID:       payload.AuthorID,
		Content:        payload.Content,
		Tags:           payload.Tags,
		CreatedAt:      time.Now().UTC(),
		IsRepost:       payload.OriginalPostID != "",
		OriginalPostID: payload.OriginalPostID,
	}
	if err := app.store.InsertPost(ctx, post); err != nil {
		app.storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, post)
}

type updatePostPayload struct {
	Content string `json:"content" validate:"required,max=1000"`
}

func (app *app) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "postID")

	var payload updatePostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.validate.Struct(payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.store.UpdatePostContent(ctx, postID, payload.Content); err != nil {
		app.storeError(w, r, err)
		return
	}
	app.hub.OnPostUpdated(ctx, postID)
	jsonResponse(w, http.StatusOK, map[string]string{"id": postID})
}

type setReactionPayload struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	Type     string `json:"type" validate:"max=20"`
}

func (app *app) setReactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "postID")

	var payload setReactionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.validate.Struct(payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.store.SetReaction(ctx, payload.ViewerID, postID, payload.Type); err != nil {
		app.storeError(w, r, err)
		return
	}
	app.hub.OnReactionChanged(ctx, postID)
	jsonResponse(w, http.StatusOK, map[string]string{"id": postID, "reaction": payload.Type})
}

type createCommentPayload struct {
	AuthorID string `json:"author_id" validate:"required"`
	Content  string `json:"content" validate:"required,max=500"`
}

func (app *app) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID := chi.URLParam(r, "postID")

	var payload createCommentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.validate.Struct(payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	comment := feed.CommentSnapshot{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  payload.AuthorID,
		Content:   payload.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := app.store.InsertComment(ctx, comment); err != nil {
		app.storeError(w, r, err)
		return
	}
	// The post snapshot carries the comment counter, so it is stale now.
	app.hub.OnPostUpdated(ctx, postID)
	jsonResponse(w, http.StatusCreated, comment)
}

type updateProfilePayload struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url"`
}

func (app *app) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	var payload updateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.validate.Struct(payload); err != nil {
		app.badRequest(w, err.Error())
		return
	}
	if err := app.store.UpdateProfile(ctx, userID, payload.DisplayName, payload.AvatarURL); err != nil {
		app.storeError(w, r, err)
		return
	}

	// Invalidate before responding; refill proactively when the fresh row
	// is readable so the next feed render does not pay a guaranteed miss.
	fresh, ok, err := app.store.UserByID(ctx, userID)
	if err != nil || !ok {
		app.hub.OnProfileUpdated(ctx, userID, nil)
	} else {
		app.hub.OnProfileUpdated(ctx, userID, &fresh)
	}
	jsonResponse(w, http.StatusOK, map[string]string{"id": userID})
}

func (app *app) followHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	targetID := chi.URLParam(r, "targetID")

	if err := app.store.Follow(ctx, userID, targetID); err != nil {
		app.storeError(w, r, err)
		return
	}
	app.hub.OnFollowChanged(ctx, userID, targetID)
	jsonResponse(w, http.StatusOK, map[string]string{"follower": userID, "following": targetID})
}

func (app *app) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	targetID := chi.URLParam(r, "targetID")

	if err := app.store.Unfollow(ctx, userID, targetID); err != nil {
		app.storeError(w, r, err)
		return
	}
	app.hub.OnFollowChanged(ctx, userID, targetID)
	jsonResponse(w, http.StatusOK, map[string]string{"follower": userID, "following": targetID})
}
