package feed

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"feedcore/lib/metrics"
)

// MaxPageSize bounds both batch-loader inputs and the viewer-scoped queries.
// Longer input pages are truncated before any I/O.
const MaxPageSize = 100

// Source is the primary-store surface the assembler consumes. Every method
// takes an IN-style ID list and returns only matching rows; absence is never
// an error. Errors mean the store itself failed and they propagate: the
// assembler does not fabricate partial pages.
type Source interface {
	UsersByIDs(ctx context.Context, ids []string) ([]UserSnapshot, error)
	PostsByIDs(ctx context.Context, ids []string) ([]PostSnapshot, error)

	// Viewer-scoped interaction lookups, each filtered to the given post
	// IDs. These are computed fresh per request: caching them would cost
	// one cache entry per viewer×post pair.
	Reactions(ctx context.Context, viewerID string, postIDs []string) (map[string]string, error)
	Dislikes(ctx context.Context, viewerID string, postIDs []string) ([]string, error)
	SavedPosts(ctx context.Context, viewerID string, postIDs []string) ([]string, error)
	RepostsOfOriginals(ctx context.Context, viewerID string, originalIDs []string) ([]string, error)
}

// Assembler turns a raw page of post documents into response-ready records:
// authors attached, reposts expanded one hop, viewer flags set. The fixed
// query budget per page is one batched author fetch, one batched original
// fetch (plus one for the originals' authors), and four viewer-scoped
// lookups, regardless of page size.
type Assembler struct {
	src   Source
	users *Loader[UserSnapshot]
	posts *Loader[PostSnapshot]
	log   *zap.Logger
	m     *metrics.Metrics
}

func NewAssembler(src Source, userCache BatchCache[UserSnapshot], postCache BatchCache[PostSnapshot], log *zap.Logger, m *metrics.Metrics) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Assembler{src: src, log: log, m: m}
	a.users = NewLoader("user", userCache, func(ctx context.Context, ids []string) (map[string]UserSnapshot, error) {
		users, err := src.UsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[string]UserSnapshot, len(users))
		for _, u := range users {
			out[u.ID] = u
		}
		return out, nil
	}, m)
	a.posts = NewLoader("post", postCache, func(ctx context.Context, ids []string) (map[string]PostSnapshot, error) {
		posts, err := src.PostsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[string]PostSnapshot, len(posts))
		for _, p := range posts {
			out[p.ID] = p
		}
		return out, nil
	}, m)
	return a
}

// Assemble annotates a page of posts for one viewer. viewerID may be empty
// for anonymous reads; viewer flags then stay false. Input order is preserved
// exactly: posts are only annotated, never re-sorted or filtered. A missing
// author or original reads as nil in the output, never as an error.
func (a *Assembler) Assemble(ctx context.Context, page []PostSnapshot, viewerID string) ([]EnrichedPost, error) {
	start := time.Now()
	if len(page) > MaxPageSize {
		a.log.Warn("page truncated", zap.Int("size", len(page)), zap.Int("max", MaxPageSize))
		page = page[:MaxPageSize]
	}
	if len(page) == 0 {
		return []EnrichedPost{}, nil
	}

	pageIDs := make([]string, 0, len(page))
	authorIDs := make([]string, 0, len(page))
	originalIDs := make([]string, 0, 4)
	for _, p := range page {
		pageIDs = append(pageIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
		if p.IsRepost && p.OriginalPostID != "" {
			originalIDs = append(originalIDs, p.OriginalPostID)
		}
	}

	var (
		authors         map[string]UserSnapshot
		originals       map[string]PostSnapshot
		originalAuthors map[string]UserSnapshot
		reactions       map[string]string
		disliked        []string
		saved           []string
		reposted        []string
	)

	// None of these depend on another's result, so they all go out at once.
	// This fan-out is the main latency lever of the whole read path.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		authors, err = a.users.Resolve(gctx, authorIDs)
		return err
	})
	g.Go(func() (err error) {
		originals, err = a.posts.Resolve(gctx, originalIDs)
		if err != nil || len(originals) == 0 {
			return err
		}
		// One bounded extra hop for the originals' authors. Originals
		// that are themselves reposts are not expanded further.
		ids := make([]string, 0, len(originals))
		for _, p := range originals {
			ids = append(ids, p.AuthorID)
		}
		originalAuthors, err = a.users.Resolve(gctx, ids)
		return err
	})
	if viewerID != "" {
		g.Go(func() (err error) {
			reactions, err = a.src.Reactions(gctx, viewerID, pageIDs)
			return err
		})
		g.Go(func() (err error) {
			disliked, err = a.src.Dislikes(gctx, viewerID, pageIDs)
			return err
		})
		g.Go(func() (err error) {
			saved, err = a.src.SavedPosts(gctx, viewerID, pageIDs)
			return err
		})
		g.Go(func() (err error) {
			reposted, err = a.src.RepostsOfOriginals(gctx, viewerID, pageIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dislikedSet := toSet(disliked)
	savedSet := toSet(saved)
	repostedSet := toSet(reposted)

	out := make([]EnrichedPost, len(page))
	for i, p := range page {
		e := EnrichedPost{PostSnapshot: p}
		if author, ok := authors[p.AuthorID]; ok {
			e.Author = &author
		}
		if p.IsRepost && p.OriginalPostID != "" {
			if original, ok := originals[p.OriginalPostID]; ok {
				eo := &EnrichedOriginal{PostSnapshot: original}
				if author, ok := originalAuthors[original.AuthorID]; ok {
					eo.Author = &author
				}
				e.Original = eo
			}
		}
		if reaction, ok := reactions[p.ID]; ok {
			e.Reaction = reaction
			e.Liked = reaction == ReactionLike
		}
		_, e.Disliked = dislikedSet[p.ID]
		_, e.Saved = savedSet[p.ID]
		_, e.Reposted = repostedSet[p.ID]
		out[i] = e
	}
	a.m.AssembleDone(time.Since(start))
	return out, nil
}

// AssembleComments attaches author snapshots to a page of comments, in input
// order, with the same one-batched-query guarantee as posts.
func (a *Assembler) AssembleComments(ctx context.Context, page []CommentSnapshot) ([]EnrichedComment, error) {
	if len(page) == 0 {
		return []EnrichedComment{}, nil
	}
	authorIDs := make([]string, 0, len(page))
	for _, c := range page {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := a.users.Resolve(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]EnrichedComment, len(page))
	for i, c := range page {
		e := EnrichedComment{CommentSnapshot: c}
		if author, ok := authors[c.AuthorID]; ok {
			e.Author = &author
		}
		out[i] = e
	}
	return out, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
