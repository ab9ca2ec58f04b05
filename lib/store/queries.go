package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedcore/lib/feed"
)

// UsersByIDs returns the embeddable projection of each matching user. Columns
// that could leak secrets (email, password hash) are never selected here.
func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]feed.UserSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, display_name, avatar_url, premium FROM users WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("users by ids: %w", err)
	}
	defer rows.Close()

	var users []feed.UserSnapshot
	for rows.Next() {
		var u feed.UserSnapshot
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Premium); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserByID is the single-row variant used by profile mutations to produce the
// fresh snapshot for proactive cache fill.
func (s *Store) UserByID(ctx context.Context, id string) (feed.UserSnapshot, bool, error) {
	var u feed.UserSnapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, avatar_url, premium FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Premium)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.UserSnapshot{}, false, nil
	}
	if err != nil {
		return feed.UserSnapshot{}, false, fmt.Errorf("user by id: %w", err)
	}
	return u, true, nil
}

func scanPosts(rows *sql.Rows) ([]feed.PostSnapshot, error) {
	var posts []feed.PostSnapshot
	for rows.Next() {
		var p feed.PostSnapshot
		var tags string
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &tags, &p.CreatedAt,
			&p.LikeCount, &p.CommentCount, &p.IsRepost, &p.OriginalPostID); err != nil {
			return nil, err
		}
		p.Tags = splitTags(tags)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const postColumns = `id, author_id, content, tags, created_at, like_count, comment_count, is_repost, original_post_id`

func (s *Store) PostsByIDs(ctx context.Context, ids []string) ([]feed.PostSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("posts by ids: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// PostsByAuthors returns one page of the newest posts written by the given
// authors. Home feeds call this with the viewer's (cached) following list.
func (s *Store) PostsByAuthors(ctx context.Context, authorIDs []string, limit, offset int) ([]feed.PostSnapshot, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(authorIDs)
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_id IN (`+in+`)
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("posts by authors: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *Store) RecentPosts(ctx context.Context, limit, offset int) ([]feed.PostSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *Store) CommentsByPost(ctx context.Context, postID string, limit, offset int) ([]feed.CommentSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, author_id, content, created_at FROM comments
		 WHERE post_id = ? ORDER BY created_at ASC LIMIT ? OFFSET ?`, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("comments by post: %w", err)
	}
	defer rows.Close()

	var comments []feed.CommentSnapshot
	for rows.Next() {
		var c feed.CommentSnapshot
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Reactions maps each of the given posts the viewer reacted to onto the
// reaction type. Posts without a reaction are absent.
func (s *Store) Reactions(ctx context.Context, viewerID string, postIDs []string) (map[string]string, error) {
	out := map[string]string{}
	if len(postIDs) == 0 {
		return out, nil
	}
	in, args := inClause(postIDs)
	args = append(args, viewerID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, type FROM post_reactions WHERE post_id IN (`+in+`) AND user_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("reactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, reaction string
		if err := rows.Scan(&postID, &reaction); err != nil {
			return nil, err
		}
		out[postID] = reaction
	}
	return out, rows.Err()
}

func (s *Store) idList(ctx context.Context, query string, viewerID string, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(postIDs)
	args = append(args, viewerID)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(query, in), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Dislikes(ctx context.Context, viewerID string, postIDs []string) ([]string, error) {
	ids, err := s.idList(ctx,
		`SELECT post_id FROM post_dislikes WHERE post_id IN (%s) AND user_id = ?`, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("dislikes: %w", err)
	}
	return ids, nil
}

func (s *Store) SavedPosts(ctx context.Context, viewerID string, postIDs []string) ([]string, error) {
	ids, err := s.idList(ctx,
		`SELECT post_id FROM saved_posts WHERE post_id IN (%s) AND user_id = ?`, viewerID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("saved posts: %w", err)
	}
	return ids, nil
}

// RepostsOfOriginals returns which of the given posts the viewer has already
// reposted, identified by the original post ID on the viewer's own reposts.
func (s *Store) RepostsOfOriginals(ctx context.Context, viewerID string, originalIDs []string) ([]string, error) {
	ids, err := s.idList(ctx,
		`SELECT original_post_id FROM posts WHERE is_repost = 1 AND original_post_id IN (%s) AND author_id = ?`,
		viewerID, originalIDs)
	if err != nil {
		return nil, fmt.Errorf("reposts of originals: %w", err)
	}
	return ids, nil
}

func (s *Store) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT following_id FROM follows WHERE follower_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) TrendingTags(ctx context.Context, since time.Duration, limit int) ([]string, error) {
	cutoff := time.Now().Add(-since)
	rows, err := s.db.QueryContext(ctx,
		`SELECT pt.tag FROM post_tags pt
		 JOIN posts p ON p.id = pt.post_id
		 WHERE p.created_at > ?
		 GROUP BY pt.tag ORDER BY COUNT(*) DESC LIMIT ?`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("trending tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *Store) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}
	return count, nil
}
