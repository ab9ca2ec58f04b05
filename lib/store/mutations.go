package store

import (
	"context"
	"fmt"
	"time"

	"feedcore/lib/feed"
)

func (s *Store) InsertUser(ctx context.Context, u feed.UserSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, avatar_url, premium) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.AvatarURL, u.Premium)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) InsertPost(ctx context.Context, p feed.PostSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, content, tags, created_at, is_repost, original_post_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, p.Content, joinTags(p.Tags), p.CreatedAt, p.IsRepost, p.OriginalPostID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	for _, tag := range p.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, tag) VALUES (?, ?)`, p.ID, tag); err != nil {
			return fmt.Errorf("insert post tag: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) UpdatePostContent(ctx context.Context, postID, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET content = ? WHERE id = ?`, content, postID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, avatar_url = ? WHERE id = ?`,
		displayName, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Follow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, following_id) VALUES (?, ?)`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

// SetReaction upserts the viewer's reaction (empty type clears it) and
// refreshes the post's like counter inside the same transaction, keeping the
// counter authoritative in the primary store.
func (s *Store) SetReaction(ctx context.Context, viewerID, postID, reaction string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set reaction: %w", err)
	}
	defer tx.Rollback()

	if reaction == "" {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM post_reactions WHERE post_id = ? AND user_id = ?`, postID, viewerID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_reactions (post_id, user_id, type) VALUES (?, ?, ?)
			 ON CONFLICT (post_id, user_id) DO UPDATE SET type = excluded.type`,
			postID, viewerID, reaction)
	}
	if err != nil {
		return fmt.Errorf("set reaction: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET like_count =
			(SELECT COUNT(*) FROM post_reactions WHERE post_id = ? AND type = ?)
		 WHERE id = ?`, postID, feed.ReactionLike, postID)
	if err != nil {
		return fmt.Errorf("refresh like count: %w", err)
	}
	return tx.Commit()
}

func (s *Store) InsertComment(ctx context.Context, c feed.CommentSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`, c.PostID)
	if err != nil {
		return fmt.Errorf("bump comment count: %w", err)
	}
	return tx.Commit()
}

func (s *Store) InsertNotification(ctx context.Context, id, userID, kind string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, kind, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
