// Package store is the primary document store behind the read path. The rest
// of the system consumes it through narrow interfaces (feed.Source and the
// per-handler slices in api); this SQL implementation is one adapter.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	log.Info("primary store connected", zap.String("driver", driver))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the tables this service reads and writes. It is safe
// to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			premium INTEGER NOT NULL DEFAULT 0,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			content TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			like_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			is_repost INTEGER NOT NULL DEFAULT 0,
			original_post_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_original ON posts (author_id, original_post_id) WHERE is_repost = 1`,
		`CREATE TABLE IF NOT EXISTS post_tags (
			post_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (post_id, tag)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL,
			following_id TEXT NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		)`,
		`CREATE TABLE IF NOT EXISTS post_reactions (
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			PRIMARY KEY (post_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS post_dislikes (
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (post_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS saved_posts (
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (post_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, read)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// inClause builds "?,?,?" plus the matching args for IN-list queries.
func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}
