package feed

import "time"

// UserSnapshot is the subset of a user record that is safe to embed in other
// entities and in cache values. Credentials and contact details never appear
// here.
type UserSnapshot struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Premium     bool   `json:"premium"`
}

// PostSnapshot is the subset of a post record needed to render a list entry.
// Counters are carried as last-written values; the primary store owns their
// increments.
type PostSnapshot struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	Content        string    `json:"content"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LikeCount      int       `json:"like_count"`
	CommentCount   int       `json:"comment_count"`
	IsRepost       bool      `json:"is_repost"`
	OriginalPostID string    `json:"original_post_id,omitempty"`
}

type CommentSnapshot struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichedOriginal is the one-hop expansion of a repost. Originals are never
// expanded further, even when they are themselves reposts.
type EnrichedOriginal struct {
	PostSnapshot
	Author *UserSnapshot `json:"author"`
}

// EnrichedPost is a response-ready post: the raw snapshot annotated with
// author data and the viewer's own interactions. Author (and Original for
// reposts) may be nil when the referenced record no longer exists; clients
// render those as unknown.
type EnrichedPost struct {
	PostSnapshot
	Author   *UserSnapshot     `json:"author"`
	Original *EnrichedOriginal `json:"original,omitempty"`
	Reaction string            `json:"reaction,omitempty"`
	Liked    bool              `json:"liked"`
	Disliked bool              `json:"disliked"`
	Saved    bool              `json:"saved"`
	Reposted bool              `json:"reposted"`
}

type EnrichedComment struct {
	CommentSnapshot
	Author *UserSnapshot `json:"author"`
}

const ReactionLike = "like"
