package cache

import "time"

// Per-entity TTLs. These encode how much staleness each read path tolerates:
// short for interactive social-proof data (counts, lists), longer for
// slow-changing profile data. Bounded staleness on mutation paths comes from
// explicit invalidation, not from these.
const (
	TTLUser             = 300 * time.Second
	TTLFollowing        = 60 * time.Second
	TTLFollowers        = 60 * time.Second
	TTLPost             = 120 * time.Second
	TTLTrendingTags     = 300 * time.Second
	TTLFeedPage         = 30 * time.Second
	TTLExplorePage      = 60 * time.Second
	TTLNotifCount       = 30 * time.Second
	TTLConversationList = 30 * time.Second
)

const trendingTagsKey = "trending_tags"

func userKey(id string) string      { return "user:" + id }
func postKey(id string) string      { return "post:" + id }
func followingKey(id string) string { return "following:" + id }
func followersKey(id string) string { return "followers:" + id }
func notifKey(id string) string     { return "notif_count:" + id }
