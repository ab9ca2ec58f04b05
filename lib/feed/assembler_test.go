package feed_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/lib/feed"
)

// fakeSource is an in-memory primary store that counts queries per method.
type fakeSource struct {
	mu    sync.Mutex
	users map[string]feed.UserSnapshot
	posts map[string]feed.PostSnapshot

	reactions map[string]map[string]string   // viewer -> post -> type
	dislikes  map[string]map[string]struct{} // viewer -> post set
	saved     map[string]map[string]struct{}
	reposts   map[string]map[string]struct{} // viewer -> original post set

	calls map[string]int
	fail  bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		users:     map[string]feed.UserSnapshot{},
		posts:     map[string]feed.PostSnapshot{},
		reactions: map[string]map[string]string{},
		dislikes:  map[string]map[string]struct{}{},
		saved:     map[string]map[string]struct{}{},
		reposts:   map[string]map[string]struct{}{},
		calls:     map[string]int{},
	}
}

func (s *fakeSource) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	if s.fail {
		return errors.New("store down")
	}
	return nil
}

func (s *fakeSource) UsersByIDs(ctx context.Context, ids []string) ([]feed.UserSnapshot, error) {
	if err := s.record("users"); err != nil {
		return nil, err
	}
	var out []feed.UserSnapshot
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeSource) PostsByIDs(ctx context.Context, ids []string) ([]feed.PostSnapshot, error) {
	if err := s.record("posts"); err != nil {
		return nil, err
	}
	var out []feed.PostSnapshot
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeSource) Reactions(ctx context.Context, viewerID string, postIDs []string) (map[string]string, error) {
	if err := s.record("reactions"); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, id := range postIDs {
		if r, ok := s.reactions[viewerID][id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (s *fakeSource) filterSet(set map[string]struct{}, postIDs []string) []string {
	var out []string
	for _, id := range postIDs {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *fakeSource) Dislikes(ctx context.Context, viewerID string, postIDs []string) ([]string, error) {
	if err := s.record("dislikes"); err != nil {
		return nil, err
	}
	return s.filterSet(s.dislikes[viewerID], postIDs), nil
}

func (s *fakeSource) SavedPosts(ctx context.Context, viewerID string, postIDs []string) ([]string, error) {
	if err := s.record("saved"); err != nil {
		return nil, err
	}
	return s.filterSet(s.saved[viewerID], postIDs), nil
}

func (s *fakeSource) RepostsOfOriginals(ctx context.Context, viewerID string, originalIDs []string) ([]string, error) {
	if err := s.record("reposts"); err != nil {
		return nil, err
	}
	return s.filterSet(s.reposts[viewerID], originalIDs), nil
}

func (s *fakeSource) queryCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func post(id, author string) feed.PostSnapshot {
	return feed.PostSnapshot{ID: id, AuthorID: author, Content: "content " + id, CreatedAt: time.Now()}
}

func repost(id, author, original string) feed.PostSnapshot {
	p := post(id, author)
	p.IsRepost = true
	p.OriginalPostID = original
	return p
}

func newAssembler(src *fakeSource) *feed.Assembler {
	return feed.NewAssembler(src, nil, nil, nil, nil)
}

// The scenario: three posts by two authors, one a repost, viewer liked p1 and
// saved p3. One author batch, one original batch, four viewer queries.
func TestAssembleScenario(t *testing.T) {
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1", Username: "alice"}
	src.users["u2"] = feed.UserSnapshot{ID: "u2", Username: "bob"}
	src.users["u9"] = feed.UserSnapshot{ID: "u9", Username: "carol"}
	src.posts["p0"] = post("p0", "u9")
	src.reactions["v1"] = map[string]string{"p1": "like"}
	src.saved["v1"] = map[string]struct{}{"p3": {}}

	page := []feed.PostSnapshot{post("p1", "u1"), post("p2", "u1"), repost("p3", "u2", "p0")}
	got, err := newAssembler(src).Assemble(context.Background(), page, "v1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Order preserved, fixed query budget.
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 1, src.queryCount("posts"))
	assert.Equal(t, 1, src.queryCount("reactions"))
	assert.Equal(t, 1, src.queryCount("dislikes"))
	assert.Equal(t, 1, src.queryCount("saved"))
	assert.Equal(t, 1, src.queryCount("reposts"))
	// Page authors in one batch plus one bounded hop for the original's author.
	assert.Equal(t, 2, src.queryCount("users"))

	assert.True(t, got[0].Liked)
	assert.Equal(t, "like", got[0].Reaction)
	assert.False(t, got[1].Liked)
	assert.True(t, got[2].Saved)
	require.NotNil(t, got[2].Original)
	assert.Equal(t, "p0", got[2].Original.ID)
	require.NotNil(t, got[2].Original.Author)
	assert.Equal(t, "carol", got[2].Original.Author.Username)
	assert.Equal(t, "alice", got[0].Author.Username)
}

func TestAssembleSingleAuthorQueryForManyPosts(t *testing.T) {
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1"}
	src.users["u2"] = feed.UserSnapshot{ID: "u2"}

	var page []feed.PostSnapshot
	for i := 0; i < 50; i++ {
		author := "u1"
		if i%2 == 0 {
			author = "u2"
		}
		page = append(page, post(fmt.Sprintf("p%d", i), author))
	}
	got, err := newAssembler(src).Assemble(context.Background(), page, "")
	require.NoError(t, err)
	assert.Len(t, got, 50)
	assert.Equal(t, 1, src.queryCount("users"))
}

func TestAssemblePreservesInputOrder(t *testing.T) {
	src := newFakeSource()
	page := []feed.PostSnapshot{post("p3", "u1"), post("p1", "u2"), post("p2", "u3")}

	got, err := newAssembler(src).Assemble(context.Background(), page, "v1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range page {
		assert.Equal(t, page[i].ID, got[i].ID)
	}
}

func TestAssembleAnonymousSkipsViewerQueries(t *testing.T) {
	src := newFakeSource()
	page := []feed.PostSnapshot{post("p1", "u1")}

	got, err := newAssembler(src).Assemble(context.Background(), page, "")
	require.NoError(t, err)
	assert.False(t, got[0].Liked)
	assert.Equal(t, 0, src.queryCount("reactions"))
	assert.Equal(t, 0, src.queryCount("dislikes"))
	assert.Equal(t, 0, src.queryCount("saved"))
	assert.Equal(t, 0, src.queryCount("reposts"))
}

func TestAssembleViewerIsolation(t *testing.T) {
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1"}
	src.reactions["v1"] = map[string]string{"p1": "like"}
	src.saved["v2"] = map[string]struct{}{"p1": {}}

	page := []feed.PostSnapshot{post("p1", "u1")}
	a := newAssembler(src)

	forV1, err := a.Assemble(context.Background(), page, "v1")
	require.NoError(t, err)
	forV2, err := a.Assemble(context.Background(), page, "v2")
	require.NoError(t, err)

	assert.True(t, forV1[0].Liked)
	assert.False(t, forV1[0].Saved)
	assert.False(t, forV2[0].Liked)
	assert.True(t, forV2[0].Saved)
}

func TestAssembleNonLikeReactionIsNotLiked(t *testing.T) {
	src := newFakeSource()
	src.reactions["v1"] = map[string]string{"p1": "haha"}

	got, err := newAssembler(src).Assemble(context.Background(), []feed.PostSnapshot{post("p1", "u1")}, "v1")
	require.NoError(t, err)
	assert.Equal(t, "haha", got[0].Reaction)
	assert.False(t, got[0].Liked)
}

func TestAssembleDeletedAuthorDegradesToNil(t *testing.T) {
	src := newFakeSource() // no users at all

	got, err := newAssembler(src).Assemble(context.Background(), []feed.PostSnapshot{post("p1", "gone")}, "v1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Author)
}

func TestAssembleMissingOriginalDegradesToNil(t *testing.T) {
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1"}

	got, err := newAssembler(src).Assemble(context.Background(),
		[]feed.PostSnapshot{repost("p1", "u1", "deleted")}, "")
	require.NoError(t, err)
	assert.Nil(t, got[0].Original)
}

func TestAssembleEmptyPage(t *testing.T) {
	src := newFakeSource()
	got, err := newAssembler(src).Assemble(context.Background(), nil, "v1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, src.queryCount("users"))
	assert.Equal(t, 0, src.queryCount("reactions"))
}

func TestAssembleTruncatesOversizedPages(t *testing.T) {
	src := newFakeSource()
	var page []feed.PostSnapshot
	for i := 0; i < feed.MaxPageSize+25; i++ {
		page = append(page, post(fmt.Sprintf("p%d", i), "u1"))
	}
	got, err := newAssembler(src).Assemble(context.Background(), page, "v1")
	require.NoError(t, err)
	assert.Len(t, got, feed.MaxPageSize)
}

func TestAssemblePropagatesStoreFailure(t *testing.T) {
	src := newFakeSource()
	src.fail = true

	_, err := newAssembler(src).Assemble(context.Background(), []feed.PostSnapshot{post("p1", "u1")}, "v1")
	assert.Error(t, err)
}

func TestAssembleComments(t *testing.T) {
	src := newFakeSource()
	src.users["u1"] = feed.UserSnapshot{ID: "u1", Username: "alice"}

	page := []feed.CommentSnapshot{
		{ID: "c1", PostID: "p1", AuthorID: "u1"},
		{ID: "c2", PostID: "p1", AuthorID: "gone"},
		{ID: "c3", PostID: "p1", AuthorID: "u1"},
	}
	got, err := newAssembler(src).AssembleComments(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, src.queryCount("users"))
	assert.Equal(t, "alice", got[0].Author.Username)
	assert.Nil(t, got[1].Author)
	assert.Equal(t, "c3", got[2].ID)
}
