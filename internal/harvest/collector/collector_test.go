package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"reddit-harvest/internal/harvest/client"
	"reddit-harvest/internal/harvest/model"
	"reddit-harvest/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSource 每个入口返回预设页，并统计调用次数
type fakeSource struct {
	listings     map[string]*client.Page // key: sort
	listingErr   map[string]error
	searchPage   *client.Page
	userPage     *client.Page
	comments     map[string][]*model.Comment
	treeCalls    map[string]int
	listingCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listings:   map[string]*client.Page{},
		listingErr: map[string]error{},
		searchPage: &client.Page{},
		userPage:   &client.Page{},
		comments:   map[string][]*model.Comment{},
		treeCalls:  map[string]int{},
	}
}

func (s *fakeSource) Listing(_ context.Context, _, sort, _, after string) (*client.Page, error) {
	s.listingCalls++
	if err := s.listingErr[sort]; err != nil {
		return nil, err
	}
	if after != "" {
		return &client.Page{}, nil
	}
	if p, ok := s.listings[sort]; ok {
		return p, nil
	}
	return &client.Page{}, nil
}

func (s *fakeSource) Search(_ context.Context, _, _, after string) (*client.Page, error) {
	if after != "" {
		return &client.Page{}, nil
	}
	return s.searchPage, nil
}

func (s *fakeSource) UserPosts(_ context.Context, _, after string) (*client.Page, error) {
	if after != "" {
		return &client.Page{}, nil
	}
	return s.userPage, nil
}

func (s *fakeSource) CommentTree(_ context.Context, postID string) ([]*model.Comment, error) {
	s.treeCalls[postID]++
	return s.comments[postID], nil
}

// fakeStore 内存版持久层，语义对齐 sqlite 实现
type fakeStore struct {
	posts    map[string]*model.Post
	comments map[string][]*model.Comment
	progress map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    map[string]*model.Post{},
		comments: map[string][]*model.Comment{},
		progress: map[string]bool{},
	}
}

func (s *fakeStore) SavePost(p *model.Post) (bool, error) {
	if _, ok := s.posts[p.ID]; ok {
		return false, nil
	}
	s.posts[p.ID] = p
	return true, nil
}

func (s *fakeStore) SaveComment(c *model.Comment) error {
	s.comments[c.PostID] = append(s.comments[c.PostID], c)
	return nil
}

func (s *fakeStore) KnownPostIDs() (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(s.posts))
	for id := range s.posts {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *fakeStore) PostsMissingComments() ([]string, error) {
	var out []string
	for id, p := range s.posts {
		if p.NumComments > 0 && len(s.comments[id]) == 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *fakeStore) Checkpoint(strategy, sortMethod, timeFilter, _ string, _ int64, completed bool) error {
	s.progress[strategy+"|"+sortMethod+"|"+timeFilter] = completed
	return nil
}

func (s *fakeStore) UnitCompleted(strategy, sortMethod, timeFilter string) (bool, error) {
	return s.progress[strategy+"|"+sortMethod+"|"+timeFilter], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Collect: config.CollectConfig{
			Subreddit:            "golf",
			StartDate:            time.Now().AddDate(0, -2, 0).Format("2006-01-02"),
			WindowDays:           30,
			SearchTerms:          []string{"grip"},
			UserSampleSize:       10,
			MaxUsers:             5,
			MaxPostsPerKeyword:   100,
			MaxRequestsPerMinute: 100000,
		},
		Filter: config.FilterConfig{Mode: "disabled"},
	}
}

func samplePost(id string) *model.Post {
	return &model.Post{
		ID:          id,
		Title:       "Oversized grip review",
		Author:      "golfer42",
		CreatedUTC:  1700000000,
		Score:       5,
		NumComments: 2,
		Subreddit:   "golf",
	}
}

func TestDuplicateAcrossStrategiesSavedOnce(t *testing.T) {
	source := newFakeSource()
	st := newFakeStore()

	// 同一帖子在 hot 列表与关键词搜索里都出现
	source.listings["hot"] = &client.Page{Posts: []*model.Post{samplePost("abc123")}}
	source.searchPage = &client.Page{Posts: []*model.Post{samplePost("abc123")}}
	source.comments["abc123"] = []*model.Comment{
		{ID: "c1", PostID: "abc123"},
		{ID: "c2", PostID: "abc123"},
	}

	c, err := New(zap.NewNop(), testConfig(), source, st)
	require.NoError(t, err)

	counters := c.Run(context.Background())

	assert.Equal(t, 1, counters.NewPosts)
	assert.GreaterOrEqual(t, counters.Duplicates, 1)
	assert.Len(t, st.posts, 1)
	assert.Equal(t, 2, counters.NewComments)
	assert.Equal(t, 1, source.treeCalls["abc123"], "comment tree fetched exactly once")

	// 再跑一遍：已完成单元被跳过，评论不会重新展开
	c.Run(context.Background())
	assert.Equal(t, 1, source.treeCalls["abc123"])
	assert.Len(t, st.posts, 1)
}

func TestUnitFailureContinuesToNextUnit(t *testing.T) {
	source := newFakeSource()
	st := newFakeStore()

	source.listings["hot"] = &client.Page{Posts: []*model.Post{samplePost("good1")}}
	source.listingErr["new"] = errors.New("boom")

	c, err := New(zap.NewNop(), testConfig(), source, st)
	require.NoError(t, err)

	c.crawlSortMethods(context.Background())

	assert.Contains(t, st.posts, "good1", "hot unit still collected")
	assert.GreaterOrEqual(t, c.counters.Failures, 1)
}

func TestSeenIndexSeededFromStore(t *testing.T) {
	source := newFakeSource()
	st := newFakeStore()
	st.posts["known1"] = samplePost("known1")

	source.listings["hot"] = &client.Page{Posts: []*model.Post{samplePost("known1")}}

	c, err := New(zap.NewNop(), testConfig(), source, st)
	require.NoError(t, err)

	c.crawlSortMethods(context.Background())

	assert.Equal(t, 0, c.counters.NewPosts)
	assert.GreaterOrEqual(t, c.counters.Duplicates, 1)
}

func TestProcessPostFilterAndValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Filter = config.FilterConfig{
		Keywords:        []string{"grip"},
		Mode:            "include_only",
		SearchInContent: true,
	}

	source := newFakeSource()
	st := newFakeStore()
	c, err := New(zap.NewNop(), cfg, source, st)
	require.NoError(t, err)

	assert.False(t, c.processPost(&model.Post{ID: "", Subreddit: "golf"}))
	assert.Equal(t, 1, c.counters.Invalid)

	offtopic := samplePost("off1")
	offtopic.Title = "Best driver 2023"
	assert.False(t, c.processPost(offtopic))
	assert.Equal(t, 1, c.counters.Filtered)

	assert.True(t, c.processPost(samplePost("on1")))
	assert.Equal(t, 1, c.counters.NewPosts)
}

func TestCrawlSkipsOtherSubreddits(t *testing.T) {
	source := newFakeSource()
	st := newFakeStore()

	foreign := samplePost("foreign1")
	foreign.Subreddit = "tennis"
	source.userPage = &client.Page{Posts: []*model.Post{samplePost("own1"), foreign}}
	source.listings["new"] = &client.Page{Posts: []*model.Post{samplePost("seed1")}}

	c, err := New(zap.NewNop(), testConfig(), source, st)
	require.NoError(t, err)

	c.crawlActiveUsers(context.Background())

	assert.Contains(t, st.posts, "own1")
	assert.NotContains(t, st.posts, "foreign1")
}

func TestRunKeywordOnly(t *testing.T) {
	source := newFakeSource()
	st := newFakeStore()
	source.searchPage = &client.Page{Posts: []*model.Post{samplePost("kw1")}}
	source.comments["kw1"] = []*model.Comment{{ID: "c1", PostID: "kw1"}}

	c, err := New(zap.NewNop(), testConfig(), source, st)
	require.NoError(t, err)

	counters := c.RunKeywordOnly(context.Background(), true)
	assert.Equal(t, 1, counters.NewPosts)
	assert.Equal(t, 1, counters.NewComments)
	assert.Equal(t, 0, source.listingCalls, "keyword-only mode never touches listings")
}
