package client

import (
	"context"
	"fmt"

	"reddit-harvest/internal/harvest/model"
	"reddit-harvest/pkg/config"

	"github.com/vartanbeno/go-reddit/v2/reddit"
	"go.uber.org/zap"
)

const pageSize = 100

// SortMethods 列表爬取用到的排序方式；只有 top 配合时间过滤器
var (
	SortMethods = []string{"hot", "new", "top"}
	TimeFilters = []string{"hour", "day", "week", "month", "year", "all"}
)

// Page 一页候选帖子及下一页游标，After 为空表示没有更多
type Page struct {
	Posts []*model.Post
	After string
}

// Client 包装 go-reddit，把外部响应收敛为 model 实体。
// 认证、分页游标、响应解析都在被包装的客户端里。
type Client struct {
	api *reddit.Client
	log *zap.Logger
}

func New(log *zap.Logger, cfg config.RedditConfig) (*Client, error) {
	api, err := reddit.NewClient(reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.ClientSecret,
		Username: cfg.Username,
		Password: cfg.Password,
	}, reddit.WithUserAgent(cfg.UserAgent))
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return &Client{api: api, log: log}, nil
}

// Listing 按排序方式取一页帖子。timeFilter 只对 top 生效。
func (c *Client) Listing(ctx context.Context, subreddit, sort, timeFilter, after string) (*Page, error) {
	opts := reddit.ListOptions{Limit: pageSize, After: after}

	var (
		posts []*reddit.Post
		resp  *reddit.Response
		err   error
	)
	switch sort {
	case "hot":
		posts, resp, err = c.api.Subreddit.HotPosts(ctx, subreddit, &opts)
	case "new":
		posts, resp, err = c.api.Subreddit.NewPosts(ctx, subreddit, &opts)
	case "top":
		posts, resp, err = c.api.Subreddit.TopPosts(ctx, subreddit, &reddit.ListPostOptions{
			ListOptions: opts,
			Time:        timeFilter,
		})
	default:
		return nil, fmt.Errorf("unknown sort method %q", sort)
	}
	if err != nil {
		return nil, err
	}
	return makePage(posts, resp), nil
}

// Search 子版内关键词搜索（按相关 API 自己的 new 排序）。
// subreddit 为空时搜索全站，时间窗口策略用它发 timestamp 查询。
func (c *Client) Search(ctx context.Context, subreddit, query, after string) (*Page, error) {
	posts, resp, err := c.api.Subreddit.SearchPosts(ctx, query, subreddit, &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
			Time:        "all",
		},
		Sort: "new",
	})
	if err != nil {
		return nil, err
	}
	return makePage(posts, resp), nil
}

// UserPosts 某用户的提交历史，一页
func (c *Client) UserPosts(ctx context.Context, username, after string) (*Page, error) {
	posts, resp, err := c.api.User.PostsOf(ctx, username, &reddit.ListUserOverviewOptions{
		ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
		Sort:        "new",
		Time:        "all",
	})
	if err != nil {
		return nil, err
	}
	return makePage(posts, resp), nil
}

// CommentTree 拉取整棵评论树，展开所有 "load more" 占位（不设上限），
// 返回带深度的扁平列表
func (c *Client) CommentTree(ctx context.Context, postID string) ([]*model.Comment, error) {
	pc, _, err := c.api.Post.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	for pc.HasMore() {
		if _, err := c.api.Post.LoadMoreComments(ctx, pc); err != nil {
			return nil, err
		}
	}

	return flattenComments(postID, pc.Post, pc.Comments), nil
}

func makePage(posts []*reddit.Post, resp *reddit.Response) *Page {
	page := &Page{Posts: make([]*model.Post, 0, len(posts))}
	for _, p := range posts {
		page.Posts = append(page.Posts, mapPost(p))
	}
	if resp != nil {
		page.After = resp.After
	}
	return page
}

// mapPost 外部记录 → Post，唯一的字段转换点
func mapPost(p *reddit.Post) *model.Post {
	author := p.Author
	if author == "" {
		author = model.DeletedAuthor
	}
	var created int64
	if p.Created != nil {
		created = p.Created.Unix()
	}
	return &model.Post{
		ID:          p.ID,
		Title:       p.Title,
		Selftext:    p.Body,
		Author:      author,
		CreatedUTC:  created,
		Score:       p.Score,
		NumComments: p.NumberOfComments,
		URL:         p.URL,
		Permalink:   p.Permalink,
		Subreddit:   p.SubredditName,
		UpvoteRatio: float64(p.UpvoteRatio),
		IsSelf:      p.IsSelfPost,
	}
}

// mapComment 外部记录 → Comment；is_submitter 由帖子作者比对得出
func mapComment(c *reddit.Comment, postID, postAuthor string, depth int) *model.Comment {
	author := c.Author
	if author == "" {
		author = model.DeletedAuthor
	}
	var created int64
	if c.Created != nil {
		created = c.Created.Unix()
	}
	return &model.Comment{
		ID:          c.ID,
		PostID:      postID,
		ParentID:    c.ParentID,
		Body:        c.Body,
		Author:      author,
		CreatedUTC:  created,
		Score:       c.Score,
		Permalink:   c.Permalink,
		Depth:       depth,
		IsSubmitter: author != model.DeletedAuthor && author == postAuthor,
	}
}

type commentFrame struct {
	comment *reddit.Comment
	depth   int
}

// flattenComments 显式栈做深度优先遍历，根评论 depth 0，子级逐层 +1。
// 深贴的嵌套层级不可控，不用递归。
func flattenComments(postID string, post *reddit.Post, roots []*reddit.Comment) []*model.Comment {
	postAuthor := ""
	if post != nil {
		postAuthor = post.Author
	}

	var out []*model.Comment
	stack := make([]commentFrame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, commentFrame{roots[i], 0})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := frame.comment
		if deleted(c.Body) {
			// 占位体不入库，但子树仍然遍历
		} else {
			out = append(out, mapComment(c, postID, postAuthor, frame.depth))
		}

		replies := c.Replies.Comments
		for i := len(replies) - 1; i >= 0; i-- {
			stack = append(stack, commentFrame{replies[i], frame.depth + 1})
		}
	}
	return out
}

func deleted(body string) bool {
	return body == "" || body == "[deleted]" || body == "[removed]"
}
