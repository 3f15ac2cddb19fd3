package collector

import (
	"context"
	"fmt"
	"time"

	"reddit-harvest/internal/harvest/client"
	"reddit-harvest/internal/harvest/model"

	"go.uber.org/zap"
)

// pageFetch 取一页候选帖；游标由 collectUnit 维护
type pageFetch func(after string) (*client.Page, error)

// unitOptions 单个工作单元的执行参数
type unitOptions struct {
	strategy   string
	sortMethod string
	timeFilter string
	// maxPosts 处理帖数上限，0 表示不限
	maxPosts int
	// verifySubreddit 查询不限定子版时逐条校验归属
	verifySubreddit bool
}

// collectUnit 所有策略共用的分页循环：限速 → 取页 → 过滤/去重/入库 →
// 写检查点。瞬时失败退避后重试同一页，其它失败跳过整单元。
// 单元干净跑完时把进度标记为 completed。
func (c *Collector) collectUnit(ctx context.Context, opts unitOptions, fetch pageFetch) int {
	unit := opts.sortMethod + "/" + opts.timeFilter

	done, err := c.store.UnitCompleted(opts.strategy, opts.sortMethod, opts.timeFilter)
	if err == nil && done {
		c.log.Info("Unit already completed, skipping",
			zap.String("strategy", opts.strategy),
			zap.String("unit", unit),
		)
		return 0
	}

	var (
		after       string
		newCount    int
		processed   int
		lastID      string
		lastCreated int64
	)

	for {
		if ctx.Err() != nil {
			return newCount
		}

		c.limiter.Wait()
		page, err := fetch(after)
		if err != nil {
			if c.handleFailure(err, opts.strategy, unit) {
				continue
			}
			return newCount
		}
		c.limiter.Success()

		if len(page.Posts) == 0 {
			break
		}

		for _, p := range page.Posts {
			if opts.verifySubreddit && !sameSubreddit(p.Subreddit, c.cfg.Collect.Subreddit) {
				continue
			}
			if c.processPost(p) {
				newCount++
			}
			processed++
			lastID = p.ID
			lastCreated = p.CreatedUTC
		}

		if err := c.store.Checkpoint(opts.strategy, opts.sortMethod, opts.timeFilter,
			lastID, lastCreated, false); err != nil {
			c.log.Warn("Failed to write checkpoint", zap.Error(err))
		}

		if opts.maxPosts > 0 && processed >= opts.maxPosts {
			break
		}
		after = page.After
		if after == "" {
			break
		}
	}

	if err := c.store.Checkpoint(opts.strategy, opts.sortMethod, opts.timeFilter,
		lastID, lastCreated, true); err != nil {
		c.log.Warn("Failed to write checkpoint", zap.Error(err))
	}

	c.log.Info("Unit completed",
		zap.String("strategy", opts.strategy),
		zap.String("unit", unit),
		zap.Int("processed", processed),
		zap.Int("new", newCount),
	)
	return newCount
}

// crawlSortMethods 策略一：逐排序方式爬列表，top 叠加全部时间过滤器。
// 排序间的重叠由去重索引吸收。
func (c *Collector) crawlSortMethods(ctx context.Context) {
	c.log.Info("Starting sort-based collection strategy")

	for _, sort := range client.SortMethods {
		filters := []string{""}
		if sort == "top" {
			filters = client.TimeFilters
		}
		for _, tf := range filters {
			if ctx.Err() != nil {
				return
			}
			sort, tf := sort, tf
			c.collectUnit(ctx, unitOptions{
				strategy:   "sort_crawl",
				sortMethod: sort,
				timeFilter: tf,
			}, func(after string) (*client.Page, error) {
				return c.source.Listing(ctx, c.cfg.Collect.Subreddit, sort, tf, after)
			})
		}
	}
}

// crawlTimeWindows 策略二：把起始日期到现在切成连续不重叠的固定窗口，
// 每窗口发一次 timestamp 限定查询。查询面向全站，须校验子版归属。
func (c *Collector) crawlTimeWindows(ctx context.Context) {
	c.log.Info("Starting time-window collection strategy")

	start, err := c.cfg.StartTime()
	if err != nil {
		c.log.Error("Invalid start date for time windows", zap.Error(err))
		return
	}
	window := time.Duration(c.cfg.Collect.WindowDays) * 24 * time.Hour
	end := time.Now()

	for cur := start; cur.Before(end); cur = cur.Add(window) {
		if ctx.Err() != nil {
			return
		}
		next := cur.Add(window)
		if next.After(end) {
			next = end
		}

		label := fmt.Sprintf("%s..%s", cur.Format("2006-01-02"), next.Format("2006-01-02"))
		query := fmt.Sprintf("subreddit:%s timestamp:%d..%d",
			c.cfg.Collect.Subreddit, cur.Unix(), next.Unix())

		c.collectUnit(ctx, unitOptions{
			strategy:        "time_window",
			sortMethod:      "search",
			timeFilter:      label,
			verifySubreddit: true,
		}, func(after string) (*client.Page, error) {
			return c.source.Search(ctx, "", query, after)
		})
	}
}

// searchKeywords 策略三：每个关键词一次限量搜索，
// 排序交给搜索 API 自己的相关性
func (c *Collector) searchKeywords(ctx context.Context) {
	c.log.Info("Starting keyword-search collection strategy")

	for _, term := range c.searchTerms() {
		if ctx.Err() != nil {
			return
		}
		term := term
		c.collectUnit(ctx, unitOptions{
			strategy:   "keyword_search",
			sortMethod: "search",
			timeFilter: term,
			maxPosts:   c.cfg.Collect.MaxPostsPerKeyword,
		}, func(after string) (*client.Page, error) {
			return c.source.Search(ctx, c.cfg.Collect.Subreddit, term, after)
		})
	}
}

// crawlActiveUsers 策略四：采样最新帖子得出活跃作者集合（有上限），
// 再抓每位作者的提交历史，只保留目标子版的帖子
func (c *Collector) crawlActiveUsers(ctx context.Context) {
	c.log.Info("Starting active-user collection strategy")

	users := c.sampleActiveUsers(ctx)
	if len(users) == 0 {
		return
	}
	c.log.Info("Sampled active users", zap.Int("count", len(users)))

	for _, username := range users {
		if ctx.Err() != nil {
			return
		}
		username := username
		c.collectUnit(ctx, unitOptions{
			strategy:        "user_crawl",
			sortMethod:      "new",
			timeFilter:      username,
			verifySubreddit: true,
		}, func(after string) (*client.Page, error) {
			return c.source.UserPosts(ctx, username, after)
		})
	}
}

// sampleActiveUsers 最近 N 帖的去重作者，保序截断到 MaxUsers
func (c *Collector) sampleActiveUsers(ctx context.Context) []string {
	var (
		users   []string
		seen    = make(map[string]struct{})
		after   string
		sampled int
	)

	for sampled < c.cfg.Collect.UserSampleSize {
		if ctx.Err() != nil {
			break
		}
		c.limiter.Wait()
		page, err := c.source.Listing(ctx, c.cfg.Collect.Subreddit, "new", "", after)
		if err != nil {
			if c.handleFailure(err, "user_crawl", "sample") {
				continue
			}
			break
		}
		c.limiter.Success()

		if len(page.Posts) == 0 {
			break
		}
		for _, p := range page.Posts {
			sampled++
			if p.Author == "" || p.Author == model.DeletedAuthor {
				continue
			}
			if _, ok := seen[p.Author]; ok {
				continue
			}
			seen[p.Author] = struct{}{}
			users = append(users, p.Author)
		}

		after = page.After
		if after == "" {
			break
		}
	}

	if len(users) > c.cfg.Collect.MaxUsers {
		users = users[:c.cfg.Collect.MaxUsers]
	}
	return users
}
