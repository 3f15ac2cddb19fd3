package collector

import (
	"context"
	"strings"
	"time"

	"reddit-harvest/internal/harvest/client"
	"reddit-harvest/internal/harvest/filter"
	"reddit-harvest/internal/harvest/model"
	"reddit-harvest/internal/harvest/ratelimit"
	"reddit-harvest/pkg/config"

	"go.uber.org/zap"
)

// Source 采集器对外部 API 客户端的全部要求
type Source interface {
	Listing(ctx context.Context, subreddit, sort, timeFilter, after string) (*client.Page, error)
	Search(ctx context.Context, subreddit, query, after string) (*client.Page, error)
	UserPosts(ctx context.Context, username, after string) (*client.Page, error)
	CommentTree(ctx context.Context, postID string) ([]*model.Comment, error)
}

// Store 采集器对持久层的全部要求
type Store interface {
	SavePost(p *model.Post) (bool, error)
	SaveComment(c *model.Comment) error
	KnownPostIDs() (map[string]struct{}, error)
	PostsMissingComments() ([]string, error)
	Checkpoint(strategy, sortMethod, timeFilter, lastPostID string, lastCreatedUTC int64, completed bool) error
	UnitCompleted(strategy, sortMethod, timeFilter string) (bool, error)
}

// Counters 一次运行的聚合计数
type Counters struct {
	NewPosts    int
	NewComments int
	Duplicates  int
	Filtered    int
	Invalid     int
	Failures    int
}

// Collector 多策略采集引擎。所有策略共用同一条
// 过滤 → 去重 → 入库管线和同一个限速器。
type Collector struct {
	log     *zap.Logger
	cfg     *config.Config
	source  Source
	store   Store
	limiter *ratelimit.Limiter
	filter  *filter.Keyword

	seen     map[string]struct{}
	counters Counters
}

func New(log *zap.Logger, cfg *config.Config, source Source, store Store) (*Collector, error) {
	seen, err := store.KnownPostIDs()
	if err != nil {
		return nil, err
	}

	c := &Collector{
		log:     log,
		cfg:     cfg,
		source:  source,
		store:   store,
		limiter: ratelimit.New(log, cfg.Collect.MaxRequestsPerMinute),
		filter: filter.New(
			cfg.Filter.Keywords,
			filter.ParseMode(cfg.Filter.Mode),
			cfg.Filter.CaseSensitive,
			cfg.Filter.SearchInContent,
		),
		seen: seen,
	}

	log.Info("Collector initialized",
		zap.String("subreddit", cfg.Collect.Subreddit),
		zap.Int("knownPosts", len(seen)),
		zap.Bool("keywordFilter", c.filter.Enabled()),
	)
	return c, nil
}

// Run 全量采集状态机：
// SortCrawl → TimeWindows → KeywordSearch → UserCrawl → CommentBackfill。
// 每个状态尽力跑完；失败只记日志，不中断后续状态。
func (c *Collector) Run(ctx context.Context) Counters {
	start := time.Now()
	c.log.Info("Starting comprehensive collection",
		zap.String("subreddit", c.cfg.Collect.Subreddit),
	)

	states := []struct {
		name string
		run  func(context.Context)
	}{
		{"sort_crawl", c.crawlSortMethods},
		{"time_window", c.crawlTimeWindows},
		{"keyword_search", c.searchKeywords},
		{"user_crawl", c.crawlActiveUsers},
		{"comment_backfill", c.backfillComments},
	}
	for _, s := range states {
		if ctx.Err() != nil {
			c.log.Warn("Collection interrupted", zap.String("state", s.name))
			break
		}
		s.run(ctx)
	}

	c.logSummary(start)
	return c.counters
}

// RunKeywordOnly 窄入口：只跑关键词搜索，可选评论补齐
func (c *Collector) RunKeywordOnly(ctx context.Context, includeComments bool) Counters {
	start := time.Now()
	c.log.Info("Starting keyword-only collection",
		zap.String("subreddit", c.cfg.Collect.Subreddit),
	)

	c.searchKeywords(ctx)
	if includeComments && ctx.Err() == nil {
		c.backfillComments(ctx)
	}

	c.logSummary(start)
	return c.counters
}

func (c *Collector) logSummary(start time.Time) {
	c.log.Info("Collection finished",
		zap.Int("newPosts", c.counters.NewPosts),
		zap.Int("newComments", c.counters.NewComments),
		zap.Int("duplicates", c.counters.Duplicates),
		zap.Int("filtered", c.counters.Filtered),
		zap.Int("invalid", c.counters.Invalid),
		zap.Int("failedUnits", c.counters.Failures),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// processPost 共用管线：校验 → 关键词过滤 → 去重 → 入库。
// 返回是否新插入。
func (c *Collector) processPost(p *model.Post) bool {
	if p == nil || !p.Valid() {
		c.counters.Invalid++
		c.log.Warn("Skipping malformed candidate post")
		return false
	}
	if !c.filter.Matches(p.Title, p.Selftext) {
		c.counters.Filtered++
		return false
	}
	if _, ok := c.seen[p.ID]; ok {
		c.counters.Duplicates++
		return false
	}

	// 去重索引和存储可能跨进程竞争，insert-or-ignore 是最终闸门
	isNew, err := c.store.SavePost(p)
	if err != nil {
		c.log.Error("Failed to save post", zap.String("id", p.ID), zap.Error(err))
		return false
	}
	c.seen[p.ID] = struct{}{}
	if isNew {
		c.counters.NewPosts++
	} else {
		c.counters.Duplicates++
	}
	return isNew
}

// handleFailure 分类失败：瞬时类已由限速器退避，调用方重试；
// 其余记上下文日志后跳到下一个工作单元
func (c *Collector) handleFailure(err error, strategy, unit string) (retry bool) {
	kind := client.Classify(err)
	if c.limiter.Backoff(kind) {
		c.log.Warn("Transient failure, retrying unit",
			zap.String("strategy", strategy),
			zap.String("unit", unit),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return true
	}

	c.counters.Failures++
	c.log.Error("Unit failed, skipping",
		zap.String("strategy", strategy),
		zap.String("unit", unit),
		zap.Error(err),
	)
	return false
}

// fallbackSearchTerms 用户未配置搜索词时的通用词表
var fallbackSearchTerms = []string{
	"question", "help", "issue", "problem", "tutorial", "guide",
	"announcement", "update", "discussion", "review", "comparison",
	"tips", "tricks", "best", "worst", "opinion", "thoughts",
}

func (c *Collector) searchTerms() []string {
	if len(c.cfg.Collect.SearchTerms) > 0 {
		return c.cfg.Collect.SearchTerms
	}
	return fallbackSearchTerms
}

func sameSubreddit(a, b string) bool {
	return strings.EqualFold(a, b)
}
