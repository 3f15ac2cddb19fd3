package collector

import (
	"context"

	"go.uber.org/zap"
)

// backfillComments 终态：为所有声明有评论但尚未入库评论的帖子
// 展开整棵评论树。只处理缺失项，重复观测不会重新展开。
func (c *Collector) backfillComments(ctx context.Context) {
	ids, err := c.store.PostsMissingComments()
	if err != nil {
		c.log.Error("Failed to query posts missing comments", zap.Error(err))
		return
	}
	c.log.Info("Starting comment backfill", zap.Int("posts", len(ids)))

	for i, postID := range ids {
		if ctx.Err() != nil {
			return
		}

		saved := c.expandComments(ctx, postID)
		c.counters.NewComments += saved

		if (i+1)%10 == 0 {
			c.log.Info("Comment backfill progress",
				zap.Int("done", i+1),
				zap.Int("total", len(ids)),
			)
		}
	}
}

// expandComments 单帖评论树展开与入库，返回保存条数
func (c *Collector) expandComments(ctx context.Context, postID string) int {
	for {
		if ctx.Err() != nil {
			return 0
		}

		c.limiter.Wait()
		comments, err := c.source.CommentTree(ctx, postID)
		if err != nil {
			if c.handleFailure(err, "comment_backfill", postID) {
				continue
			}
			return 0
		}
		c.limiter.Success()

		saved := 0
		for _, cm := range comments {
			if err := c.store.SaveComment(cm); err != nil {
				c.log.Error("Failed to save comment",
					zap.String("id", cm.ID),
					zap.String("postId", postID),
					zap.Error(err),
				)
				continue
			}
			saved++
		}
		if saved > 0 {
			c.log.Debug("Saved comments",
				zap.String("postId", postID),
				zap.Int("count", saved),
			)
		}
		return saved
	}
}
