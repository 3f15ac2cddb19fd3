package model

// Overview 数据集总体统计（导出报告与 /stats 接口共用）
type Overview struct {
	TotalPosts         int     `json:"total_posts"`
	TotalComments      int     `json:"total_comments"`
	UniqueAuthors      int     `json:"unique_authors"`
	PostsWithComments  int     `json:"posts_with_comments"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	EarliestPost       int64   `json:"earliest_post"` // unix 秒，0 表示无数据
	LatestPost         int64   `json:"latest_post"`
	AvgScore           float64 `json:"avg_score"`
	AvgComments        float64 `json:"avg_comments"`
	TopPostTitle       string  `json:"top_post_title"`
	TopPostScore       int     `json:"top_post_score"`
}

// BucketCount 一个统计桶（月份、星期、分数区间等）及计数
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// AuthorCount 作者聚合（按帖数或总分）
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}
