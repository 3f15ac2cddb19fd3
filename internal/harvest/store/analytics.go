package store

import (
	"regexp"
	"sort"
	"strings"

	"reddit-harvest/internal/harvest/model"
)

// Overview 数据集总体统计
func (db *DB) Overview() (*model.Overview, error) {
	var o model.Overview

	if err := db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&o.TotalPosts); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&o.TotalComments); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(DISTINCT author) FROM posts WHERE author != ?`,
		model.DeletedAuthor).Scan(&o.UniqueAuthors); err != nil {
		return nil, err
	}
	if err := db.QueryRow(`SELECT COUNT(DISTINCT post_id) FROM comments`).Scan(&o.PostsWithComments); err != nil {
		return nil, err
	}
	if o.TotalPosts > 0 {
		o.CoveragePercentage = float64(o.PostsWithComments) / float64(o.TotalPosts) * 100
	}

	var earliest, latest, avgScore, avgComments *float64
	if err := db.QueryRow(`SELECT MIN(created_utc), MAX(created_utc), AVG(score), AVG(num_comments)
		FROM posts`).Scan(&earliest, &latest, &avgScore, &avgComments); err != nil {
		return nil, err
	}
	if earliest != nil {
		o.EarliestPost = int64(*earliest)
	}
	if latest != nil {
		o.LatestPost = int64(*latest)
	}
	if avgScore != nil {
		o.AvgScore = *avgScore
	}
	if avgComments != nil {
		o.AvgComments = *avgComments
	}

	row := db.QueryRow(`SELECT title, score FROM posts ORDER BY score DESC LIMIT 1`)
	_ = row.Scan(&o.TopPostTitle, &o.TopPostScore) // 空库时保持零值

	return &o, nil
}

// MonthlyCounts 每月发帖数，按月份升序
func (db *DB) MonthlyCounts() ([]model.BucketCount, error) {
	return db.bucketQuery(`
		SELECT strftime('%Y-%m', datetime(created_utc, 'unixepoch')) AS bucket, COUNT(*)
		FROM posts GROUP BY bucket ORDER BY bucket`)
}

// WeekdayCounts 每周各天发帖数（Sunday..Saturday）
func (db *DB) WeekdayCounts() ([]model.BucketCount, error) {
	raw, err := db.bucketQuery(`
		SELECT strftime('%w', datetime(created_utc, 'unixepoch')) AS bucket, COUNT(*)
		FROM posts GROUP BY bucket ORDER BY bucket`)
	if err != nil {
		return nil, err
	}

	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	for i := range raw {
		if len(raw[i].Bucket) == 1 {
			if d := int(raw[i].Bucket[0] - '0'); d >= 0 && d < len(names) {
				raw[i].Bucket = names[d]
			}
		}
	}
	return raw, nil
}

// HourlyCounts 每小时发帖数
func (db *DB) HourlyCounts() ([]model.BucketCount, error) {
	return db.bucketQuery(`
		SELECT strftime('%H', datetime(created_utc, 'unixepoch')) || ':00' AS bucket, COUNT(*)
		FROM posts GROUP BY bucket ORDER BY bucket`)
}

// ScoreDistribution 分数区间分布
func (db *DB) ScoreDistribution() ([]model.BucketCount, error) {
	return db.bucketQuery(`
		SELECT CASE
			WHEN score < 0 THEN 'Negative'
			WHEN score = 0 THEN 'Zero'
			WHEN score BETWEEN 1 AND 10 THEN '1-10'
			WHEN score BETWEEN 11 AND 50 THEN '11-50'
			WHEN score BETWEEN 51 AND 100 THEN '51-100'
			ELSE '100+'
		END AS bucket, COUNT(*)
		FROM posts GROUP BY bucket`)
}

// PostTypeSplit 文本帖 / 链接帖
func (db *DB) PostTypeSplit() (selfPosts, linkPosts int, err error) {
	err = db.QueryRow(`SELECT
		COALESCE(SUM(CASE WHEN is_self THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN is_self THEN 0 ELSE 1 END), 0)
		FROM posts`).Scan(&selfPosts, &linkPosts)
	return
}

// TopAuthorsByPosts 按帖数排序的作者榜
func (db *DB) TopAuthorsByPosts(limit int) ([]model.AuthorCount, error) {
	return db.authorQuery(`SELECT author, COUNT(*) AS n FROM posts
		WHERE author != ? GROUP BY author ORDER BY n DESC LIMIT ?`, limit)
}

// TopAuthorsByScore 按总分排序的作者榜
func (db *DB) TopAuthorsByScore(limit int) ([]model.AuthorCount, error) {
	return db.authorQuery(`SELECT author, SUM(score) AS n FROM posts
		WHERE author != ? GROUP BY author ORDER BY n DESC LIMIT ?`, limit)
}

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// CommonTitleWords 标题高频词（简单词频，无停用词处理）
func (db *DB) CommonTitleWords(limit int) ([]model.BucketCount, error) {
	rows, err := db.Query(`SELECT title FROM posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		for _, w := range wordPattern.FindAllString(strings.ToLower(title), -1) {
			counts[w]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.BucketCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, model.BucketCount{Bucket: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Bucket < out[j].Bucket
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (db *DB) bucketQuery(query string) ([]model.BucketCount, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BucketCount
	for rows.Next() {
		var b model.BucketCount
		if err := rows.Scan(&b.Bucket, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) authorQuery(query string, limit int) ([]model.AuthorCount, error) {
	rows, err := db.Query(query, model.DeletedAuthor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuthorCount
	for rows.Next() {
		var a model.AuthorCount
		if err := rows.Scan(&a.Author, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
