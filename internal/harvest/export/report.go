package export

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"reddit-harvest/internal/harvest/model"
)

// WriteReport 生成汇总文本报告：总体 → 时间分布 → 作者榜 → 内容分析
func (e *Exporter) WriteReport(path string) error {
	report, err := e.BuildReport()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(report), 0o644)
}

// BuildReport 组装报告文本，路径无关，便于测试和直接打印
func (e *Exporter) BuildReport() (string, error) {
	overview, err := e.db.Overview()
	if err != nil {
		return "", err
	}
	monthly, err := e.db.MonthlyCounts()
	if err != nil {
		return "", err
	}
	weekday, err := e.db.WeekdayCounts()
	if err != nil {
		return "", err
	}
	byPosts, err := e.db.TopAuthorsByPosts(10)
	if err != nil {
		return "", err
	}
	byScore, err := e.db.TopAuthorsByScore(10)
	if err != nil {
		return "", err
	}
	selfPosts, linkPosts, err := e.db.PostTypeSplit()
	if err != nil {
		return "", err
	}
	scores, err := e.db.ScoreDistribution()
	if err != nil {
		return "", err
	}
	words, err := e.db.CommonTitleWords(15)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Reddit Scraping Report\n")
	fmt.Fprintf(&b, "=====================\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "OVERVIEW STATISTICS\n")
	fmt.Fprintf(&b, "==================\n")
	fmt.Fprintf(&b, "Total Posts: %d\n", overview.TotalPosts)
	fmt.Fprintf(&b, "Total Comments: %d\n", overview.TotalComments)
	fmt.Fprintf(&b, "Unique Authors: %d\n", overview.UniqueAuthors)
	fmt.Fprintf(&b, "Posts with Comments: %d (%.1f%%)\n\n",
		overview.PostsWithComments, overview.CoveragePercentage)
	fmt.Fprintf(&b, "Date Range: %s to %s\n",
		reportDate(overview.EarliestPost), reportDate(overview.LatestPost))
	fmt.Fprintf(&b, "Average Score per Post: %.2f\n", overview.AvgScore)
	fmt.Fprintf(&b, "Average Comments per Post: %.2f\n\n", overview.AvgComments)
	fmt.Fprintf(&b, "Top Scoring Post: %q (Score: %d)\n\n",
		overview.TopPostTitle, overview.TopPostScore)

	fmt.Fprintf(&b, "TEMPORAL PATTERNS\n")
	fmt.Fprintf(&b, "================\n")
	fmt.Fprintf(&b, "Most Active Months (Top 5):\n")
	for _, m := range topBuckets(monthly, 5) {
		fmt.Fprintf(&b, "  %s: %d posts\n", m.Bucket, m.Count)
	}
	fmt.Fprintf(&b, "\nMost Active Days of Week:\n")
	for _, d := range topBuckets(weekday, len(weekday)) {
		fmt.Fprintf(&b, "  %s: %d posts\n", d.Bucket, d.Count)
	}

	fmt.Fprintf(&b, "\nTOP AUTHORS\n")
	fmt.Fprintf(&b, "===========\n")
	fmt.Fprintf(&b, "Most Active (by post count):\n")
	for i, a := range byPosts {
		fmt.Fprintf(&b, "  %2d. %s: %d posts\n", i+1, a.Author, a.Count)
	}
	fmt.Fprintf(&b, "\nHighest Scoring (by total score):\n")
	for i, a := range byScore {
		fmt.Fprintf(&b, "  %2d. %s: %d total score\n", i+1, a.Author, a.Count)
	}

	fmt.Fprintf(&b, "\nCONTENT ANALYSIS\n")
	fmt.Fprintf(&b, "===============\n")
	fmt.Fprintf(&b, "Post Types:\n")
	fmt.Fprintf(&b, "  Self posts: %d (%.1f%%)\n", selfPosts, percent(selfPosts, overview.TotalPosts))
	fmt.Fprintf(&b, "  Link posts: %d (%.1f%%)\n", linkPosts, percent(linkPosts, overview.TotalPosts))
	fmt.Fprintf(&b, "\nScore Distribution:\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", s.Bucket, s.Count, percent(s.Count, overview.TotalPosts))
	}
	fmt.Fprintf(&b, "\nMost Common Title Words (Top 15):\n")
	for i, w := range words {
		fmt.Fprintf(&b, "  %2d. %s: %d\n", i+1, w.Bucket, w.Count)
	}

	return b.String(), nil
}

// topBuckets 按计数降序取前 n 个，不改动入参
func topBuckets(in []model.BucketCount, n int) []model.BucketCount {
	out := make([]model.BucketCount, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func reportDate(unix int64) string {
	if unix == 0 {
		return "n/a"
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}
