package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"reddit-harvest/internal/harvest/model"
	"reddit-harvest/internal/harvest/store"

	"go.uber.org/zap"
)

// Exporter 只读导出器，所有格式共用同一份数据库快照读取逻辑
type Exporter struct {
	db  *store.DB
	log *zap.Logger
}

func New(log *zap.Logger, db *store.DB) *Exporter {
	return &Exporter{db: db, log: log}
}

// All 把四种产物全部写到 dir 下
func (e *Exporter) All(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	steps := []struct {
		name string
		run  func(string) error
	}{
		{"reddit_data.json", e.WriteJSON},
		{"posts.csv", e.WritePostsCSV},
		{"comments.csv", e.WriteCommentsCSV},
		{"reddit_data.xlsx", e.WriteXLSX},
		{"analysis_report.txt", e.WriteReport},
	}
	for _, s := range steps {
		path := filepath.Join(dir, s.name)
		if err := s.run(path); err != nil {
			return fmt.Errorf("export %s: %w", s.name, err)
		}
		e.log.Info("Export written", zap.String("file", path))
	}
	return nil
}

type jsonEnvelope struct {
	Metadata jsonMetadata `json:"metadata"`
	Posts    []jsonPost   `json:"posts"`
}

type jsonMetadata struct {
	ExportDate    string `json:"export_date"`
	TotalPosts    int    `json:"total_posts"`
	TotalComments int    `json:"total_comments"`
}

type jsonPost struct {
	*model.Post
	Comments []*model.Comment `json:"comments"`
}

// WriteJSON 帖子按创建时间升序，每帖内嵌其评论（同样升序）
func (e *Exporter) WriteJSON(path string) error {
	posts, err := e.db.AllPosts()
	if err != nil {
		return err
	}

	env := jsonEnvelope{
		Metadata: jsonMetadata{
			ExportDate: time.Now().Format(time.RFC3339),
			TotalPosts: len(posts),
		},
		Posts: make([]jsonPost, 0, len(posts)),
	}
	for _, p := range posts {
		comments, err := e.db.CommentsForPost(p.ID)
		if err != nil {
			return err
		}
		if comments == nil {
			comments = []*model.Comment{}
		}
		env.Metadata.TotalComments += len(comments)
		env.Posts = append(env.Posts, jsonPost{Post: p, Comments: comments})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// WritePostsCSV 一帖一行，附 ISO 时间列
func (e *Exporter) WritePostsCSV(path string) error {
	posts, err := e.db.AllPosts()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "title", "selftext", "author", "created_utc", "created_datetime",
		"score", "num_comments", "url", "permalink", "subreddit",
		"upvote_ratio", "is_self", "link_flair_text",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range posts {
		record := []string{
			p.ID, p.Title, p.Selftext, p.Author,
			strconv.FormatInt(p.CreatedUTC, 10),
			isoTime(p.CreatedUTC),
			strconv.Itoa(p.Score),
			strconv.Itoa(p.NumComments),
			p.URL, p.Permalink, p.Subreddit,
			strconv.FormatFloat(p.UpvoteRatio, 'f', -1, 64),
			strconv.FormatBool(p.IsSelf),
			p.LinkFlairText,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteCommentsCSV 一评论一行，附 ISO 时间列
func (e *Exporter) WriteCommentsCSV(path string) error {
	comments, err := e.db.AllComments()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "post_id", "parent_id", "body", "author", "created_utc",
		"created_datetime", "score", "permalink", "depth", "is_submitter",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, c := range comments {
		record := []string{
			c.ID, c.PostID, c.ParentID, c.Body, c.Author,
			strconv.FormatInt(c.CreatedUTC, 10),
			isoTime(c.CreatedUTC),
			strconv.Itoa(c.Score),
			c.Permalink,
			strconv.Itoa(c.Depth),
			strconv.FormatBool(c.IsSubmitter),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func isoTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02T15:04:05")
}
