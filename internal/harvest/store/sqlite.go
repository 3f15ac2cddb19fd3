package store

import (
	"database/sql"
	"fmt"
	"time"

	"reddit-harvest/internal/harvest/model"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_timeout=5000&_fk=true")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	d := &DB{db}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return d, nil
}

// initSchema 幂等建表 + 建索引
func (db *DB) initSchema() error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT,
			selftext TEXT,
			author TEXT,
			created_utc INTEGER,
			score INTEGER,
			num_comments INTEGER,
			url TEXT,
			permalink TEXT,
			subreddit TEXT,
			upvote_ratio REAL,
			is_self BOOLEAN,
			link_flair_text TEXT,
			hash TEXT UNIQUE,
			scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT,
			parent_id TEXT,
			body TEXT,
			author TEXT,
			created_utc INTEGER,
			score INTEGER,
			permalink TEXT,
			depth INTEGER,
			is_submitter BOOLEAN,
			scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (post_id) REFERENCES posts (id)
		);
		CREATE TABLE IF NOT EXISTS scraping_progress (
			strategy TEXT,
			sort_method TEXT,
			time_filter TEXT,
			last_post_id TEXT,
			last_created_utc INTEGER,
			completed BOOLEAN DEFAULT FALSE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (strategy, sort_method, time_filter)
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts(created_utc);
		CREATE INDEX IF NOT EXISTS idx_posts_subreddit ON posts(subreddit);
		CREATE INDEX IF NOT EXISTS idx_posts_hash ON posts(hash);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	return err
}

// SavePost 以 id（及 hash）为键 insert-or-ignore，返回是否新插入。
// 重复观测时合并新鲜度：score 取最大值，num_comments 取最新观测。
func (db *DB) SavePost(p *model.Post) (bool, error) {
	res, err := db.Exec(`INSERT OR IGNORE INTO posts
		(id, title, selftext, author, created_utc, score, num_comments,
		 url, permalink, subreddit, upvote_ratio, is_self, link_flair_text, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Selftext, p.Author, p.CreatedUTC, p.Score, p.NumComments,
		p.URL, p.Permalink, p.Subreddit, p.UpvoteRatio, p.IsSelf, p.LinkFlairText, p.Hash(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	_, err = db.Exec(`UPDATE posts SET score = MAX(score, ?), num_comments = ? WHERE id = ?`,
		p.Score, p.NumComments, p.ID)
	return false, err
}

// SaveComment 以 id 为键 insert-or-ignore
func (db *DB) SaveComment(c *model.Comment) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO comments
		(id, post_id, parent_id, body, author, created_utc, score, permalink, depth, is_submitter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.ParentID, c.Body, c.Author, c.CreatedUTC, c.Score,
		c.Permalink, c.Depth, c.IsSubmitter,
	)
	return err
}

// KnownPostIDs 启动时为去重索引播种
func (db *DB) KnownPostIDs() (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT id FROM posts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// PostsMissingComments 声明有评论但尚未入库任何评论的帖子
func (db *DB) PostsMissingComments() ([]string, error) {
	rows, err := db.Query(`
		SELECT p.id FROM posts p
		LEFT JOIN comments c ON p.id = c.post_id
		WHERE c.post_id IS NULL AND p.num_comments > 0
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Checkpoint 进度行 upsert；每个检查点整行覆盖
func (db *DB) Checkpoint(strategy, sortMethod, timeFilter, lastPostID string, lastCreatedUTC int64, completed bool) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO scraping_progress
		(strategy, sort_method, time_filter, last_post_id, last_created_utc, completed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		strategy, sortMethod, timeFilter, lastPostID, lastCreatedUTC, completed,
	)
	return err
}

// ProgressRows 全部进度行，按最近更新排前
func (db *DB) ProgressRows() ([]model.Progress, error) {
	rows, err := db.Query(`SELECT strategy, sort_method, time_filter,
		COALESCE(last_post_id, ''), COALESCE(last_created_utc, 0), completed, updated_at
		FROM scraping_progress ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Progress
	for rows.Next() {
		var (
			p       model.Progress
			updated string
		)
		if err := rows.Scan(
			&p.Strategy, &p.SortMethod, &p.TimeFilter,
			&p.LastPostID, &p.LastCreatedUTC, &p.Completed, &updated,
		); err != nil {
			return nil, err
		}
		// CURRENT_TIMESTAMP 以 UTC 文本形式存储
		p.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

// UnitCompleted 策略入口查询：该工作单元是否已完整跑完
func (db *DB) UnitCompleted(strategy, sortMethod, timeFilter string) (bool, error) {
	var completed bool
	err := db.QueryRow(`SELECT completed FROM scraping_progress
		WHERE strategy = ? AND sort_method = ? AND time_filter = ?`,
		strategy, sortMethod, timeFilter,
	).Scan(&completed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return completed, nil
}
