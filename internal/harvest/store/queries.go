package store

import (
	"database/sql"

	"reddit-harvest/internal/harvest/model"
)

const postColumns = `id, title, selftext, author, created_utc, score, num_comments,
	url, permalink, subreddit, upvote_ratio, is_self, COALESCE(link_flair_text, '')`

func scanPost(rows interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	err := rows.Scan(
		&p.ID, &p.Title, &p.Selftext, &p.Author, &p.CreatedUTC, &p.Score,
		&p.NumComments, &p.URL, &p.Permalink, &p.Subreddit, &p.UpvoteRatio,
		&p.IsSelf, &p.LinkFlairText,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AllPosts 按创建时间升序读取全部帖子（导出路径）
func (db *DB) AllPosts() ([]*model.Post, error) {
	rows, err := db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY created_utc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts 分页读取，author 为空表示不过滤
func (db *DB) ListPosts(offset, limit int, author string) ([]*model.Post, int, error) {
	where := ""
	args := []any{}
	if author != "" {
		where = " WHERE author = ?"
		args = append(args, author)
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := db.Query(`SELECT `+postColumns+` FROM posts`+where+
		` ORDER BY created_utc DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// GetPost 未找到时返回 (nil, nil)
func (db *DB) GetPost(id string) (*model.Post, error) {
	row := db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CommentsForPost 某帖全部评论，按创建时间升序
func (db *DB) CommentsForPost(postID string) ([]*model.Comment, error) {
	rows, err := db.Query(`SELECT id, post_id, parent_id, body, author, created_utc,
		score, permalink, depth, is_submitter
		FROM comments WHERE post_id = ? ORDER BY created_utc`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.ParentID, &c.Body, &c.Author, &c.CreatedUTC,
			&c.Score, &c.Permalink, &c.Depth, &c.IsSubmitter,
		); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// AllComments 按创建时间升序读取全部评论（CSV/XLSX 导出）
func (db *DB) AllComments() ([]*model.Comment, error) {
	rows, err := db.Query(`SELECT id, post_id, parent_id, body, author, created_utc,
		score, permalink, depth, is_submitter
		FROM comments ORDER BY created_utc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.ParentID, &c.Body, &c.Author, &c.CreatedUTC,
			&c.Score, &c.Permalink, &c.Depth, &c.IsSubmitter,
		); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
