package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// DeletedAuthor 已删除账号的占位作者名
const DeletedAuthor = "[deleted]"

// Post 一条帖子（subreddit 顶层提交）
type Post struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Author        string  `json:"author"`
	CreatedUTC    int64   `json:"created_utc"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	Subreddit     string  `json:"subreddit"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	IsSelf        bool    `json:"is_self"`
	LinkFlairText string  `json:"link_flair_text,omitempty"`
}

// Hash 去重用的次级唯一键：md5(id_created_utc)
func (p *Post) Hash() string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d", p.ID, p.CreatedUTC)))
	return hex.EncodeToString(sum[:])
}

// Valid 入库前的最低要求
func (p *Post) Valid() bool {
	return p.ID != "" && p.Subreddit != ""
}
