package model

// Comment 一条评论，归属于一个 Post，可嵌套于其它评论之下
type Comment struct {
	ID          string `json:"id"`
	PostID      string `json:"post_id"`
	ParentID    string `json:"parent_id"` // 帖子本身或另一条评论
	Body        string `json:"body"`
	Author      string `json:"author"`
	CreatedUTC  int64  `json:"created_utc"`
	Score       int    `json:"score"`
	Permalink   string `json:"permalink"`
	Depth       int    `json:"depth"` // 根评论为 0
	IsSubmitter bool   `json:"is_submitter"`
}
