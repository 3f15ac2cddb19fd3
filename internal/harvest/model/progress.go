package model

import "time"

// Progress 每个 (strategy, sort_method, time_filter) 单元一行，
// 记录最后处理到的位置；策略入口读取 Completed 以跳过已完成单元
type Progress struct {
	Strategy       string    `json:"strategy"`
	SortMethod     string    `json:"sort_method"`
	TimeFilter     string    `json:"time_filter"`
	LastPostID     string    `json:"last_post_id"`
	LastCreatedUTC int64     `json:"last_created_utc"`
	Completed      bool      `json:"completed"`
	UpdatedAt      time.Time `json:"updated_at"`
}
