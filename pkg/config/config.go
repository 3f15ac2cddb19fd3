package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RedditConfig Reddit API 凭据（script 类型应用）
type RedditConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	UserAgent    string `yaml:"userAgent"`
}

// CollectConfig 采集策略参数
type CollectConfig struct {
	Subreddit            string   `yaml:"subreddit"`
	StartDate            string   `yaml:"startDate"`  // YYYY-MM-DD，时间分段起点
	WindowDays           int      `yaml:"windowDays"` // 时间窗口大小（天）
	SearchTerms          []string `yaml:"searchTerms"`
	UserSampleSize       int      `yaml:"userSampleSize"` // 采样最近 N 帖以收集活跃用户
	MaxUsers             int      `yaml:"maxUsers"`
	MaxPostsPerKeyword   int      `yaml:"maxPostsPerKeyword"`
	MaxRequestsPerMinute int      `yaml:"maxRequestsPerMinute"`
}

// FilterConfig 关键词过滤器
type FilterConfig struct {
	Keywords        []string `yaml:"keywords"`
	Mode            string   `yaml:"mode"` // disabled | include_only | exclude
	CaseSensitive   bool     `yaml:"caseSensitive"`
	SearchInContent bool     `yaml:"searchInContent"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Reddit   RedditConfig  `yaml:"reddit"`
	Database string        `yaml:"database"`
	Collect  CollectConfig `yaml:"collect"`
	Filter   FilterConfig  `yaml:"filter"`
	Server   ServerConfig  `yaml:"server"`
	LogMode  string        `yaml:"logMode"` // development | production
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "reddit_data.db"
	}
	if c.Collect.StartDate == "" {
		c.Collect.StartDate = "2020-01-01"
	}
	if c.Collect.WindowDays <= 0 {
		c.Collect.WindowDays = 30
	}
	if c.Collect.UserSampleSize <= 0 {
		c.Collect.UserSampleSize = 200
	}
	if c.Collect.MaxUsers <= 0 {
		c.Collect.MaxUsers = 50
	}
	if c.Collect.MaxPostsPerKeyword <= 0 {
		c.Collect.MaxPostsPerKeyword = 1000
	}
	if c.Collect.MaxRequestsPerMinute <= 0 {
		c.Collect.MaxRequestsPerMinute = 60
	}
	if c.Filter.Mode == "" {
		c.Filter.Mode = "disabled"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LogMode == "" {
		c.LogMode = "development"
	}
}

// applyEnv 环境变量覆盖凭据（.env 由 main 提前加载）
func (c *Config) applyEnv() {
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv("REDDIT_USERNAME"); v != "" {
		c.Reddit.Username = v
	}
	if v := os.Getenv("REDDIT_PASSWORD"); v != "" {
		c.Reddit.Password = v
	}
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		c.Reddit.UserAgent = v
	}
}

func (c *Config) Validate() error {
	if c.Collect.Subreddit == "" {
		return fmt.Errorf("collect.subreddit is required")
	}
	if _, err := c.StartTime(); err != nil {
		return fmt.Errorf("collect.startDate: %w", err)
	}
	return nil
}

// StartTime 时间分段策略的起点
func (c *Config) StartTime() (time.Time, error) {
	return time.Parse("2006-01-02", c.Collect.StartDate)
}
