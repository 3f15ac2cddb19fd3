package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
collect:
  subreddit: "golf"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "reddit_data.db", cfg.Database)
	assert.Equal(t, "2020-01-01", cfg.Collect.StartDate)
	assert.Equal(t, 30, cfg.Collect.WindowDays)
	assert.Equal(t, 200, cfg.Collect.UserSampleSize)
	assert.Equal(t, 50, cfg.Collect.MaxUsers)
	assert.Equal(t, 1000, cfg.Collect.MaxPostsPerKeyword)
	assert.Equal(t, 60, cfg.Collect.MaxRequestsPerMinute)
	assert.Equal(t, "disabled", cfg.Filter.Mode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.LogMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverridesCredentials(t *testing.T) {
	path := writeConfig(t, `
reddit:
  clientId: "from-yaml"
collect:
  subreddit: "golf"
`)
	t.Setenv("REDDIT_CLIENT_ID", "from-env")
	t.Setenv("REDDIT_PASSWORD", "secret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Reddit.ClientID)
	assert.Equal(t, "secret", cfg.Reddit.Password)
}

func TestValidateRequiresSubreddit(t *testing.T) {
	path := writeConfig(t, `database: "x.db"`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadStartDate(t *testing.T) {
	path := writeConfig(t, `
collect:
  subreddit: "golf"
  startDate: "not-a-date"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestStartTime(t *testing.T) {
	path := writeConfig(t, `
collect:
  subreddit: "golf"
  startDate: "2021-03-15"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	start, err := cfg.StartTime()
	require.NoError(t, err)
	assert.Equal(t, 2021, start.Year())
	assert.Equal(t, 15, start.Day())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
