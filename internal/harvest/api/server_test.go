package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"reddit-harvest/internal/harvest/model"
	"reddit-harvest/internal/harvest/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.SavePost(&model.Post{
		ID: "p1", Title: "Oversized grip review", Author: "golfer42",
		CreatedUTC: 1700000000, Score: 42, NumComments: 1, Subreddit: "golf",
	})
	require.NoError(t, err)
	require.NoError(t, db.SaveComment(&model.Comment{
		ID: "c1", PostID: "p1", Body: "nice", Author: "reader1", CreatedUTC: 1700000100,
	}))

	return &Server{DB: db, Log: zap.NewNop()}
}

func doGet(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestListPosts(t *testing.T) {
	s := newTestServer(t)

	w, body := doGet(t, s, "/posts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.Len(t, body["data"], 1)
}

func TestListPostsAuthorFilter(t *testing.T) {
	s := newTestServer(t)

	_, body := doGet(t, s, "/posts?author=nobody")
	assert.EqualValues(t, 0, body["total"])

	_, body = doGet(t, s, "/posts?author=golfer42")
	assert.EqualValues(t, 1, body["total"])
}

func TestGetPostWithComments(t *testing.T) {
	s := newTestServer(t)

	w, body := doGet(t, s, "/posts/p1")
	assert.Equal(t, http.StatusOK, w.Code)

	post := body["post"].(map[string]any)
	assert.Equal(t, "p1", post["id"])
	assert.Len(t, body["comments"], 1)
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestServer(t)
	w, _ := doGet(t, s, "/posts/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgress(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.DB.Checkpoint("sort_crawl", "hot", "", "p1", 1700000000, true))

	w, body := doGet(t, s, "/progress")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	w, body := doGet(t, s, "/stats")
	assert.Equal(t, http.StatusOK, w.Code)

	data := body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["total_posts"])
	assert.EqualValues(t, 1, data["total_comments"])
}
