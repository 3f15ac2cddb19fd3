package api

import (
	"net/http"
	"strconv"

	"reddit-harvest/internal/harvest/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server 数据库之上的只读查询服务
type Server struct {
	DB  *store.DB
	Log *zap.Logger
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/posts", s.listPosts) // ?page=1&limit=20&author=
	r.GET("/posts/:id", s.getPost)
	r.GET("/stats", s.stats)
	r.GET("/progress", s.progress)
	return r
}

func (s *Server) listPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	author := c.Query("author")

	posts, total, err := s.DB.ListPosts((page-1)*limit, limit, author)
	if err != nil {
		s.Log.Error("Failed to list posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"page":  page,
		"limit": limit,
		"data":  posts,
	})
}

func (s *Server) getPost(c *gin.Context) {
	id := c.Param("id")
	post, err := s.DB.GetPost(id)
	if err != nil {
		s.Log.Error("Failed to get post", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	comments, err := s.DB.CommentsForPost(id)
	if err != nil {
		s.Log.Error("Failed to get comments", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"comments": comments,
	})
}

func (s *Server) progress(c *gin.Context) {
	rows, err := s.DB.ProgressRows()
	if err != nil {
		s.Log.Error("Failed to read progress", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) stats(c *gin.Context) {
	overview, err := s.DB.Overview()
	if err != nil {
		s.Log.Error("Failed to build overview", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": overview})
}
