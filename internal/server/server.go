// Package server is the LifeCoach REST API: the remote store the task
// engine persists to. It is deliberately thin — all consistency logic
// lives client-side; the server is plain CRUD over SQLite.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aydinov/lifecoach/internal/db"
)

// New builds the API router. db.Open must have been called first.
func New() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/todos/", createTodo)
		api.GET("/todos/", listTodos)
		api.GET("/todos/:id", getTodo)
		api.PUT("/todos/:id", updateTodo)
		api.DELETE("/todos/:id", deleteTodo)

		api.POST("/todos/:id/comments/", createComment)
		api.DELETE("/todos/:id/comments/:commentID", deleteComment)

		api.POST("/todos/:id/attachments/link", createLinkAttachment)
		api.DELETE("/todos/:id/attachments/:attachmentID", deleteAttachment)

		api.POST("/water/", addWater)
		api.GET("/water/", waterToday)
		api.GET("/history", waterHistory)
		api.DELETE("/water/:id", deleteWater)
	}

	return r
}

// detail mirrors the error body shape the original clients expect.
func detail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"detail": msg})
}

func fail(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		detail(c, http.StatusNotFound, err.Error())
		return
	}
	detail(c, http.StatusBadRequest, err.Error())
}
