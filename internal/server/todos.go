package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aydinov/lifecoach/internal/db"
)

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		detail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func createTodo(c *gin.Context) {
	var req db.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	todo, err := db.CreateTodo(req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func listTodos(c *gin.Context) {
	todos, err := db.GetTodoTree()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func getTodo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	todo, err := db.GetTodo(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func updateTodo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req db.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	todo, err := db.UpdateTodo(id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func deleteTodo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := db.DeleteTodo(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type commentBody struct {
	Text string `json:"text" binding:"required"`
}

func createComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := db.AddComment(id, body.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func deleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "commentID")
	if !ok {
		return
	}
	if err := db.DeleteComment(commentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

type linkAttachmentBody struct {
	AttachmentType string `json:"attachment_type"`
	URL            string `json:"url" binding:"required"`
}

func createLinkAttachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body linkAttachmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.AttachmentType != "" && body.AttachmentType != "link" {
		detail(c, http.StatusBadRequest, "invalid request for link attachment")
		return
	}
	attachment, err := db.AddLinkAttachment(id, body.URL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func deleteAttachment(c *gin.Context) {
	attachmentID, ok := pathID(c, "attachmentID")
	if !ok {
		return
	}
	if err := db.DeleteAttachment(attachmentID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted successfully"})
}
