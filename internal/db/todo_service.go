package db

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aydinov/lifecoach/internal/models"
)

// CreateTodoRequest holds the data needed to create a new task
type CreateTodoRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	DueDate         *time.Time `json:"due_date"`
	DurationMinutes *int       `json:"duration_minutes"`
	Hidden          bool       `json:"hidden"`
	ParentID        *uint      `json:"parent_id"`
	Tags            []string   `json:"tag_names"`
}

// UpdateTodoRequest is a partial patch; nil fields are left untouched
type UpdateTodoRequest struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status"`
	Priority         *string    `json:"priority"`
	DueDate          *time.Time `json:"due_date"`
	DurationMinutes  *int       `json:"duration_minutes"`
	Hidden           *bool      `json:"hidden"`
	CompletedSeconds *int       `json:"completed_seconds"`
}

// ErrNotFound is reported when a todo, comment or attachment id does
// not exist.
var ErrNotFound = fmt.Errorf("not found")

func validStatus(s string) bool {
	switch s {
	case models.StatusToDo, models.StatusInProgress, models.StatusDone:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch strings.ToLower(p) {
	case "low", "medium", "high", "urgent":
		return true
	}
	return false
}

// CreateTodo creates a new task, optionally as a subtask of an
// existing parent.
func CreateTodo(req CreateTodoRequest) (*models.Todo, error) {
	if req.Status == "" {
		req.Status = models.StatusToDo
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !validStatus(req.Status) {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}
	if !validPriority(req.Priority) {
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		return nil, fmt.Errorf("duration_minutes must be non-negative")
	}

	// Creating an orphaned subtask is not allowed
	if req.ParentID != nil {
		var parent models.Todo
		if err := DB.First(&parent, *req.ParentID).Error; err != nil {
			return nil, fmt.Errorf("parent task #%d: %w", *req.ParentID, ErrNotFound)
		}
	}

	todo := models.Todo{
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        strings.ToLower(req.Priority),
		DueDate:         req.DueDate,
		DurationMinutes: req.DurationMinutes,
		Hidden:          req.Hidden,
		ParentID:        req.ParentID,
	}

	if len(req.Tags) > 0 {
		tags, err := findOrCreateTags(req.Tags)
		if err != nil {
			return nil, err
		}
		todo.Tags = tags
	}

	if err := DB.Create(&todo).Error; err != nil {
		return nil, err
	}
	if todo.Subtasks == nil {
		todo.Subtasks = []models.Todo{}
	}
	if todo.Comments == nil {
		todo.Comments = []models.Comment{}
	}
	if todo.Attachments == nil {
		todo.Attachments = []models.Attachment{}
	}
	return &todo, nil
}

// findOrCreateTags finds existing tags or creates new ones
func findOrCreateTags(names []string) ([]models.Tag, error) {
	var tags []models.Tag
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag models.Tag
		err := DB.Where("name = ?", name).First(&tag).Error
		if err != nil {
			tag = models.Tag{Name: name}
			if err := DB.Create(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// GetTodoTree returns all top-level tasks with their full subtree,
// comments, attachments and tags nested.
func GetTodoTree() ([]models.Todo, error) {
	var all []models.Todo
	err := DB.Preload("Comments").Preload("Attachments").Preload("Tags").
		Order("id").Find(&all).Error
	if err != nil {
		return nil, err
	}
	return assembleTree(all), nil
}

// GetTodo returns one task with its full subtree nested.
func GetTodo(id uint) (*models.Todo, error) {
	var all []models.Todo
	err := DB.Preload("Comments").Preload("Attachments").Preload("Tags").
		Order("id").Find(&all).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Todo, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	target, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}
	byParent := groupByParent(all)
	attachChildren(target, byParent)
	return target, nil
}

func groupByParent(all []models.Todo) map[uint][]models.Todo {
	byParent := make(map[uint][]models.Todo)
	for _, t := range all {
		if t.ParentID != nil {
			byParent[*t.ParentID] = append(byParent[*t.ParentID], t)
		}
	}
	return byParent
}

// assembleTree nests every task under its parent, keeping id order
// among siblings (insertion order).
func assembleTree(all []models.Todo) []models.Todo {
	byParent := groupByParent(all)
	roots := make([]models.Todo, 0)
	for _, t := range all {
		if t.ParentID == nil {
			roots = append(roots, t)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	for i := range roots {
		attachChildren(&roots[i], byParent)
	}
	return roots
}

func attachChildren(t *models.Todo, byParent map[uint][]models.Todo) {
	children := byParent[t.ID]
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	for i := range children {
		attachChildren(&children[i], byParent)
	}
	if children == nil {
		children = []models.Todo{}
	}
	t.Subtasks = children
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	if t.Attachments == nil {
		t.Attachments = []models.Attachment{}
	}
}

// UpdateTodo applies a partial patch to a task.
func UpdateTodo(id uint, req UpdateTodoRequest) (*models.Todo, error) {
	var todo models.Todo
	if err := DB.First(&todo, id).Error; err != nil {
		return nil, fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			return nil, fmt.Errorf("invalid priority %q", *req.Priority)
		}
		updates["priority"] = strings.ToLower(*req.Priority)
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 0 {
			return nil, fmt.Errorf("duration_minutes must be non-negative")
		}
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.Hidden != nil {
		updates["hidden"] = *req.Hidden
	}
	if req.CompletedSeconds != nil {
		if *req.CompletedSeconds < 0 {
			return nil, fmt.Errorf("completed_seconds must be non-negative")
		}
		updates["completed_seconds"] = *req.CompletedSeconds
	}

	if len(updates) > 0 {
		if err := DB.Model(&todo).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return GetTodo(id)
}

// DeleteTodo removes a task and, server-side, its entire subtree with
// all comments and attachments.
func DeleteTodo(id uint) error {
	var todo models.Todo
	if err := DB.First(&todo, id).Error; err != nil {
		return fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}

	ids := []uint{id}
	frontier := []uint{id}
	for len(frontier) > 0 {
		var children []models.Todo
		if err := DB.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return err
		}
		frontier = frontier[:0]
		for _, c := range children {
			ids = append(ids, c.ID)
			frontier = append(frontier, c.ID)
		}
	}

	if err := DB.Where("todo_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := DB.Where("todo_id IN ?", ids).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return DB.Delete(&models.Todo{}, ids).Error
}

// AddComment appends a comment to a task.
func AddComment(todoID uint, text string) (*models.Comment, error) {
	var todo models.Todo
	if err := DB.First(&todo, todoID).Error; err != nil {
		return nil, fmt.Errorf("task #%d: %w", todoID, ErrNotFound)
	}
	comment := models.Comment{TodoID: todoID, Text: text}
	if err := DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment by id.
func DeleteComment(id uint) error {
	var comment models.Comment
	if err := DB.First(&comment, id).Error; err != nil {
		return fmt.Errorf("comment #%d: %w", id, ErrNotFound)
	}
	return DB.Delete(&comment).Error
}

// AddLinkAttachment attaches a URL to a task.
func AddLinkAttachment(todoID uint, url string) (*models.Attachment, error) {
	var todo models.Todo
	if err := DB.First(&todo, todoID).Error; err != nil {
		return nil, fmt.Errorf("task #%d: %w", todoID, ErrNotFound)
	}
	attachment := models.Attachment{TodoID: todoID, Type: "link", URL: url}
	if err := DB.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// DeleteAttachment removes an attachment by id.
func DeleteAttachment(id uint) error {
	var attachment models.Attachment
	if err := DB.First(&attachment, id).Error; err != nil {
		return fmt.Errorf("attachment #%d: %w", id, ErrNotFound)
	}
	return DB.Delete(&attachment).Error
}
