// Package api is the HTTP client for the LifeCoach REST store. It is
// the only place the engine touches the network; every method maps to
// one endpoint and treats any non-2xx response as a failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aydinov/lifecoach/internal/engine"
	"github.com/aydinov/lifecoach/internal/tasktree"
)

// DefaultBaseURL matches the reference server's default listen address.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to one LifeCoach API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is the {"detail": "..."} body the server sends on failure.
type apiError struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail apiError
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, detail.Detail, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

// FetchTasks retrieves the full top-level task list with nested
// subtasks, comments and attachments.
func (c *Client) FetchTasks(ctx context.Context) ([]tasktree.Task, error) {
	var tasks []tasktree.Task
	if err := c.do(ctx, http.MethodGet, "/api/todos/", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

type createTaskBody struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Tags            []string   `json:"tag_names,omitempty"`
	ParentID        *int       `json:"parent_id,omitempty"`
}

// CreateTask creates a task (or a subtask when req.ParentID is set)
// and returns it with its server-assigned id.
func (c *Client) CreateTask(ctx context.Context, req engine.CreateTaskRequest) (tasktree.Task, error) {
	body := createTaskBody{
		Title:           req.Title,
		Description:     req.Description,
		Priority:        string(req.Priority),
		DueDate:         req.DueDate,
		DurationMinutes: req.DurationMinutes,
		Tags:            req.Tags,
	}
	if req.ParentID != 0 {
		parentID := req.ParentID
		body.ParentID = &parentID
	}
	var created tasktree.Task
	if err := c.do(ctx, http.MethodPost, "/api/todos/", body, &created); err != nil {
		return tasktree.Task{}, err
	}
	return created, nil
}

// UpdateTask applies a partial patch to a task by id.
func (c *Client) UpdateTask(ctx context.Context, id int, patch tasktree.Patch) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/todos/%d", id), patch, nil)
}

// DeleteTask deletes a task; the server cascades through its subtree.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, nil)
}

type commentBody struct {
	Text string `json:"text"`
}

// CreateComment appends a comment to a task.
func (c *Client) CreateComment(ctx context.Context, taskID int, text string) (tasktree.Comment, error) {
	var comment tasktree.Comment
	path := fmt.Sprintf("/api/todos/%d/comments/", taskID)
	if err := c.do(ctx, http.MethodPost, path, commentBody{Text: text}, &comment); err != nil {
		return tasktree.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes a comment from a task.
func (c *Client) DeleteComment(ctx context.Context, taskID, commentID int) error {
	path := fmt.Sprintf("/api/todos/%d/comments/%d", taskID, commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type linkAttachmentBody struct {
	AttachmentType string `json:"attachment_type"`
	URL            string `json:"url"`
}

// CreateLinkAttachment attaches a URL to a task.
func (c *Client) CreateLinkAttachment(ctx context.Context, taskID int, url string) (tasktree.Attachment, error) {
	var attachment tasktree.Attachment
	path := fmt.Sprintf("/api/todos/%d/attachments/link", taskID)
	body := linkAttachmentBody{AttachmentType: "link", URL: url}
	if err := c.do(ctx, http.MethodPost, path, body, &attachment); err != nil {
		return tasktree.Attachment{}, err
	}
	return attachment, nil
}

// DeleteAttachment removes an attachment from a task.
func (c *Client) DeleteAttachment(ctx context.Context, taskID, attachmentID int) error {
	path := fmt.Sprintf("/api/todos/%d/attachments/%d", taskID, attachmentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
