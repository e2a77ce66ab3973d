package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aydinov/lifecoach/internal/db"
	"github.com/aydinov/lifecoach/internal/models"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, db.Open(":memory:"))
	t.Cleanup(func() { _ = db.Close() })
	return New()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func createTask(t *testing.T, r *gin.Engine, body map[string]any) models.Todo {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/todos/", body)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	return decode[models.Todo](t, w)
}

func TestCreateAndGetTodo(t *testing.T) {
	r := setup(t)

	created := createTask(t, r, map[string]any{
		"title":            "Learn Go",
		"description":      "read the design doc",
		"duration_minutes": 120,
	})
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.StatusToDo, created.Status)
	assert.Equal(t, "medium", created.Priority)
	require.NotNil(t, created.DurationMinutes)
	assert.Equal(t, 120, *created.DurationMinutes)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Todo](t, w)
	assert.Equal(t, "Learn Go", got.Title)
	assert.NotNil(t, got.Subtasks)
	assert.NotNil(t, got.Comments)
}

func TestCreateSubtaskRequiresExistingParent(t *testing.T) {
	r := setup(t)

	missing := uint(999)
	w := doJSON(t, r, http.MethodPost, "/api/todos/", map[string]any{
		"title":     "orphan",
		"parent_id": missing,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNestsSubtasks(t *testing.T) {
	r := setup(t)

	parent := createTask(t, r, map[string]any{"title": "parent"})
	child := createTask(t, r, map[string]any{"title": "child", "parent_id": parent.ID})
	createTask(t, r, map[string]any{"title": "grandchild", "parent_id": child.ID})

	w := doJSON(t, r, http.MethodGet, "/api/todos/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	roots := decode[[]models.Todo](t, w)

	require.Len(t, roots, 1, "subtasks must not appear at the top level")
	require.Len(t, roots[0].Subtasks, 1)
	require.Len(t, roots[0].Subtasks[0].Subtasks, 1)
	assert.Equal(t, "grandchild", roots[0].Subtasks[0].Subtasks[0].Title)
}

func TestUpdateTodoPartialPatch(t *testing.T) {
	r := setup(t)
	created := createTask(t, r, map[string]any{"title": "track me", "duration_minutes": 30})

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), map[string]any{
		"status":            models.StatusInProgress,
		"completed_seconds": 600,
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Todo](t, w)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, 600, got.CompletedSeconds)
	assert.Equal(t, "track me", got.Title, "unpatched fields survive")

	w = doJSON(t, r, http.MethodPut, "/api/todos/999", map[string]any{"title": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	r := setup(t)
	created := createTask(t, r, map[string]any{"title": "x"})

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), map[string]any{
		"status": "Half Done",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCascadesThroughSubtree(t *testing.T) {
	r := setup(t)

	parent := createTask(t, r, map[string]any{"title": "parent"})
	child := createTask(t, r, map[string]any{"title": "child", "parent_id": parent.ID})
	grand := createTask(t, r, map[string]any{"title": "grandchild", "parent_id": child.ID})

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/todos/%d", parent.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	for _, id := range []uint{parent.ID, child.ID, grand.ID} {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", id), nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "task %d should be gone", id)
	}
}

func TestCommentsLifecycle(t *testing.T) {
	r := setup(t)
	task := createTask(t, r, map[string]any{"title": "with comments"})

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/todos/%d/comments/", task.ID), map[string]any{
		"text": "important for Q4",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decode[models.Comment](t, w)
	assert.Equal(t, "important for Q4", comment.Text)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", task.ID), nil)
	got := decode[models.Todo](t, w)
	require.Len(t, got.Comments, 1)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/todos/%d/comments/%d", task.ID, comment.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/todos/%d", task.ID), nil)
	got = decode[models.Todo](t, w)
	assert.Empty(t, got.Comments)
}

func TestLinkAttachmentsLifecycle(t *testing.T) {
	r := setup(t)
	task := createTask(t, r, map[string]any{"title": "with links"})

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/todos/%d/attachments/link", task.ID), map[string]any{
		"attachment_type": "link",
		"url":             "https://go.dev",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	attachment := decode[models.Attachment](t, w)
	assert.Equal(t, "link", attachment.Type)

	w = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/todos/%d/attachments/%d", task.ID, attachment.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWaterEndpoints(t *testing.T) {
	r := setup(t)

	w := doJSON(t, r, http.MethodPost, "/api/water/", map[string]any{"amount_ml": 250})
	require.Equal(t, http.StatusCreated, w.Code)
	log := decode[models.WaterLog](t, w)
	assert.Equal(t, 250, log.AmountML)

	doJSON(t, r, http.MethodPost, "/api/water/", map[string]any{"amount_ml": 500})

	w = doJSON(t, r, http.MethodGet, "/api/water/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TodayTotal int               `json:"today_total"`
		Entries    []models.WaterLog `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 750, stats.TodayTotal)
	assert.Len(t, stats.Entries, 2)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/water/%d", log.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.WaterLog](t, w)
	assert.Len(t, history, 1)
}
