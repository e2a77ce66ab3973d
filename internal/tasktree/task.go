package tasktree

import "time"

// Status values mirror the LifeCoach API wire format.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Priority of a task. Tasks default to medium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AttachmentType distinguishes link attachments from uploaded files.
type AttachmentType string

const (
	AttachmentLink  AttachmentType = "link"
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
)

// Tag is a named label with display colors
type Tag struct {
	Name       string `json:"name"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// Comment is an append-only note on a task
type Comment struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a link or file attached to a task
type Attachment struct {
	ID        int            `json:"id"`
	Type      AttachmentType `json:"attachment_type"`
	URL       string         `json:"url,omitempty"`
	FilePath  string         `json:"file_path,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Task is a node in the task forest. Subtasks are exclusively owned by
// their parent; deleting a task deletes its whole subtree. The struct
// has value semantics: tree operations never mutate a Task in place.
type Task struct {
	ID               int          `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	Priority         Priority     `json:"priority,omitempty"`
	Status           Status       `json:"status"`
	Tags             []Tag        `json:"tags,omitempty"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	DurationMinutes  *int         `json:"duration_minutes,omitempty"`
	Hidden           bool         `json:"hidden"`
	CompletedSeconds int          `json:"completed_seconds"`
	Subtasks         []Task       `json:"subtasks"`
	Comments         []Comment    `json:"comments"`
	Attachments      []Attachment `json:"attachments"`
}

// Timed reports whether the task has an allotted duration. Untimed
// tasks have no countdown and impose no budget on their subtasks.
func (t Task) Timed() bool {
	return t.DurationMinutes != nil
}

// TotalSeconds returns the allotted duration in seconds, 0 if untimed.
func (t Task) TotalSeconds() int {
	if t.DurationMinutes == nil {
		return 0
	}
	return *t.DurationMinutes * 60
}

// RemainingSeconds returns the countdown left on a timed task, clamped at 0.
func (t Task) RemainingSeconds() int {
	r := t.TotalSeconds() - t.CompletedSeconds
	if r < 0 {
		return 0
	}
	return r
}

// Patch is a partial set of task fields. Nil fields are left untouched
// by a merge; set fields replace the task's value wholesale. The JSON
// encoding matches the API's partial-update body.
type Patch struct {
	Title            *string       `json:"title,omitempty"`
	Description      *string       `json:"description,omitempty"`
	Priority         *Priority     `json:"priority,omitempty"`
	Status           *Status       `json:"status,omitempty"`
	Tags             *[]Tag        `json:"tags,omitempty"`
	DueDate          *time.Time    `json:"due_date,omitempty"`
	DurationMinutes  *int          `json:"duration_minutes,omitempty"`
	Hidden           *bool         `json:"hidden,omitempty"`
	CompletedSeconds *int          `json:"completed_seconds,omitempty"`
	Comments         *[]Comment    `json:"-"`
	Attachments      *[]Attachment `json:"-"`
}

// merge returns t with the set fields of p applied (shallow merge).
func merge(t Task, p Patch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.DurationMinutes != nil {
		t.DurationMinutes = p.DurationMinutes
	}
	if p.Hidden != nil {
		t.Hidden = *p.Hidden
	}
	if p.CompletedSeconds != nil {
		t.CompletedSeconds = *p.CompletedSeconds
	}
	if p.Comments != nil {
		t.Comments = *p.Comments
	}
	if p.Attachments != nil {
		t.Attachments = *p.Attachments
	}
	return t
}
