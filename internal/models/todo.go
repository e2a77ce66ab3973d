package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status wire values, shared with the client engine.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Todo represents a task row. Subtasks reference their parent through
// ParentID; a todo with a nil parent is top-level.
type Todo struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title            string     `gorm:"not null" json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           string     `gorm:"default:'To Do'" json:"status"`
	Priority         string     `gorm:"default:'medium'" json:"priority"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DurationMinutes  *int       `json:"duration_minutes,omitempty"`
	Hidden           bool       `gorm:"default:false" json:"hidden"`
	CompletedSeconds int        `gorm:"default:0" json:"completed_seconds"`

	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	// Relationships
	Subtasks    []Todo       `gorm:"foreignKey:ParentID" json:"subtasks"`
	Comments    []Comment    `gorm:"foreignKey:TodoID" json:"comments"`
	Attachments []Attachment `gorm:"foreignKey:TodoID" json:"attachments"`
	Tags        []Tag        `gorm:"many2many:todo_tags;" json:"tags,omitempty"`
}

// Comment is an append-only note on a todo
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TodoID uint   `gorm:"not null;index" json:"-"`
	Text   string `gorm:"not null" json:"text"`
}

// Attachment is a link (or uploaded file) attached to a todo
type Attachment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TodoID   uint   `gorm:"not null;index" json:"-"`
	Type     string `gorm:"not null" json:"attachment_type"` // link, image, pdf
	URL      string `json:"url,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// Tag is a named label with display colors
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"-"`
	Name string `gorm:"unique;not null" json:"name"`

	Foreground string `json:"foreground"`
	Background string `json:"background"`

	Todos []Todo `gorm:"many2many:todo_tags;" json:"-"`
}

// TodoTag is the join table for the many-to-many relationship
type TodoTag struct {
	TodoID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

// WaterLog records one glass of water
type WaterLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AmountML  int       `gorm:"not null" json:"amount_ml"`
	Timestamp time.Time `json:"timestamp"`
}
