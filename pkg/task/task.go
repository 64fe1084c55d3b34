package task

import (
	"context"
	"time"
)

// Task statuses. "Todo" is the default for new tasks.
const (
	StatusTodo       = "Todo"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusBackLog    = "BackLog"
	StatusCancelled  = "Cancelled"
)

// Task priorities. "Low" is the default for new tasks.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ValidStatus reports whether s is one of the recognized task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusBackLog, StatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the recognized task priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// UserRef is an embedded reference to a directory user.
type UserRef struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Task represents a unit of work in the system.
type Task struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"dueDate,omitempty"`
	DueTime     string    `json:"dueTime,omitempty"` // "HH:MM AM/PM"
	CreatedBy   UserRef   `json:"createdBy"`         // immutable after creation
	Assignee    UserRef   `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Query selects tasks for a read. CreatedByID is always set by callers:
// reads are scoped to the creator, and filters narrow within that scope.
type Query struct {
	CreatedByID string

	// IDs, when non-nil, restricts results to exactly these task ids.
	IDs []string

	TitleContains       string // case-insensitive substring
	DescriptionContains string // case-insensitive substring
	Status              string // exact
	Priority            string // exact
	DueDate             string // exact
	DueTime             string // exact
	AssigneeID          string // exact, on assignee userId
}

// Store is the contract for task persistence.
type Store interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	Find(ctx context.Context, q Query) ([]Task, error)
	// Update applies only the provided fields; untouched fields keep
	// their prior values. Supported keys: title, description, status,
	// priority, due_date, due_time, assignee.
	Update(ctx context.Context, id string, updates map[string]any) (*Task, error)
	// Delete removes a task permanently. Returns false when no task
	// with that id exists.
	Delete(ctx context.Context, id string) (bool, error)
	EnsureTable(ctx context.Context) error
}
