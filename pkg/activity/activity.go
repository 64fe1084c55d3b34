// Package activity records what happened to tasks and commands as an
// append-only feed: command lifecycle and task mutations. The
// dashboard reads it; nothing in the write path depends on it.
package activity

import (
	"context"
	"time"
)

// Event types recorded by the command pipeline.
const (
	TypeCommandReceived = "command.received"
	TypeCommandFailed   = "command.failed"
	TypeTaskCreated     = "task.created"
	TypeTaskUpdated     = "task.updated"
	TypeTaskDeleted     = "task.deleted"
)

// Event is a single entry in the append-only activity feed.
type Event struct {
	ID        string         `json:"id"` // UUID v7 (time-ordered)
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id"` // user who caused the event
	Content   map[string]any `json:"content"`
}

// Store is the contract for activity persistence.
type Store interface {
	Append(ctx context.Context, eventType, actorID string, content map[string]any) (*Event, error)
	Recent(ctx context.Context, limit int) ([]Event, error)
	ByType(ctx context.Context, eventType string, limit int) ([]Event, error)
	ByActor(ctx context.Context, actorID string, limit int) ([]Event, error)
	Count(ctx context.Context) (int, error)
	EnsureTable(ctx context.Context) error
}
