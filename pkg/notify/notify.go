// Package notify delivers task emails to assignees. Delivery is
// best-effort: callers log failures and never fail the originating
// command on a notification error.
package notify

import (
	"context"
	"log"
)

// Notification is one email-worthy task change.
type Notification struct {
	To        string // assignee email
	ToName    string // assignee display name
	ActorName string // who made the change
	TaskID    string
	TaskTitle string
}

// Notifier is the contract for assignee notifications.
type Notifier interface {
	TaskAssigned(ctx context.Context, n Notification) error
	TaskUpdated(ctx context.Context, n Notification) error
	TaskDeleted(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log. Used in development and
// whenever SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) TaskAssigned(_ context.Context, n Notification) error {
	log.Printf("notify: task %s assigned to %s <%s> by %s", n.TaskID, n.ToName, n.To, n.ActorName)
	return nil
}

func (LogNotifier) TaskUpdated(_ context.Context, n Notification) error {
	log.Printf("notify: task %s updated for %s <%s> by %s", n.TaskID, n.ToName, n.To, n.ActorName)
	return nil
}

func (LogNotifier) TaskDeleted(_ context.Context, n Notification) error {
	log.Printf("notify: task %s deleted for %s <%s> by %s", n.TaskID, n.ToName, n.To, n.ActorName)
	return nil
}
