// Package agent is the natural-language command interface: it sends
// free text to the completion service, normalizes the untrusted reply
// into a typed command, resolves short task ids and assignee names
// against current state, and applies the resulting mutation or query.
//
// Each invocation is a single request-scoped pass. The only shared
// state is the task store itself; the short-id index is rebuilt from a
// fresh snapshot every time. Failures are terminal for the invocation
// and perform zero store writes.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskboard/pkg/activity"
	"taskboard/pkg/notify"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

// Agent processes free-text commands against the task store.
type Agent struct {
	tasks    task.Store
	users    user.Store
	llm      Completer
	feed     activity.Store  // may be nil
	notifier notify.Notifier // may be nil
}

// New creates an Agent. feed and notifier may be nil; both are
// best-effort side channels and never fail a command.
func New(tasks task.Store, users user.Store, llm Completer, feed activity.Store, notifier notify.Notifier) *Agent {
	return &Agent{tasks: tasks, users: users, llm: llm, feed: feed, notifier: notifier}
}

// AppliedFilters reports which filters a read actually applied, so a
// caller can render "N filtered results" and offer a reset.
type AppliedFilters struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	AssigneeName string   `json:"assigneeName,omitempty"`
	DueDate      string   `json:"dueDate,omitempty"`
	DueTime      string   `json:"dueTime,omitempty"`
	TaskIDs      []string `json:"taskIds,omitempty"` // short display ids
}

// CommandResult is the outcome of one successfully executed command.
type CommandResult struct {
	Success bool            `json:"success"`
	Action  string          `json:"action"`
	Task    *task.Task      `json:"task,omitempty"`    // create, update
	Tasks   []task.Task     `json:"tasks,omitempty"`   // read
	Filters *AppliedFilters `json:"filters,omitempty"` // read
	Message string          `json:"message,omitempty"` // delete
}

// ProcessCommand runs one free-text command for the acting user.
func (a *Agent) ProcessCommand(ctx context.Context, input string, actor task.UserRef) (*CommandResult, error) {
	a.logEvent(ctx, activity.TypeCommandReceived, actor.UserID, map[string]any{
		"command": truncate(input, 200),
	})

	// Fresh snapshot per command: the index must never be stale versus
	// concurrent creates and deletes.
	snapshot, err := a.tasks.Find(ctx, task.Query{CreatedByID: actor.UserID})
	if err != nil {
		return nil, fmt.Errorf("snapshot tasks: %w", err)
	}
	idx := buildShortIDIndex(snapshot)

	cmd, err := a.parse(ctx, input, idx)
	if err != nil {
		a.logFailure(ctx, actor, input, err)
		return nil, err
	}

	var res *CommandResult
	switch cmd.Action {
	case ActionCreate:
		res, err = a.executeCreate(ctx, cmd, actor)
	case ActionRead:
		res, err = a.executeRead(ctx, cmd, actor)
	case ActionUpdate:
		res, err = a.executeUpdate(ctx, cmd, actor)
	case ActionDelete:
		res, err = a.executeDelete(ctx, cmd, actor)
	}
	if err != nil {
		a.logFailure(ctx, actor, input, err)
		return nil, err
	}
	return res, nil
}

// createRequired lists the fields a create fragment must carry, in the
// order they are reported when absent. Assignee is deliberately not
// required: it defaults to the acting user when entirely unspecified.
var createRequired = []struct {
	name  string
	value func(TaskData) string
}{
	{"title", func(d TaskData) string { return d.Title }},
	{"description", func(d TaskData) string { return d.Description }},
	{"priority", func(d TaskData) string { return d.Priority }},
	{"status", func(d TaskData) string { return d.Status }},
	{"dueDate", func(d TaskData) string { return d.DueDate }},
	{"dueTime", func(d TaskData) string { return d.DueTime }},
}

func (a *Agent) executeCreate(ctx context.Context, cmd *ParsedCommand, actor task.UserRef) (*CommandResult, error) {
	var fragment TaskData
	if len(cmd.Data) > 0 {
		fragment = cmd.Data[0]
	}

	var missing []string
	for _, f := range createRequired {
		if strings.TrimSpace(f.value(fragment)) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		// Unattended creation must not invent placeholder values.
		return nil, fmt.Errorf("%w: [%s]", ErrMissingFields, strings.Join(missing, ", "))
	}

	status, ok := canonicalStatus(fragment.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized status %q", ErrMalformedResponse, fragment.Status)
	}
	priority, ok := canonicalPriority(fragment.Priority)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized priority %q", ErrMalformedResponse, fragment.Priority)
	}

	assignee := actor
	if fragment.AssigneeName != "" {
		var err error
		assignee, err = a.resolveAssignee(ctx, fragment.AssigneeName)
		if err != nil {
			return nil, err
		}
	}

	created, err := a.tasks.Create(ctx, &task.Task{
		Title:       fragment.Title,
		Description: fragment.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     fragment.DueDate,
		DueTime:     fragment.DueTime,
		CreatedBy:   actor,
		Assignee:    assignee,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	a.logEvent(ctx, activity.TypeTaskCreated, actor.UserID, map[string]any{
		"task_id": created.ID,
		"title":   created.Title,
	})
	a.notify(ctx, a.notifierAssigned, created, actor)

	return &CommandResult{Success: true, Action: ActionCreate, Task: created}, nil
}

func (a *Agent) executeRead(ctx context.Context, cmd *ParsedCommand, actor task.UserRef) (*CommandResult, error) {
	// Ownership scoping is structural: every read query carries the
	// acting user's id and filters only narrow within it.
	q := task.Query{CreatedByID: actor.UserID}
	applied := AppliedFilters{}

	if f := cmd.Filters; f != nil {
		if f.Title != "" {
			q.TitleContains = f.Title
			applied.Title = f.Title
		}
		if f.Description != "" {
			q.DescriptionContains = f.Description
			applied.Description = f.Description
		}
		if f.Status != "" {
			q.Status = f.Status
			if st, ok := canonicalStatus(f.Status); ok {
				q.Status = st
			}
			applied.Status = q.Status
		}
		if f.Priority != "" {
			q.Priority = f.Priority
			if p, ok := canonicalPriority(f.Priority); ok {
				q.Priority = p
			}
			applied.Priority = q.Priority
		}
		if f.DueDate != "" {
			q.DueDate = f.DueDate
			applied.DueDate = f.DueDate
		}
		if f.DueTime != "" {
			q.DueTime = f.DueTime
			applied.DueTime = f.DueTime
		}
		if f.AssigneeName != "" {
			ref, err := a.resolveAssignee(ctx, f.AssigneeName)
			if err != nil {
				return nil, err
			}
			q.AssigneeID = ref.UserID
			applied.AssigneeName = f.AssigneeName
		}
	}
	if len(cmd.TodoIDs) > 0 {
		q.IDs = cmd.TodoIDs
		for _, id := range cmd.TodoIDs {
			applied.TaskIDs = append(applied.TaskIDs, FormatTaskID(id))
		}
	}

	tasks, err := a.tasks.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if cmd.TaskCount > 0 && len(tasks) > cmd.TaskCount {
		tasks = tasks[:cmd.TaskCount]
	}
	return &CommandResult{Success: true, Action: ActionRead, Tasks: tasks, Filters: &applied}, nil
}

func (a *Agent) executeUpdate(ctx context.Context, cmd *ParsedCommand, actor task.UserRef) (*CommandResult, error) {
	id, err := a.targetTask(ctx, cmd, actor)
	if err != nil {
		return nil, err
	}

	var fragment TaskData
	if len(cmd.Data) > 0 {
		fragment = cmd.Data[0]
	}

	// $set semantics: only fields present in the fragment change.
	updates := map[string]any{}
	if fragment.Title != "" {
		updates["title"] = fragment.Title
	}
	if fragment.Description != "" {
		updates["description"] = fragment.Description
	}
	if fragment.Status != "" {
		status, ok := canonicalStatus(fragment.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized status %q", ErrMalformedResponse, fragment.Status)
		}
		updates["status"] = status
	}
	if fragment.Priority != "" {
		priority, ok := canonicalPriority(fragment.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized priority %q", ErrMalformedResponse, fragment.Priority)
		}
		updates["priority"] = priority
	}
	if fragment.DueDate != "" {
		updates["due_date"] = fragment.DueDate
	}
	if fragment.DueTime != "" {
		updates["due_time"] = fragment.DueTime
	}
	if fragment.AssigneeName != "" {
		ref, err := a.resolveAssignee(ctx, fragment.AssigneeName)
		if err != nil {
			return nil, err
		}
		updates["assignee"] = ref
	}

	updated, err := a.tasks.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	a.logEvent(ctx, activity.TypeTaskUpdated, actor.UserID, map[string]any{
		"task_id": updated.ID,
		"title":   updated.Title,
	})
	a.notify(ctx, a.notifierUpdated, updated, actor)

	return &CommandResult{Success: true, Action: ActionUpdate, Task: updated}, nil
}

func (a *Agent) executeDelete(ctx context.Context, cmd *ParsedCommand, actor task.UserRef) (*CommandResult, error) {
	id, err := a.targetTask(ctx, cmd, actor)
	if err != nil {
		return nil, err
	}

	existing, err := a.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := a.tasks.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete task %s: %w", id, err)
	}
	if !ok {
		return nil, task.ErrNotFound
	}

	a.logEvent(ctx, activity.TypeTaskDeleted, actor.UserID, map[string]any{
		"task_id": existing.ID,
		"title":   existing.Title,
	})
	a.notify(ctx, a.notifierDeleted, existing, actor)

	return &CommandResult{Success: true, Action: ActionDelete, Message: "Task deleted successfully"}, nil
}

// targetTask picks the single task an update or delete acts on: the
// first resolved id, verified to exist under the acting user's scope.
func (a *Agent) targetTask(ctx context.Context, cmd *ParsedCommand, actor task.UserRef) (string, error) {
	if len(cmd.TodoIDs) == 0 {
		return "", ErrNoTaskID
	}
	id := cmd.TodoIDs[0]
	existing, err := a.tasks.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if existing.CreatedBy.UserID != actor.UserID {
		return "", task.ErrNotFound
	}
	return id, nil
}

func (a *Agent) logEvent(ctx context.Context, eventType, actorID string, content map[string]any) {
	if a.feed == nil {
		return
	}
	if _, err := a.feed.Append(ctx, eventType, actorID, content); err != nil {
		log.Printf("agent: log event %s: %v", eventType, err)
	}
}

func (a *Agent) logFailure(ctx context.Context, actor task.UserRef, input string, cause error) {
	a.logEvent(ctx, activity.TypeCommandFailed, actor.UserID, map[string]any{
		"command": truncate(input, 200),
		"error":   cause.Error(),
	})
}

func (a *Agent) notifierAssigned(ctx context.Context, n notify.Notification) error {
	return a.notifier.TaskAssigned(ctx, n)
}

func (a *Agent) notifierUpdated(ctx context.Context, n notify.Notification) error {
	return a.notifier.TaskUpdated(ctx, n)
}

func (a *Agent) notifierDeleted(ctx context.Context, n notify.Notification) error {
	return a.notifier.TaskDeleted(ctx, n)
}

func (a *Agent) notify(ctx context.Context, send func(context.Context, notify.Notification) error, t *task.Task, actor task.UserRef) {
	if a.notifier == nil {
		return
	}
	err := send(ctx, notify.Notification{
		To:        t.Assignee.Email,
		ToName:    t.Assignee.Name,
		ActorName: actor.Name,
		TaskID:    t.ID,
		TaskTitle: t.Title,
	})
	if err != nil {
		log.Printf("agent: notify for task %s: %v", t.ID, err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
