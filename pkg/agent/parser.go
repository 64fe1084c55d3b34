package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// systemPrompt describes the task schema, the recognized action
// vocabulary, and the required response shape. Sent with every command.
const systemPrompt = `You are the command interpreter of a task management application. Convert the user's natural language input into ONE structured command.

Task schema:
- title: string (required)
- description: string
- status: one of "Todo", "In Progress", "Completed", "BackLog", "Cancelled"
- priority: one of "High", "Medium", "Low"
- dueDate: date string, e.g. "2024-09-01"
- dueTime: "HH:MM AM/PM", e.g. "05:00 PM"
- assigneeName: the person's name exactly as the user said it

Actions and their trigger words:
- "create": create, add, new, make, remind me to
- "read": show, list, display, find, get, search, what
- "update": update, change, modify, move, set, assign, reschedule, rename, complete, finish
- "delete": delete, remove, drop, clear

Tasks are referred to by short ids of the form "TASK-" followed by 4 characters, e.g. "TASK-9f3a". Put every id the user mentions into todoIds unchanged.

Respond with ONLY a JSON object in this shape (omit fields that do not apply):
{
  "action": "create" | "read" | "update" | "delete",
  "data": [ { ...task fields... } ],
  "filters": { "title": "", "description": "", "status": "", "priority": "", "assigneeName": "", "dueDate": "", "dueTime": "" },
  "todoIds": ["TASK-xxxx"],
  "taskCount": 0
}

Do not invent field values the user did not state. Do not add any text outside the JSON object.`

// Parser actions.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// TaskData is one task fragment extracted from a command. Empty fields
// were absent from the model output.
type TaskData struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	DueDate      string `json:"dueDate"`
	DueTime      string `json:"dueTime"`
	AssigneeName string `json:"assigneeName"`
}

// UnmarshalJSON tolerates the model putting the assignee name under
// "assignee" instead of "assigneeName", but only when it is a string.
func (d *TaskData) UnmarshalJSON(b []byte) error {
	type plain TaskData
	var aux struct {
		plain
		Assignee json.RawMessage `json:"assignee"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*d = TaskData(aux.plain)
	if d.AssigneeName == "" && len(aux.Assignee) > 0 {
		var name string
		if err := json.Unmarshal(aux.Assignee, &name); err == nil {
			d.AssigneeName = name
		}
	}
	return nil
}

// Filters narrows a read within the acting user's tasks.
type Filters struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	Priority     string `json:"priority,omitempty"`
	AssigneeName string `json:"assigneeName,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
	DueTime      string `json:"dueTime,omitempty"`
}

// ParsedCommand is the typed intent extracted from one free-text
// command. Created fresh per invocation and never persisted.
type ParsedCommand struct {
	Action    string
	Data      []TaskData
	Filters   *Filters
	TodoIDs   []string // full task ids, already resolved
	TaskCount int
}

// rawCommand mirrors the model's JSON loosely: data may be an object or
// an array, ids may appear as "todoId" or "todoIds", a single string or
// a list.
type rawCommand struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data"`
	Filters   *Filters        `json:"filters"`
	TodoIDs   json.RawMessage `json:"todoIds"`
	TodoID    string          `json:"todoId"`
	TaskCount int             `json:"taskCount"`
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// stripCodeFences returns the content of the first fenced block, or the
// trimmed input when no fences are present.
func stripCodeFences(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// parse runs one completion call and converts the response into a
// ParsedCommand with all task ids resolved against the index.
func (a *Agent) parse(ctx context.Context, input string, idx *shortIDIndex) (*ParsedCommand, error) {
	response, err := a.llm.Complete(ctx, systemPrompt, input)
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}
	return parseResponse(response, idx)
}

// parseResponse validates and normalizes raw model text. The model is
// untrusted for both syntax and semantics: anything that does not
// decode into a recognized command shape is a MalformedResponse, and
// every task id must resolve before the command is returned.
func parseResponse(response string, idx *shortIDIndex) (*ParsedCommand, error) {
	var raw rawCommand
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	cmd := &ParsedCommand{
		Action:    strings.ToLower(strings.TrimSpace(raw.Action)),
		Filters:   raw.Filters,
		TaskCount: raw.TaskCount,
	}
	switch cmd.Action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
	default:
		return nil, fmt.Errorf("%w: unrecognized action %q", ErrMalformedResponse, raw.Action)
	}

	data, err := normalizeData(raw.Data)
	if err != nil {
		return nil, err
	}
	cmd.Data = data

	ids, err := normalizeIDs(raw.TodoIDs, raw.TodoID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		cmd.TodoIDs, err = idx.resolveAll(ids)
		if err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func normalizeData(raw json.RawMessage) ([]TaskData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var many []TaskData
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one TaskData
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("%w: data is neither object nor array", ErrMalformedResponse)
	}
	return []TaskData{one}, nil
}

func normalizeIDs(raw json.RawMessage, single string) ([]string, error) {
	var ids []string
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &ids); err != nil {
			var one string
			if err := json.Unmarshal(raw, &one); err != nil {
				return nil, fmt.Errorf("%w: todoIds is neither string nor array", ErrMalformedResponse)
			}
			ids = []string{one}
		}
	}
	if single != "" {
		ids = append(ids, single)
	}
	return ids, nil
}

// canonicalStatus maps model spellings onto the status enum. The second
// return is false for unrecognized non-empty input.
func canonicalStatus(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "todo", "to do", "to-do":
		return "Todo", true
	case "in progress", "in_progress", "inprogress", "in-progress":
		return "In Progress", true
	case "completed", "complete", "done":
		return "Completed", true
	case "backlog", "back log":
		return "BackLog", true
	case "cancelled", "canceled":
		return "Cancelled", true
	}
	return "", false
}

// canonicalPriority maps model spellings onto the priority enum.
func canonicalPriority(p string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "":
		return "", true
	case "high":
		return "High", true
	case "medium", "med":
		return "Medium", true
	case "low":
		return "Low", true
	}
	return "", false
}
