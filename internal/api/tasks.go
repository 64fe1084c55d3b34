package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskboard/pkg/task"
)

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	actor := actingUser(r)
	q := task.Query{
		CreatedByID: actor.UserID,
		Status:      r.URL.Query().Get("status"),
		Priority:    r.URL.Query().Get("priority"),
		AssigneeID:  r.URL.Query().Get("assignee"),
	}
	tasks, err := s.tasks.Find(r.Context(), q)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	actor := actingUser(r)
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if t.Title == "" {
		writeError(w, 400, "title is required")
		return
	}
	if t.Assignee.UserID == "" {
		writeError(w, 400, "assignee information is required")
		return
	}
	if t.Status != "" && !task.ValidStatus(t.Status) {
		writeError(w, 400, "invalid status")
		return
	}
	if t.Priority != "" && !task.ValidPriority(t.Priority) {
		writeError(w, 400, "invalid priority")
		return
	}
	t.CreatedBy = actor

	created, err := s.tasks.Create(r.Context(), &t)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, created)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r)
	if !ok {
		return
	}

	var body struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		Status      string        `json:"status"`
		Priority    string        `json:"priority"`
		DueDate     string        `json:"dueDate"`
		DueTime     string        `json:"dueTime"`
		Assignee    *task.UserRef `json:"assignee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}

	updates := map[string]any{}
	if body.Title != "" {
		updates["title"] = body.Title
	}
	if body.Description != "" {
		updates["description"] = body.Description
	}
	if body.Status != "" {
		if !task.ValidStatus(body.Status) {
			writeError(w, 400, "invalid status")
			return
		}
		updates["status"] = body.Status
	}
	if body.Priority != "" {
		if !task.ValidPriority(body.Priority) {
			writeError(w, 400, "invalid priority")
			return
		}
		updates["priority"] = body.Priority
	}
	if body.DueDate != "" {
		updates["due_date"] = body.DueDate
	}
	if body.DueTime != "" {
		updates["due_time"] = body.DueTime
	}
	if body.Assignee != nil {
		updates["assignee"] = *body.Assignee
	}

	updated, err := s.tasks.Update(r.Context(), t.ID, updates)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeError(w, 404, "task not found")
			return
		}
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, updated)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ownedTask(w, r)
	if !ok {
		return
	}
	removed, err := s.tasks.Delete(r.Context(), t.ID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if !removed {
		writeError(w, 404, "task not found")
		return
	}
	writeJSON(w, 200, map[string]string{"message": "Task deleted successfully"})
}

// ownedTask fetches the path task and enforces creator scoping. A task
// someone else created is reported as not found, never as forbidden.
func (s *Server) ownedTask(w http.ResponseWriter, r *http.Request) (*task.Task, bool) {
	actor := actingUser(r)
	t, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			writeError(w, 404, "task not found")
		} else {
			writeError(w, 500, err.Error())
		}
		return nil, false
	}
	if t.CreatedBy.UserID != actor.UserID {
		writeError(w, 404, "task not found")
		return nil, false
	}
	return t, true
}
