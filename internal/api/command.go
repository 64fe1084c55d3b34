package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskboard/pkg/agent"
	"taskboard/pkg/task"
)

// handleCommand runs one free-text command through the agent and maps
// its error taxonomy onto transport statuses.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Command == "" {
		writeError(w, 400, "command is required")
		return
	}

	result, err := s.agent.ProcessCommand(r.Context(), req.Command, actingUser(r))
	if err != nil {
		writeError(w, commandStatus(err), err.Error())
		return
	}
	writeJSON(w, 200, result)
}

// commandStatus maps agent failures to HTTP statuses. Unclassified
// errors (store failures, completion transport failures) are 502: the
// command itself may have been fine.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, agent.ErrMalformedResponse),
		errors.Is(err, agent.ErrMissingFields),
		errors.Is(err, agent.ErrNoTaskID):
		return 422
	case errors.Is(err, agent.ErrInvalidTaskID),
		errors.Is(err, agent.ErrNoUserMatch),
		errors.Is(err, task.ErrNotFound):
		return 404
	default:
		return 502
	}
}
