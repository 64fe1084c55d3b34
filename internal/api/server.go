// Package api is the HTTP layer: request decoding, auth, and mapping
// agent and store errors onto transport statuses. All task semantics
// live in pkg/agent and the stores.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"taskboard/pkg/activity"
	"taskboard/pkg/agent"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

// Server is the HTTP API server.
type Server struct {
	tasks task.Store
	users user.Store
	agent *agent.Agent
	feed  *activity.Bus
	auth  *Auth
	mux   *http.ServeMux
}

// New creates a new Server.
func New(tasks task.Store, users user.Store, ag *agent.Agent, feed *activity.Bus, auth *Auth) *Server {
	s := &Server{
		tasks: tasks,
		users: users,
		agent: ag,
		feed:  feed,
		auth:  auth,
		mux:   http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Auth
	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /api/auth/signin", s.handleSignin)

	// Tasks
	s.mux.Handle("GET /api/tasks", s.auth.Require(s.handleTaskList))
	s.mux.Handle("POST /api/tasks", s.auth.Require(s.handleTaskCreate))
	s.mux.Handle("GET /api/tasks/{id}", s.auth.Require(s.handleTaskGet))
	s.mux.Handle("PUT /api/tasks/{id}", s.auth.Require(s.handleTaskUpdate))
	s.mux.Handle("DELETE /api/tasks/{id}", s.auth.Require(s.handleTaskDelete))

	// Users
	s.mux.Handle("GET /api/users", s.auth.Require(s.handleUserList))

	// AI command
	s.mux.Handle("POST /api/ai/command", s.auth.Require(s.handleCommand))

	// Activity
	s.mux.Handle("GET /api/activity", s.auth.Require(s.handleActivityList))
	s.mux.Handle("GET /api/activity/stream", s.auth.Require(s.handleActivityStream))

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
