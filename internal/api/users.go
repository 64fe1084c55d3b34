package api

import "net/http"

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	// Directory view only: id, name, email. PasswordHash is excluded
	// by the model's json tag.
	writeJSON(w, 200, map[string]any{"users": users})
}
