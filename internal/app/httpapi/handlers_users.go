package httpapi

import "net/http"

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.app.Users.List(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}
