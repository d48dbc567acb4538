package httpapi

import (
	"net/http"

	"github.com/fireworld/fireworld/internal/app/domain/user"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	ImageURL string `json:"imageUrl"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	u, token, err := s.app.Auth.Register(r.Context(), req.Name, req.Password, req.ImageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u.Profile()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	u, token, err := s.app.Auth.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u.Profile()})
}

// handleVerify confirms the presented token and echoes its identity, which
// lets clients restore a session on reload.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"userID": UserID(r.Context()),
		"name":   UserName(r.Context()),
	})
}
