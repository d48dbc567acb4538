package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fireworld/fireworld/internal/app/domain/activity"
)

type createActivityRequest struct {
	Type    string `json:"type"`
	PostID  string `json:"postID"`
	Message string `json:"message"`
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := s.app.Activities.Create(r.Context(), activity.Kind(req.Type), req.PostID, UserID(r.Context()), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.Removed {
		writeJSON(w, http.StatusOK, map[string]string{
			"type":   "unlike",
			"postID": result.Activity.PostID,
		})
		return
	}
	writeJSON(w, http.StatusCreated, result.Activity)
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	acts, err := s.app.Activities.ListByPost(r.Context(), r.URL.Query().Get("postID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	activityID := mux.Vars(r)["activityID"]
	if err := s.app.Activities.Delete(r.Context(), activityID, UserID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"activityID": activityID})
}
