package httpapi

import "net/http"

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.app.News == nil {
		writeError(w, http.StatusNotFound, "News feed is not configured")
		return
	}

	articles, err := s.app.News.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}
