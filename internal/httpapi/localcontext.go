package httpapi

import (
	"net/http"
	"strings"
)

func (s *Server) handleLocalContext(w http.ResponseWriter, r *http.Request) {
	town := strings.TrimSpace(r.PathValue("town"))
	if town == "" {
		writeError(w, http.StatusBadRequest, "town is required")
		return
	}

	result, err := s.localContext.ForTown(r.Context(), town)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build local context")
		return
	}
	writeData(w, http.StatusOK, result)
}
