package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/models"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.SettingsService.GetSettings(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

// handleUpdateSettings replaces the stored settings. They apply to the next
// generated quiz, never to one in progress.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	settings, err := s.SettingsService.UpdateSettings(r.Context(), userFromContext(r.Context()).ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}
