package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/logger"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	profile, err := s.ProfileService.GetOrCreate(r.Context(), *user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

type updateNameRequest struct {
	Name string `json:"name"`
}

// handleUpdateProfileName renames the profile. A failed rename still reports
// the stored profile so the client can revert to the last saved name.
func (s *Server) handleUpdateProfileName(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req updateNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.UpdateName(r.Context(), user.ID, req.Name)
	if err != nil {
		if profile != nil {
			log.Debug("rename failed, reverting to %q", profile.Name)
			handleErrorWith(w, r, err, map[string]any{"profile": profile})
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}
