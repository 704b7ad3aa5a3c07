package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/session"
)

type dashboardResponse struct {
	Profile  *models.Profile `json:"profile"`
	Settings models.Settings `json:"settings"`
	State    session.State   `json:"state"`
	View     session.View    `json:"view"`
	Subjects []string        `json:"subjects"`
	Topics   []string        `json:"topics"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	profile, err := s.ProfileService.GetOrCreate(ctx, *user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	settings, err := s.SettingsService.GetSettings(ctx, user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	snap := s.QuizService.State(ctx, user.ID)

	writeJSON(w, r, http.StatusOK, dashboardResponse{
		Profile:  profile,
		Settings: settings,
		State:    snap.State,
		View:     snap.View,
		Subjects: s.Bank.Subjects(),
		Topics:   s.Bank.Topics(settings.Subject),
	})
}

type navigateRequest struct {
	View string `json:"view"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	snap, err := s.QuizService.Navigate(r.Context(), userFromContext(r.Context()).ID, req.View)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}
