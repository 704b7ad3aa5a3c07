package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/quizflash/internal/models"
)

type attemptsResponse struct {
	Attempts []models.QuizAttempt `json:"attempts"`
	Total    int                  `json:"total"`
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.AttemptFilter{
		UserID:     userFromContext(r.Context()).ID,
		Subject:    strings.TrimSpace(q.Get("subject")),
		Difficulty: models.NormalizeDifficulty(q.Get("difficulty")),
		Limit:      limit,
		Offset:     offset,
	}

	attempts, total, err := s.AttemptService.ListAttempts(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	writeJSON(w, r, http.StatusOK, attemptsResponse{
		Attempts: attempts,
		Total:    total,
	})
}

func (s *Server) handleAttemptDetail(w http.ResponseWriter, r *http.Request) {
	attempt, err := s.AttemptService.GetAttempt(r.Context(), userFromContext(r.Context()).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, attempt)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	summary, err := s.AttemptService.Performance(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
