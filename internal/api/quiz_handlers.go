package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/session"
)

func writeSnapshot(w http.ResponseWriter, r *http.Request, snap session.Snapshot, err error) {
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleQuizState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.State(r.Context(), userFromContext(r.Context()).ID))
}

// handleGenerateQuiz blocks until the questions are ready. Progress is pushed
// on the events socket meanwhile.
func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	snap, err := s.QuizService.Generate(r.Context(), userFromContext(r.Context()).ID)
	writeSnapshot(w, r, snap, err)
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Option     *int   `json:"option"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.QuestionID == "" {
		handleError(w, r, errors.NewValidationError("question_id", "is required"))
		return
	}
	if req.Option == nil {
		handleError(w, r, errors.NewValidationError("option", "is required"))
		return
	}

	snap, err := s.QuizService.Answer(r.Context(), userFromContext(r.Context()).ID, req.QuestionID, *req.Option)
	writeSnapshot(w, r, snap, err)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.QuizService.Advance(r.Context(), userFromContext(r.Context()).ID)
	writeSnapshot(w, r, snap, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	snap, err := s.QuizService.Submit(r.Context(), userFromContext(r.Context()).ID)
	writeSnapshot(w, r, snap, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.QuizService.Reset(r.Context(), userFromContext(r.Context()).ID))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	snap, err := s.QuizService.Results(r.Context(), userFromContext(r.Context()).ID)
	writeSnapshot(w, r, snap, err)
}
