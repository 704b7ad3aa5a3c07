package services

import (
	"context"
	"fmt"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/session"
)

// QuizService drives a user's quiz session with their stored settings.
type QuizService interface {
	Generate(ctx context.Context, userID string) (session.Snapshot, error)
	State(ctx context.Context, userID string) session.Snapshot
	Answer(ctx context.Context, userID, questionID string, option int) (session.Snapshot, error)
	Advance(ctx context.Context, userID string) (session.Snapshot, error)
	Submit(ctx context.Context, userID string) (session.Snapshot, error)
	Reset(ctx context.Context, userID string) session.Snapshot
	Results(ctx context.Context, userID string) (session.Snapshot, error)
	Navigate(ctx context.Context, userID, view string) (session.Snapshot, error)
	Subscribe(ctx context.Context, userID string) (<-chan session.Event, func())
}

type quizService struct {
	sessions *session.Manager
	settings SettingsService
}

// NewQuizService creates a new QuizService
func NewQuizService(sessions *session.Manager, settings SettingsService) QuizService {
	return &quizService{sessions: sessions, settings: settings}
}

func (s *quizService) Generate(ctx context.Context, userID string) (session.Snapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("generating quiz: user_id=%s", userID)

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return session.Snapshot{}, err
	}
	snap, err := s.sessions.Get(userID).Generate(ctx, settings)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeGenerationFailed) {
			log.Warn("quiz generation failed for user_id=%s: %v", userID, err)
		}
		return session.Snapshot{}, err
	}
	return snap, nil
}

func (s *quizService) State(ctx context.Context, userID string) session.Snapshot {
	return s.sessions.Get(userID).Snapshot()
}

func (s *quizService) Answer(ctx context.Context, userID, questionID string, option int) (session.Snapshot, error) {
	logger.FromContext(ctx).Debug("answer: user_id=%s, question_id=%s, option=%d", userID, questionID, option)
	return s.sessions.Get(userID).SelectAnswer(questionID, option)
}

func (s *quizService) Advance(ctx context.Context, userID string) (session.Snapshot, error) {
	logger.FromContext(ctx).Debug("advance: user_id=%s", userID)
	return s.sessions.Get(userID).Advance()
}

func (s *quizService) Submit(ctx context.Context, userID string) (session.Snapshot, error) {
	logger.FromContext(ctx).Debug("submit: user_id=%s", userID)
	return s.sessions.Get(userID).Submit()
}

func (s *quizService) Reset(ctx context.Context, userID string) session.Snapshot {
	logger.FromContext(ctx).Debug("reset: user_id=%s", userID)
	return s.sessions.Get(userID).Reset()
}

func (s *quizService) Results(ctx context.Context, userID string) (session.Snapshot, error) {
	snap := s.sessions.Get(userID).Snapshot()
	if snap.State != session.StateCompleted || snap.Result == nil {
		return session.Snapshot{}, errors.NewConflictError("no completed quiz")
	}
	return snap, nil
}

func (s *quizService) Navigate(ctx context.Context, userID, view string) (session.Snapshot, error) {
	logger.FromContext(ctx).Debug("navigate: user_id=%s, view=%s", userID, view)
	v, ok := session.ParseView(view)
	if !ok {
		return session.Snapshot{}, errors.NewValidationError("view", fmt.Sprintf("unknown view %q", view))
	}
	return s.sessions.Get(userID).Navigate(v)
}

func (s *quizService) Subscribe(ctx context.Context, userID string) (<-chan session.Event, func()) {
	logger.FromContext(ctx).Debug("subscribe: user_id=%s", userID)
	return s.sessions.Get(userID).Subscribe()
}
