package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

const (
	defaultAttemptPageSize = 20
	maxAttemptPageSize     = 100
	recentAttempts         = 5
)

// AttemptService handles quiz attempt history and progress
type AttemptService interface {
	SaveAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.Profile, error)
	ListAttempts(ctx context.Context, filter models.AttemptFilter) ([]models.QuizAttempt, int, error)
	GetAttempt(ctx context.Context, userID, id string) (*models.QuizAttempt, error)
	Performance(ctx context.Context, userID string) (*models.PerformanceSummary, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	profileRepo repository.ProfileRepository
}

// NewAttemptService creates a new AttemptService
func NewAttemptService(attemptRepo repository.AttemptRepository, profileRepo repository.ProfileRepository) AttemptService {
	return &attemptService{attemptRepo: attemptRepo, profileRepo: profileRepo}
}

func (s *attemptService) SaveAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving attempt: id=%s, user_id=%s", attempt.ID, attempt.UserID)

	if attempt.UserID == "" {
		return nil, errors.NewValidationError("user_id", "cannot be empty")
	}

	profile, err := s.attemptRepo.Insert(ctx, attempt)
	if stderrors.Is(err, repository.ErrNotFound) {
		log.Info("no profile for user_id=%s, creating one before saving", attempt.UserID)
		if _, cerr := s.profileRepo.Create(ctx, models.Profile{
			ID:         attempt.UserID,
			Name:       defaultProfileName,
			SkillLevel: models.SkillBeginner,
		}); cerr != nil && !stderrors.Is(cerr, repository.ErrDuplicate) {
			log.Error("failed to create profile: %v", cerr)
			return nil, errors.NewInternalError(cerr)
		}
		profile, err = s.attemptRepo.Insert(ctx, attempt)
	}
	if stderrors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewConflictError("attempt already saved")
	}
	if err != nil {
		log.Error("failed to save attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return profile, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, filter models.AttemptFilter) ([]models.QuizAttempt, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing attempts: user_id=%s", filter.UserID)

	if filter.Limit <= 0 {
		filter.Limit = defaultAttemptPageSize
	}
	if filter.Limit > maxAttemptPageSize {
		filter.Limit = maxAttemptPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	attempts, err := s.attemptRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.attemptRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count attempts: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return attempts, total, nil
}

func (s *attemptService) GetAttempt(ctx context.Context, userID, id string) (*models.QuizAttempt, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting attempt: id=%s", id)

	attempt, err := s.attemptRepo.Get(ctx, userID, id)
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if attempt == nil {
		return nil, errors.NewNotFoundError("attempt", id)
	}
	return attempt, nil
}

func (s *attemptService) Performance(ctx context.Context, userID string) (*models.PerformanceSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("building performance summary: user_id=%s", userID)

	summary, err := s.attemptRepo.Summary(ctx, userID)
	if err != nil {
		log.Error("failed to summarize attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	recent, err := s.attemptRepo.List(ctx, models.AttemptFilter{UserID: userID, Limit: recentAttempts})
	if err != nil {
		log.Error("failed to list recent attempts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	summary.Recent = recent
	return summary, nil
}
