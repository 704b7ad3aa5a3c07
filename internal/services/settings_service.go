package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

// SettingsService handles quiz settings business logic
type SettingsService interface {
	// GetSettings returns the stored settings or the defaults.
	GetSettings(ctx context.Context, userID string) (models.Settings, error)
	UpdateSettings(ctx context.Context, userID string, settings models.Settings) (models.Settings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

// ValidateSettings normalizes s and reports the first invalid field.
func ValidateSettings(s models.Settings) (models.Settings, error) {
	s.Subject = strings.TrimSpace(s.Subject)
	s.Difficulty = models.NormalizeDifficulty(s.Difficulty)

	switch {
	case s.Subject == "":
		return s, errors.NewValidationError("subject", "cannot be empty")
	case !models.ValidDifficulty(s.Difficulty):
		return s, errors.NewValidationError("difficulty", "must be beginner, intermediate or advanced")
	case s.QuestionCount < 1 || s.QuestionCount > models.MaxQuestionCount:
		return s, errors.NewValidationError("question_count", fmt.Sprintf("must be between 1 and %d", models.MaxQuestionCount))
	case s.TimeLimitMinutes < 0 || s.TimeLimitMinutes > models.MaxTimeLimitMinutes:
		return s, errors.NewValidationError("time_limit", fmt.Sprintf("must be between 0 and %d minutes", models.MaxTimeLimitMinutes))
	}
	return s, nil
}

func (s *settingsService) GetSettings(ctx context.Context, userID string) (models.Settings, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting settings: user_id=%s", userID)

	stored, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to get settings: %v", err)
		return models.Settings{}, errors.NewInternalError(err)
	}
	if stored == nil {
		return models.DefaultSettings(), nil
	}
	return *stored, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID string, settings models.Settings) (models.Settings, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating settings: user_id=%s", userID)

	settings, err := ValidateSettings(settings)
	if err != nil {
		return models.Settings{}, err
	}
	if err := s.settingsRepo.Save(ctx, userID, settings); err != nil {
		log.Error("failed to save settings: %v", err)
		return models.Settings{}, errors.NewInternalError(err)
	}
	return settings, nil
}
