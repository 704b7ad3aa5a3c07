package repository

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// SettingsRepository handles per-user quiz settings
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*models.Settings, error)
	Save(ctx context.Context, userID string, settings models.Settings) error
}
