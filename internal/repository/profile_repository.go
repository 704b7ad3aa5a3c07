package repository

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, profile models.Profile) (*models.Profile, error)
	UpdateName(ctx context.Context, id, name string) error
}
