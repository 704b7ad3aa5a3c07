package repository

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// UserRepository handles account data access for the auth provider
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
