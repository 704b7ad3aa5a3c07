package repository

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// AttemptRepository handles quiz attempt data access
type AttemptRepository interface {
	// Insert stores the attempt and applies the owner's progress update in the
	// same transaction. It returns the updated profile.
	Insert(ctx context.Context, attempt models.QuizAttempt) (*models.Profile, error)
	Get(ctx context.Context, userID, id string) (*models.QuizAttempt, error)
	List(ctx context.Context, filter models.AttemptFilter) ([]models.QuizAttempt, error)
	Count(ctx context.Context, filter models.AttemptFilter) (int, error)
	Summary(ctx context.Context, userID string) (*models.PerformanceSummary, error)
}
