package worker

import (
	"context"

	"github.com/vytor/quizflash/internal/models"
)

// AttemptSaverInterface defines the interface for persisting quiz attempts
// This avoids import cycles by not importing the services package
type AttemptSaverInterface interface {
	SaveAttempt(ctx context.Context, attempt models.QuizAttempt) (*models.Profile, error)
}
