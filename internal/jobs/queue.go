package jobs

import "github.com/vytor/quizflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueAttemptSave schedules attempt for storage. done receives the
	// outcome once the job has run; it is not called if enqueueing fails.
	EnqueueAttemptSave(attempt models.QuizAttempt, done func(error)) error
}
