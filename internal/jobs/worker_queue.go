package jobs

import (
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	savePool *worker.Pool
	saver    worker.AttemptSaverInterface
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(savePool *worker.Pool, saver worker.AttemptSaverInterface) JobQueue {
	return &WorkerQueue{
		savePool: savePool,
		saver:    saver,
	}
}

func (q *WorkerQueue) EnqueueAttemptSave(attempt models.QuizAttempt, done func(error)) error {
	return q.savePool.Submit(&worker.SaveAttemptJob{
		Saver:   q.saver,
		Attempt: attempt,
		Done:    done,
	})
}
