package worker

import (
	"context"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

// SaveAttemptJob stores a completed quiz attempt and reports the outcome
// through Done.
type SaveAttemptJob struct {
	Saver   AttemptSaverInterface
	Attempt models.QuizAttempt
	Done    func(error)
}

func (j *SaveAttemptJob) Name() string { return "save_attempt" }

func (j *SaveAttemptJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"attempt_id": j.Attempt.ID,
		"user_id":    j.Attempt.UserID,
	})
	log.Debug("saving attempt: %d/%d correct", j.Attempt.CorrectAnswers, j.Attempt.TotalQuestions)

	profile, err := j.Saver.SaveAttempt(ctx, j.Attempt)
	if err == nil && profile != nil {
		log.Debug("progress updated: streak=%d, total=%d, skill=%s", profile.CurrentStreak, profile.TotalQuizzes, profile.SkillLevel)
	}
	if j.Done != nil {
		j.Done(err)
	}
	return err
}
