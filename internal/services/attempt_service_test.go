package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
	"github.com/vytor/quizflash/internal/services"
	"github.com/vytor/quizflash/internal/testutil/mocks"
)

func TestSaveAttempt(t *testing.T) {
	ctx := context.Background()
	attempt := models.QuizAttempt{ID: "a1", UserID: "u1", TotalQuestions: 3, CorrectAnswers: 3, ScorePercentage: 100}

	t.Run("stores and returns progress", func(t *testing.T) {
		attempts := new(mocks.MockAttemptRepository)
		attempts.On("Insert", ctx, attempt).Return(&models.Profile{ID: "u1", CurrentStreak: 2}, nil)

		p, err := services.NewAttemptService(attempts, new(mocks.MockProfileRepository)).SaveAttempt(ctx, attempt)
		require.NoError(t, err)
		assert.Equal(t, 2, p.CurrentStreak)
	})

	t.Run("creates a missing profile and retries", func(t *testing.T) {
		attempts := new(mocks.MockAttemptRepository)
		profiles := new(mocks.MockProfileRepository)
		attempts.On("Insert", ctx, attempt).Return(nil, repository.ErrNotFound).Once()
		attempts.On("Insert", ctx, attempt).Return(&models.Profile{ID: "u1", TotalQuizzes: 1}, nil).Once()
		profiles.On("Create", ctx, mock.MatchedBy(func(p models.Profile) bool { return p.ID == "u1" })).
			Return(&models.Profile{ID: "u1"}, nil)

		p, err := services.NewAttemptService(attempts, profiles).SaveAttempt(ctx, attempt)
		require.NoError(t, err)
		assert.Equal(t, 1, p.TotalQuizzes)
		attempts.AssertNumberOfCalls(t, "Insert", 2)
	})

	t.Run("store failure", func(t *testing.T) {
		attempts := new(mocks.MockAttemptRepository)
		attempts.On("Insert", ctx, attempt).Return(nil, stderrors.New("database is locked"))

		_, err := services.NewAttemptService(attempts, nil).SaveAttempt(ctx, attempt)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
	})

	t.Run("duplicate", func(t *testing.T) {
		attempts := new(mocks.MockAttemptRepository)
		attempts.On("Insert", ctx, attempt).Return(nil, repository.ErrDuplicate)

		_, err := services.NewAttemptService(attempts, nil).SaveAttempt(ctx, attempt)
		assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	})
}

func TestListAttempts_ClampsPaging(t *testing.T) {
	ctx := context.Background()
	attempts := new(mocks.MockAttemptRepository)
	want := models.AttemptFilter{UserID: "u1", Limit: 100, Offset: 0}
	attempts.On("List", ctx, want).Return([]models.QuizAttempt{{ID: "a2"}, {ID: "a1"}}, nil)
	attempts.On("Count", ctx, want).Return(2, nil)

	list, total, err := services.NewAttemptService(attempts, nil).ListAttempts(ctx, models.AttemptFilter{UserID: "u1", Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "a2", list[0].ID)
}

func TestGetAttempt_NotFound(t *testing.T) {
	ctx := context.Background()
	attempts := new(mocks.MockAttemptRepository)
	attempts.On("Get", ctx, "u1", "nope").Return(nil, nil)

	_, err := services.NewAttemptService(attempts, nil).GetAttempt(ctx, "u1", "nope")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestPerformance_IncludesRecent(t *testing.T) {
	ctx := context.Background()
	attempts := new(mocks.MockAttemptRepository)
	attempts.On("Summary", ctx, "u1").Return(&models.PerformanceSummary{TotalQuizzes: 7, AveragePercent: 80}, nil)
	attempts.On("List", ctx, models.AttemptFilter{UserID: "u1", Limit: 5}).Return([]models.QuizAttempt{{ID: "a7"}}, nil)

	summary, err := services.NewAttemptService(attempts, nil).Performance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalQuizzes)
	require.Len(t, summary.Recent, 1)
	assert.Equal(t, "a7", summary.Recent[0].ID)
}
