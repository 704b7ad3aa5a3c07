package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizflash/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueAttemptSave(attempt models.QuizAttempt, done func(error)) error {
	args := m.Called(attempt, done)
	return args.Error(0)
}
