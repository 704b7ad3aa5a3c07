package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vytor/quizflash/internal/db"
	"github.com/vytor/quizflash/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertProfile stores a bare profile row for userID.
func InsertProfile(t *testing.T, sqlDB *sql.DB, userID, name string) {
	_, err := sqlDB.Exec(`INSERT INTO profiles (id, email, name) VALUES (?, ?, ?)`, userID, userID+"@example.com", name)
	require.NoError(t, err)
}

// Questions returns n well-formed questions whose correct answer cycles 0..3.
func Questions(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{
			ID:            fmt.Sprintf("q-%d", i),
			Prompt:        fmt.Sprintf("Question %d?", i),
			Options:       []string{"w", "x", "y", "z"},
			CorrectAnswer: i % models.OptionCount,
			Explanation:   "explained",
			Subject:       "Mathematics",
			Difficulty:    models.DifficultyBeginner,
		}
	}
	return out
}
