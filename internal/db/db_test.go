package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/quizflash/internal/db"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, sqlDB))
	require.NoError(t, db.Migrate(ctx, sqlDB))

	var applied int
	require.NoError(t, sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 2, applied)

	for _, table := range []string{"users", "profiles", "quiz_attempts", "user_settings"} {
		var name string
		err := sqlDB.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	path := t.TempDir() + "/quiz.db"

	d, err := db.Open("file:" + path)
	require.NoError(t, err)
	defer d.Close()

	assert.NoError(t, d.PingContext(context.Background()))
}
