package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository implementation
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("getting settings: user_id=%s", userID)

	query, args, err := sqlBuilder.
		Select("subject", "difficulty", "question_count", "time_limit", "auto_submit", "show_explanations", "sound_effects").
		From("user_settings").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var s models.Settings
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.Subject, &s.Difficulty, &s.QuestionCount, &s.TimeLimitMinutes, &s.AutoSubmit, &s.ShowExplanations, &s.SoundEffects)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stored settings: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, userID string, s models.Settings) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")
	log.Debug("saving settings: user_id=%s, subject=%s, difficulty=%s", userID, s.Subject, s.Difficulty)

	query, args, err := sqlBuilder.Insert("user_settings").
		Columns("user_id", "subject", "difficulty", "question_count", "time_limit", "auto_submit", "show_explanations", "sound_effects", "updated_at").
		Values(userID, s.Subject, s.Difficulty, s.QuestionCount, s.TimeLimitMinutes,
			boolToInt(s.AutoSubmit), boolToInt(s.ShowExplanations), boolToInt(s.SoundEffects), time.Now().UTC()).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
    subject = excluded.subject,
    difficulty = excluded.difficulty,
    question_count = excluded.question_count,
    time_limit = excluded.time_limit,
    auto_submit = excluded.auto_submit,
    show_explanations = excluded.show_explanations,
    sound_effects = excluded.sound_effects,
    updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save settings: %v", err)
		return err
	}
	return nil
}
