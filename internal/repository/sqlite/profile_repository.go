package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

const profileColumns = `id, email, name, skill_level, current_streak, longest_streak, last_quiz_date, total_quizzes, created_at, updated_at`

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var last sql.NullTime
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.SkillLevel, &p.CurrentStreak, &p.LongestStreak, &last, &p.TotalQuizzes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time.UTC()
		p.LastQuizDate = &t
	}
	return &p, nil
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%s", id)

	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p models.Profile) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("creating profile: id=%s, name=%s", p.ID, p.Name)

	now := time.Now().UTC()
	if p.SkillLevel == "" {
		p.SkillLevel = models.SkillBeginner
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (id, email, name, skill_level, current_streak, longest_streak, last_quiz_date, total_quizzes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ID, p.Email, p.Name, p.SkillLevel, p.CurrentStreak, p.LongestStreak, p.LastQuizDate, p.TotalQuizzes, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("profile already exists: id=%s", p.ID)
			return nil, repository.ErrDuplicate
		}
		log.Error("failed to create profile: %v", err)
		return nil, err
	}
	log.Debug("profile created: id=%s", p.ID)
	return r.Get(ctx, p.ID)
}

func (r *profileRepository) UpdateName(ctx context.Context, id, name string) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating profile name: id=%s", id)

	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update profile name: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read affected rows: %v", err)
		return err
	}
	if n == 0 {
		log.Debug("profile not found for rename: id=%s", id)
		return repository.ErrNotFound
	}
	return nil
}

func updateProgress(ctx context.Context, tx *sql.Tx, p *models.Profile) error {
	var last any
	if p.LastQuizDate != nil {
		last = *p.LastQuizDate
	}
	_, err := tx.ExecContext(ctx, `
UPDATE profiles
SET skill_level = ?, current_streak = ?, longest_streak = ?, last_quiz_date = ?, total_quizzes = ?, updated_at = ?
WHERE id = ?
`, p.SkillLevel, p.CurrentStreak, p.LongestStreak, last, p.TotalQuizzes, p.UpdatedAt, p.ID)
	return err
}
