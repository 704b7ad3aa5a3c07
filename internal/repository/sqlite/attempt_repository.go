package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/repository"
)

var attemptColumns = []string{
	"id", "user_id", "subject", "difficulty", "total_questions", "correct_answers",
	"score_percentage", "time_taken", "questions_data", "user_answers", "completed_at",
}

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func scanAttempt(row rowScanner) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	var questionsData, answersData string
	if err := row.Scan(&a.ID, &a.UserID, &a.Subject, &a.Difficulty, &a.TotalQuestions, &a.CorrectAnswers,
		&a.ScorePercentage, &a.TimeTakenSeconds, &questionsData, &answersData, &a.CompletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questionsData), &a.Questions); err != nil {
		return nil, fmt.Errorf("decode questions_data for attempt %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(answersData), &a.Answers); err != nil {
		return nil, fmt.Errorf("decode user_answers for attempt %s: %w", a.ID, err)
	}
	return &a, nil
}

func (r *attemptRepository) Insert(ctx context.Context, a models.QuizAttempt) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("inserting attempt: id=%s, user_id=%s, score=%d/%d", a.ID, a.UserID, a.CorrectAnswers, a.TotalQuestions)

	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now()
	}
	a.CompletedAt = a.CompletedAt.UTC()
	if a.Questions == nil {
		a.Questions = []models.Question{}
	}
	if a.Answers == nil {
		a.Answers = map[string]int{}
	}
	questionsData, err := json.Marshal(a.Questions)
	if err != nil {
		log.Error("failed to encode questions: %v", err)
		return nil, err
	}
	answersData, err := json.Marshal(a.Answers)
	if err != nil {
		log.Error("failed to encode answers: %v", err)
		return nil, err
	}

	var profile *models.Profile
	err = tx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := scanProfile(tx.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, a.UserID))
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no profile for user %s", a.UserID)
			return repository.ErrNotFound
		}
		if err != nil {
			log.Error("failed to load profile for progress update: %v", err)
			return err
		}

		query, args, err := sqlBuilder.Insert("quiz_attempts").
			Columns(attemptColumns...).
			Values(a.ID, a.UserID, a.Subject, a.Difficulty, a.TotalQuestions, a.CorrectAnswers,
				a.ScorePercentage, a.TimeTakenSeconds, string(questionsData), string(answersData), a.CompletedAt).
			ToSql()
		if err != nil {
			log.Error("failed to build query: %v", err)
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				log.Debug("attempt already stored: id=%s", a.ID)
				return repository.ErrDuplicate
			}
			log.Error("failed to insert attempt: %v", err)
			return err
		}

		var count int
		var mean float64
		if err := tx.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(AVG(score_percentage), 0)
FROM quiz_attempts
WHERE user_id = ?
`, a.UserID).Scan(&count, &mean); err != nil {
			log.Error("failed to aggregate attempts: %v", err)
			return err
		}

		p.RecordQuiz(a.CompletedAt, mean, count)
		if err := updateProgress(ctx, tx, p); err != nil {
			log.Error("failed to update progress: %v", err)
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("attempt stored: id=%s, streak=%d, skill=%s", a.ID, profile.CurrentStreak, profile.SkillLevel)
	return profile, nil
}

func (r *attemptRepository) Get(ctx context.Context, userID, id string) (*models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("getting attempt: id=%s, user_id=%s", id, userID)

	query, args, err := sqlBuilder.Select(attemptColumns...).
		From("quiz_attempts").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("attempt not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	return a, nil
}

func applyAttemptFilter(query squirrel.SelectBuilder, filter models.AttemptFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.Subject != "" {
		query = query.Where(squirrel.Eq{"subject": filter.Subject})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": models.NormalizeDifficulty(filter.Difficulty)})
	}
	return query
}

func (r *attemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]models.QuizAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("listing attempts with filter: user_id=%s, subject=%s, difficulty=%s, limit=%d, offset=%d",
		filter.UserID, filter.Subject, filter.Difficulty, filter.Limit, filter.Offset)

	query := applyAttemptFilter(sqlBuilder.Select(attemptColumns...).From("quiz_attempts"), filter).
		OrderBy("completed_at DESC", "rowid DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	log.Debug("found %d attempts", len(attempts))
	return attempts, rows.Err()
}

func (r *attemptRepository) Count(ctx context.Context, filter models.AttemptFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("counting attempts: user_id=%s, subject=%s", filter.UserID, filter.Subject)

	sql, args, err := applyAttemptFilter(sqlBuilder.Select("COUNT(*)").From("quiz_attempts"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		log.Error("failed to count attempts: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *attemptRepository) Summary(ctx context.Context, userID string) (*models.PerformanceSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("summarizing attempts: user_id=%s", userID)

	var s models.PerformanceSummary
	var mean float64
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(AVG(score_percentage), 0), COALESCE(MAX(score_percentage), 0), COALESCE(SUM(time_taken), 0)
FROM quiz_attempts
WHERE user_id = ?
`, userID).Scan(&s.TotalQuizzes, &mean, &s.BestPercent, &s.TotalTimeSeconds)
	if err != nil {
		log.Error("failed to summarize attempts: %v", err)
		return nil, err
	}
	s.AveragePercent = int(math.Round(mean))

	rows, err := r.db.QueryContext(ctx, `
SELECT subject, COUNT(*), AVG(score_percentage), MAX(score_percentage)
FROM quiz_attempts
WHERE user_id = ?
GROUP BY subject
ORDER BY COUNT(*) DESC, subject ASC
`, userID)
	if err != nil {
		log.Error("failed to query subject stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	s.Subjects = []models.SubjectPerformance{}
	for rows.Next() {
		var sp models.SubjectPerformance
		var avg float64
		if err := rows.Scan(&sp.Subject, &sp.Attempts, &avg, &sp.BestPercent); err != nil {
			log.Error("failed to scan subject stats row: %v", err)
			return nil, err
		}
		sp.AveragePercent = int(math.Round(avg))
		s.Subjects = append(s.Subjects, sp)
	}
	log.Debug("summary: %d quizzes across %d subjects", s.TotalQuizzes, len(s.Subjects))
	return &s, rows.Err()
}
