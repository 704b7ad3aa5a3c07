package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/quizflash/internal/models"
)

func TestSkillFor(t *testing.T) {
	tests := []struct {
		name    string
		mean    float64
		quizzes int
		want    string
	}{
		{"too few quizzes", 95, 2, models.SkillBeginner},
		{"low mean", 59.9, 20, models.SkillBeginner},
		{"intermediate", 70, 5, models.SkillIntermediate},
		{"high mean but few quizzes", 90, 9, models.SkillIntermediate},
		{"advanced", 85, 10, models.SkillAdvanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.SkillFor(tt.mean, tt.quizzes))
		})
	}
}

func TestRecordQuiz_Streaks(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC) }
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name        string
		profile     models.Profile
		at          time.Time
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "first quiz",
			profile:     models.Profile{},
			at:          day(10, 9),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "same day keeps streak",
			profile:     models.Profile{CurrentStreak: 3, LongestStreak: 5, LastQuizDate: ptr(day(10, 0))},
			at:          day(10, 23),
			wantCurrent: 3,
			wantLongest: 5,
		},
		{
			name:        "same day never below one",
			profile:     models.Profile{CurrentStreak: 0, LastQuizDate: ptr(day(10, 0))},
			at:          day(10, 8),
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "next day extends",
			profile:     models.Profile{CurrentStreak: 5, LongestStreak: 5, LastQuizDate: ptr(day(9, 0))},
			at:          day(10, 1),
			wantCurrent: 6,
			wantLongest: 6,
		},
		{
			name:        "gap resets",
			profile:     models.Profile{CurrentStreak: 4, LongestStreak: 7, LastQuizDate: ptr(day(7, 0))},
			at:          day(10, 1),
			wantCurrent: 1,
			wantLongest: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			p.RecordQuiz(tt.at, 50, 1)
			assert.Equal(t, tt.wantCurrent, p.CurrentStreak)
			assert.Equal(t, tt.wantLongest, p.LongestStreak)
			assert.Equal(t, tt.profile.TotalQuizzes+1, p.TotalQuizzes)
			if assert.NotNil(t, p.LastQuizDate) {
				assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), *p.LastQuizDate)
			}
		})
	}
}
