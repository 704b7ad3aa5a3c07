package models

import "time"

// Skill level thresholds over the mean score of all attempts.
const (
	advancedMinPercent     = 85
	advancedMinQuizzes     = 10
	intermediateMinPercent = 60
	intermediateMinQuizzes = 3
)

// SkillFor derives a skill level from the mean percentage over quizzes attempts.
func SkillFor(meanPercent float64, quizzes int) string {
	switch {
	case quizzes < intermediateMinQuizzes || meanPercent < intermediateMinPercent:
		return SkillBeginner
	case meanPercent >= advancedMinPercent && quizzes >= advancedMinQuizzes:
		return SkillAdvanced
	default:
		return SkillIntermediate
	}
}

// RecordQuiz applies a finished quiz at time at to the profile's counters and
// streak. Days are compared as UTC calendar dates.
func (p *Profile) RecordQuiz(at time.Time, meanPercent float64, quizzes int) {
	today := civilDay(at)

	switch {
	case p.LastQuizDate == nil:
		p.CurrentStreak = 1
	case civilDay(*p.LastQuizDate).Equal(today):
		if p.CurrentStreak < 1 {
			p.CurrentStreak = 1
		}
	case civilDay(*p.LastQuizDate).AddDate(0, 0, 1).Equal(today):
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}

	p.TotalQuizzes++
	p.LastQuizDate = &today
	p.SkillLevel = SkillFor(meanPercent, quizzes)
	p.UpdatedAt = at
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
