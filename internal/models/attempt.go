package models

import (
	"math"
	"time"
)

// PassPercentage is the score at which a result counts as a pass.
const PassPercentage = 70

type QuizAttempt struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Subject          string         `json:"subject"`
	Difficulty       string         `json:"difficulty"`
	TotalQuestions   int            `json:"total_questions"`
	CorrectAnswers   int            `json:"correct_answers"`
	ScorePercentage  int            `json:"score_percentage"`
	TimeTakenSeconds int            `json:"time_taken"`
	Questions        []Question     `json:"questions_data"`
	Answers          map[string]int `json:"user_answers"`
	CompletedAt      time.Time      `json:"completed_at"`
}

type AttemptFilter struct {
	UserID     string
	Subject    string
	Difficulty string
	Limit      int
	Offset     int
}

// Percentage rounds correct/total to a whole percent; an empty quiz scores 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
