package models

import "strings"

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is a single multiple-choice item. Instances are never mutated after
// they are issued; use Clone when a copy with its own option slice is needed.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Prompt        string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correct_answer" yaml:"correct_answer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
	Subject       string   `json:"subject" yaml:"subject"`
	Difficulty    string   `json:"difficulty" yaml:"difficulty"`
}

// PublicQuestion is what a quiz taker sees while the quiz is running.
type PublicQuestion struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"question"`
	Options    []string `json:"options"`
	Subject    string   `json:"subject"`
	Difficulty string   `json:"difficulty"`
}

// HistoryRecord is the reduced projection of a served question used for
// duplicate suppression only.
type HistoryRecord struct {
	ID         string `json:"id"`
	Prompt     string `json:"question"`
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
}

func (q Question) Clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Subject:    q.Subject,
		Difficulty: q.Difficulty,
	}
}

func (q Question) Record() HistoryRecord {
	return HistoryRecord{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Subject:    q.Subject,
		Difficulty: q.Difficulty,
	}
}

// NormalizeDifficulty folds "Intermediate", " ADVANCED " and friends into the
// lowercase bucket names used by the question bank.
func NormalizeDifficulty(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// ValidDifficulty reports whether d names one of the three buckets.
func ValidDifficulty(d string) bool {
	switch NormalizeDifficulty(d) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
