package session

import (
	"time"

	"github.com/vytor/quizflash/internal/models"
)

// State is the lifecycle position of a quiz session.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateActive     State = "active"
	StateCompleted  State = "completed"
)

// View is the screen a user is looking at.
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewQuiz        View = "quiz"
	ViewResults     View = "results"
	ViewPerformance View = "performance"
	ViewSettings    View = "settings"
)

// ParseView returns the View named s.
func ParseView(s string) (View, bool) {
	switch v := View(s); v {
	case ViewDashboard, ViewQuiz, ViewResults, ViewPerformance, ViewSettings:
		return v, true
	}
	return "", false
}

// SaveStatus tracks the best-effort persistence of a completed attempt.
type SaveStatus string

const (
	SavePending SaveStatus = "pending"
	SaveSaved   SaveStatus = "saved"
	SaveFailed  SaveStatus = "failed"
	SaveSkipped SaveStatus = "skipped"
)

const saveFailedNotice = "Your results could not be saved. Your progress for this quiz was not recorded."

// Snapshot is a read-only copy of a controller's state. Correct answers are
// only revealed through Result once the session is completed.
type Snapshot struct {
	SessionID        string                  `json:"session_id,omitempty"`
	State            State                   `json:"state"`
	View             View                    `json:"view"`
	Settings         *models.Settings        `json:"settings,omitempty"`
	Questions        []models.PublicQuestion `json:"questions"`
	CurrentIndex     int                     `json:"current_index"`
	Answers          map[string]int          `json:"answers"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	TimeLimitSeconds int                     `json:"time_limit_seconds"`
	TimerRunning     bool                    `json:"timer_running"`
	Result           *Result                 `json:"result,omitempty"`
}

// Current returns the question at CurrentIndex, if any.
func (s Snapshot) Current() (models.PublicQuestion, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return models.PublicQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Result is the scored outcome of a completed session.
type Result struct {
	AttemptID        string       `json:"attempt_id"`
	Score            int          `json:"score"`
	Total            int          `json:"total"`
	Percentage       int          `json:"percentage"`
	Passed           bool         `json:"passed"`
	TimeTakenSeconds int          `json:"time_taken"`
	CompletedAt      time.Time    `json:"completed_at"`
	SaveStatus       SaveStatus   `json:"save_status"`
	Notice           string       `json:"notice,omitempty"`
	Review           []ReviewItem `json:"review"`
}

// ReviewItem pairs a question with the answer given for it.
type ReviewItem struct {
	Question models.Question `json:"question"`
	Selected *int            `json:"selected"`
	Correct  bool            `json:"correct"`
}

// EventType names the kind of change an Event reports.
type EventType string

const (
	EventState    EventType = "state"
	EventTick     EventType = "tick"
	EventProgress EventType = "progress"
	EventSave     EventType = "save"
)

// Event is pushed to subscribers whenever the controller changes.
type Event struct {
	Type             EventType  `json:"type"`
	SessionID        string     `json:"session_id,omitempty"`
	State            State      `json:"state"`
	View             View       `json:"view"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Progress         int        `json:"progress,omitempty"`
	Stage            string     `json:"stage,omitempty"`
	SaveStatus       SaveStatus `json:"save_status,omitempty"`
	At               time.Time  `json:"at"`
}
