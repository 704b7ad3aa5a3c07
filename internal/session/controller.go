package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/questions"
)

// Persister accepts completed attempts for asynchronous storage. done is
// called once with the outcome; it may run on any goroutine.
type Persister interface {
	EnqueueAttemptSave(attempt models.QuizAttempt, done func(err error)) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithTicker replaces the one-second countdown ticker.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(c *Controller) { c.newTicker = fn }
}

// WithClock replaces the wall clock used for timestamps and untimed quizzes.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns one user's quiz session and view state. All methods are
// safe for concurrent use.
type Controller struct {
	userID    string
	gen       questions.Generator
	persister Persister
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	log       *logger.Logger

	mu        sync.Mutex
	state     State
	view      View
	sessionID string
	settings  models.Settings
	questions []models.Question
	index     int
	answers   map[string]int
	remaining int
	startedAt time.Time
	result    *Result

	// genToken invalidates an in-flight generation when the session is reset.
	genToken uint64
	// epoch invalidates ticks from a cancelled timer.
	epoch     uint64
	stopTimer chan struct{}

	subs   map[int]chan Event
	nextID int
}

// New creates an idle controller for userID.
func New(userID string, gen questions.Generator, persister Persister, opts ...Option) *Controller {
	c := &Controller{
		userID:    userID,
		gen:       gen,
		persister: persister,
		newTicker: newRealTicker,
		now:       time.Now,
		log:       logger.Default().WithPrefix("session"),
		state:     StateIdle,
		view:      ViewDashboard,
		answers:   make(map[string]int),
		subs:      make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	if userID != "" {
		c.log = c.log.WithField("user_id", userID)
	}
	return c
}

// Generate starts a new session from settings. A previous active or completed
// session is reset first. On failure the controller is left idle.
func (c *Controller) Generate(ctx context.Context, settings models.Settings) (Snapshot, error) {
	if settings.QuestionCount <= 0 {
		return Snapshot{}, errors.NewValidationError("question_count", "must be positive")
	}
	settings.Difficulty = models.NormalizeDifficulty(settings.Difficulty)

	c.mu.Lock()
	if c.state == StateGenerating {
		c.mu.Unlock()
		return Snapshot{}, errors.NewConflictError("a quiz is already being generated")
	}
	if c.state != StateIdle {
		c.resetLocked()
	}
	c.genToken++
	token := c.genToken
	c.state = StateGenerating
	c.publishLocked(EventState)
	c.mu.Unlock()

	c.log.Info("generating quiz: subject=%s difficulty=%s count=%d", settings.Subject, settings.Difficulty, settings.QuestionCount)

	progress := func(pct int, stage string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.genToken != token || c.state != StateGenerating {
			return
		}
		c.publishLocked(EventProgress, func(e *Event) {
			e.Progress = pct
			e.Stage = stage
		})
	}
	qs, genErr := c.gen.Generate(ctx, settings.Subject, settings.Difficulty, settings.QuestionCount, progress)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genToken != token || c.state != StateGenerating {
		c.log.Debug("discarding generation result, session was reset")
		return Snapshot{}, errors.NewConflictError("quiz generation was cancelled")
	}
	if genErr == nil && len(qs) == 0 {
		genErr = fmt.Errorf("no questions available for %s/%s", settings.Subject, settings.Difficulty)
	}
	if genErr != nil {
		c.log.Warn("quiz generation failed: %v", genErr)
		c.state = StateIdle
		c.publishLocked(EventState)
		return Snapshot{}, errors.NewGenerationError(genErr)
	}

	c.sessionID = uuid.NewString()
	c.settings = settings
	c.questions = qs
	c.index = 0
	c.answers = make(map[string]int, len(qs))
	c.remaining = settings.TimeLimitSeconds()
	c.startedAt = c.now()
	c.result = nil
	c.state = StateActive
	c.view = ViewQuiz
	if settings.Timed() {
		c.startTimerLocked()
	}
	c.log.Info("quiz %s started with %d questions, %ds on the clock", c.sessionID, len(qs), c.remaining)
	c.publishLocked(EventState)
	return c.snapshotLocked(), nil
}

// SelectAnswer records (or overwrites) the option chosen for questionID.
func (c *Controller) SelectAnswer(questionID string, option int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return Snapshot{}, errors.NewConflictError("no active quiz")
	}
	q, ok := c.findLocked(questionID)
	if !ok {
		return Snapshot{}, errors.NewValidationError("question_id", fmt.Sprintf("unknown question %q", questionID))
	}
	if option < 0 || option >= len(q.Options) {
		return Snapshot{}, errors.NewValidationError("option", fmt.Sprintf("must be between 0 and %d", len(q.Options)-1))
	}
	c.answers[questionID] = option
	return c.snapshotLocked(), nil
}

// Advance moves to the next question, completing the session on the last one.
func (c *Controller) Advance() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return Snapshot{}, errors.NewConflictError("no active quiz")
	}
	if c.index < len(c.questions)-1 {
		c.index++
		c.publishLocked(EventState)
	} else {
		c.completeLocked("advance")
	}
	return c.snapshotLocked(), nil
}

// Submit completes the active session immediately.
func (c *Controller) Submit() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return Snapshot{}, errors.NewConflictError("no active quiz")
	}
	c.completeLocked("submit")
	return c.snapshotLocked(), nil
}

// Complete scores the active session. Completing twice is a no-op.
func (c *Controller) Complete() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.completeLocked("complete")
	}
	return c.snapshotLocked()
}

// Reset discards the session from any state and returns to the dashboard.
func (c *Controller) Reset() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.snapshotLocked()
}

// Navigate switches the current view. The quiz and results views follow the
// session state and cannot be entered out of turn; an active quiz must be
// exited through Reset.
func (c *Controller) Navigate(view View) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch view {
	case ViewQuiz:
		if c.state != StateActive && c.state != StateGenerating {
			return Snapshot{}, errors.NewConflictError("no quiz in progress")
		}
	case ViewResults:
		if c.state != StateCompleted {
			return Snapshot{}, errors.NewConflictError("no results to show")
		}
	case ViewDashboard, ViewPerformance, ViewSettings:
		if c.state == StateActive || c.state == StateGenerating {
			return Snapshot{}, errors.NewConflictError("exit the quiz before leaving it")
		}
	default:
		return Snapshot{}, errors.NewValidationError("view", fmt.Sprintf("unknown view %q", view))
	}

	if c.view != view {
		c.log.Debug("view %s -> %s", c.view, view)
		c.view = view
		c.publishLocked(EventState)
	}
	return c.snapshotLocked(), nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// RecordSave reports the outcome of persisting attemptID. Outcomes for a
// session that has since been reset are ignored.
func (c *Controller) RecordSave(sessionID, attemptID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil || c.sessionID != sessionID || c.result.AttemptID != attemptID {
		c.log.Debug("ignoring save outcome for stale attempt %s", attemptID)
		return
	}
	if err != nil {
		c.log.Warn("failed to save attempt %s: %v", attemptID, err)
		c.result.SaveStatus = SaveFailed
		c.result.Notice = saveFailedNotice
	} else {
		c.log.Debug("attempt %s saved", attemptID)
		c.result.SaveStatus = SaveSaved
		c.result.Notice = ""
	}
	c.publishLocked(EventSave, func(e *Event) { e.SaveStatus = c.result.SaveStatus })
}

// Subscribe streams events until cancel is called. Slow subscribers miss
// events rather than block the controller.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Event, 16)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (c *Controller) completeLocked(trigger string) {
	c.cancelTimerLocked()

	score := 0
	review := make([]ReviewItem, len(c.questions))
	for i, q := range c.questions {
		item := ReviewItem{Question: q.Clone()}
		if sel, ok := c.answers[q.ID]; ok {
			sel := sel
			item.Selected = &sel
			item.Correct = sel == q.CorrectAnswer
		}
		if item.Correct {
			score++
		}
		review[i] = item
	}

	now := c.now()
	elapsed := c.settings.TimeLimitSeconds() - c.remaining
	if !c.settings.Timed() {
		elapsed = int(now.Sub(c.startedAt).Seconds())
	}
	pct := models.Percentage(score, len(c.questions))

	c.result = &Result{
		AttemptID:        uuid.NewString(),
		Score:            score,
		Total:            len(c.questions),
		Percentage:       pct,
		Passed:           pct >= models.PassPercentage,
		TimeTakenSeconds: elapsed,
		CompletedAt:      now,
		SaveStatus:       SavePending,
		Review:           review,
	}
	c.state = StateCompleted
	c.view = ViewResults
	c.log.Info("quiz %s completed by %s: %d/%d (%d%%) in %ds", c.sessionID, trigger, score, len(c.questions), pct, elapsed)

	if c.persister == nil || c.userID == "" {
		c.result.SaveStatus = SaveSkipped
	} else {
		go c.persist(c.sessionID, c.attemptLocked())
	}
	c.publishLocked(EventState)
}

func (c *Controller) persist(sessionID string, attempt models.QuizAttempt) {
	done := func(err error) { c.RecordSave(sessionID, attempt.ID, err) }
	if err := c.persister.EnqueueAttemptSave(attempt, done); err != nil {
		done(err)
	}
}

func (c *Controller) attemptLocked() models.QuizAttempt {
	qs := make([]models.Question, len(c.questions))
	for i, q := range c.questions {
		qs[i] = q.Clone()
	}
	answers := make(map[string]int, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	return models.QuizAttempt{
		ID:               c.result.AttemptID,
		UserID:           c.userID,
		Subject:          c.settings.Subject,
		Difficulty:       c.settings.Difficulty,
		TotalQuestions:   c.result.Total,
		CorrectAnswers:   c.result.Score,
		ScorePercentage:  c.result.Percentage,
		TimeTakenSeconds: c.result.TimeTakenSeconds,
		Questions:        qs,
		Answers:          answers,
		CompletedAt:      c.result.CompletedAt,
	}
}

func (c *Controller) resetLocked() {
	c.cancelTimerLocked()
	c.genToken++
	c.sessionID = ""
	c.settings = models.Settings{}
	c.questions = nil
	c.index = 0
	c.answers = make(map[string]int)
	c.remaining = 0
	c.startedAt = time.Time{}
	c.result = nil
	c.state = StateIdle
	c.view = ViewDashboard
	if c.gen != nil {
		c.gen.DiscardSession()
	}
	c.publishLocked(EventState)
}

func (c *Controller) findLocked(id string) (models.Question, bool) {
	for _, q := range c.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:        c.sessionID,
		State:            c.state,
		View:             c.view,
		Questions:        make([]models.PublicQuestion, len(c.questions)),
		CurrentIndex:     c.index,
		Answers:          make(map[string]int, len(c.answers)),
		RemainingSeconds: c.remaining,
		TimeLimitSeconds: c.settings.TimeLimitSeconds(),
		TimerRunning:     c.stopTimer != nil,
	}
	for i, q := range c.questions {
		s.Questions[i] = q.Public()
	}
	for k, v := range c.answers {
		s.Answers[k] = v
	}
	if c.state == StateActive || c.state == StateCompleted {
		settings := c.settings
		s.Settings = &settings
	}
	if c.result != nil {
		r := *c.result
		r.Review = append([]ReviewItem(nil), c.result.Review...)
		if !c.settings.ShowExplanations {
			for i := range r.Review {
				r.Review[i].Question.Explanation = ""
			}
		}
		s.Result = &r
	}
	return s
}

func (c *Controller) publishLocked(t EventType, mutate ...func(*Event)) {
	if len(c.subs) == 0 {
		return
	}
	e := Event{
		Type:             t,
		SessionID:        c.sessionID,
		State:            c.state,
		View:             c.view,
		RemainingSeconds: c.remaining,
		At:               c.now(),
	}
	for _, m := range mutate {
		m(&e)
	}
	for id, ch := range c.subs {
		select {
		case ch <- e:
		default:
			c.log.Debug("subscriber %d is behind, dropping %s event", id, t)
		}
	}
}
