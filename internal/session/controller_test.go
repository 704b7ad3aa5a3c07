package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
	"github.com/vytor/quizflash/internal/questions"
)

type stubGenerator struct {
	qs        []models.Question
	err       error
	block     chan struct{}
	discarded int
}

func (g *stubGenerator) Generate(ctx context.Context, subject, difficulty string, count int, progress questions.ProgressFunc) ([]models.Question, error) {
	if progress != nil {
		progress(50, "Generating questions...")
	}
	if g.block != nil {
		<-g.block
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.qs, nil
}

func (g *stubGenerator) DiscardSession() { g.discarded++ }

type recordingPersister struct {
	mu       sync.Mutex
	attempts []models.QuizAttempt
	err      error
}

func (p *recordingPersister) EnqueueAttemptSave(a models.QuizAttempt, done func(error)) error {
	p.mu.Lock()
	p.attempts = append(p.attempts, a)
	err := p.err
	p.mu.Unlock()
	go done(err)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.attempts)
}

// idleTicker never fires; tests drive the countdown through tick.
type idleTicker struct{}

func (t *idleTicker) C() <-chan time.Time { return nil }
func (t *idleTicker) Stop()               {}

type chanTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *chanTicker) C() <-chan time.Time { return t.ch }
func (t *chanTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *chanTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func fixedQuestions(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{
			ID:            fmt.Sprintf("q-%d", i),
			Prompt:        fmt.Sprintf("Question %d?", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % models.OptionCount,
			Explanation:   "because",
			Subject:       "Mathematics",
			Difficulty:    models.DifficultyBeginner,
		}
	}
	return out
}

func mathSettings(count, minutes int, autoSubmit bool) models.Settings {
	return models.Settings{
		Subject:          "Mathematics",
		Difficulty:       "beginner",
		QuestionCount:    count,
		TimeLimitMinutes: minutes,
		AutoSubmit:       autoSubmit,
		ShowExplanations: true,
	}
}

func newTestController(gen questions.Generator, p Persister, opts ...Option) *Controller {
	opts = append([]Option{
		WithTicker(func(time.Duration) Ticker { return &idleTicker{} }),
		WithLogger(logger.Discard()),
	}, opts...)
	return New("user-1", gen, p, opts...)
}

func tickN(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		epoch := c.epoch
		c.mu.Unlock()
		c.tick(epoch)
	}
}

func TestGenerate_MathematicsBeginnerScenario(t *testing.T) {
	bank, err := questions.DefaultBank()
	require.NoError(t, err)
	provider := questions.NewProvider(bank, questions.NewHistory(), questions.NewHistory())
	c := newTestController(provider, nil)

	snap, err := c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)

	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, ViewQuiz, snap.View)
	require.Len(t, snap.Questions, 3)
	for _, q := range snap.Questions {
		assert.Equal(t, "Mathematics", q.Subject)
		assert.Equal(t, "beginner", q.Difficulty)
	}
	assert.Equal(t, 60, snap.RemainingSeconds)
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Empty(t, snap.Answers)
	assert.True(t, snap.TimerRunning)
	assert.Nil(t, snap.Result)
}

func TestComplete_AllCorrectScoresFull(t *testing.T) {
	persister := &recordingPersister{}
	c := newTestController(&stubGenerator{qs: fixedQuestions(3)}, persister)

	snap, err := c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)

	for _, q := range c.questions {
		_, err := c.SelectAnswer(q.ID, q.CorrectAnswer)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		snap, err = c.Advance()
		require.NoError(t, err)
	}

	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, ViewResults, snap.View)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 3, snap.Result.Score)
	assert.Equal(t, 100, snap.Result.Percentage)
	assert.True(t, snap.Result.Passed)
	assert.False(t, snap.TimerRunning)

	assert.Eventually(t, func() bool { return c.Snapshot().Result.SaveStatus == SaveSaved }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, persister.count())
	saved := persister.attempts[0]
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, snap.Result.AttemptID, saved.ID)
	assert.Equal(t, 3, saved.CorrectAnswers)
	assert.Len(t, saved.Answers, 3)
}

func TestScore_CountsOnlyMatchingAnswers(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(4)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(4, 5, true))
	require.NoError(t, err)

	qs := c.questions
	_, _ = c.SelectAnswer(qs[0].ID, qs[0].CorrectAnswer)
	_, _ = c.SelectAnswer(qs[1].ID, (qs[1].CorrectAnswer+1)%4)
	_, _ = c.SelectAnswer(qs[2].ID, (qs[2].CorrectAnswer+1)%4)
	_, _ = c.SelectAnswer(qs[2].ID, qs[2].CorrectAnswer) // overwrite

	snap, err := c.Submit()
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Result.Score)
	assert.Equal(t, 50, snap.Result.Percentage)
	assert.Nil(t, snap.Result.Review[3].Selected)
	assert.False(t, snap.Result.Review[3].Correct)
	assert.Equal(t, SaveSkipped, snap.Result.SaveStatus)
}

func TestTimer_AutoSubmitAtZero(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(3)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)

	q := c.questions[0]
	_, err = c.SelectAnswer(q.ID, q.CorrectAnswer)
	require.NoError(t, err)

	tickN(c, 59)
	assert.Equal(t, StateActive, c.Snapshot().State)
	assert.Equal(t, 1, c.Snapshot().RemainingSeconds)

	tickN(c, 1)
	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, 1, snap.Result.Score)
	assert.Equal(t, 3, snap.Result.Total)
	assert.Equal(t, 60, snap.Result.TimeTakenSeconds)
}

func TestTimer_FreezesAtZeroWithoutAutoSubmit(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(2)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(2, 1, false))
	require.NoError(t, err)

	tickN(c, 75)

	snap := c.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 0, snap.RemainingSeconds)
	assert.False(t, snap.TimerRunning)

	snap, err = c.Submit()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, 60, snap.Result.TimeTakenSeconds)
}

func TestTimer_CountdownIsNonIncreasing(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(1, 2, true))
	require.NoError(t, err)

	prev := c.Snapshot().RemainingSeconds
	for i := 0; i < 10; i++ {
		tickN(c, 1)
		cur := c.Snapshot().RemainingSeconds
		assert.Equal(t, prev-1, cur)
		prev = cur
	}
}

func TestTimer_StaleTicksAreInert(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(2)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(2, 1, true))
	require.NoError(t, err)

	c.mu.Lock()
	oldEpoch := c.epoch
	c.mu.Unlock()

	c.Reset()
	assert.False(t, c.tick(oldEpoch))

	_, err = c.Generate(context.Background(), mathSettings(2, 1, true))
	require.NoError(t, err)
	assert.False(t, c.tick(oldEpoch))
	assert.Equal(t, 60, c.Snapshot().RemainingSeconds)
}

func TestTimer_NoDoubleCompletion(t *testing.T) {
	persister := &recordingPersister{}
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, persister)
	_, err := c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)

	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	first, err := c.Advance()
	require.NoError(t, err)
	require.Equal(t, StateCompleted, first.State)

	assert.False(t, c.tick(epoch))
	again := c.Complete()
	assert.Equal(t, first.Result.AttemptID, again.Result.AttemptID)

	_, err = c.Submit()
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))

	assert.Eventually(t, func() bool { return c.Snapshot().Result.SaveStatus == SaveSaved }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, persister.count())
}

func TestTimer_GoroutineDrivesCountdownAndStops(t *testing.T) {
	ticker := &chanTicker{ch: make(chan time.Time)}
	c := New("user-1", &stubGenerator{qs: fixedQuestions(1)}, nil,
		WithTicker(func(time.Duration) Ticker { return ticker }),
		WithLogger(logger.Discard()))

	_, err := c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)

	ticker.ch <- time.Now()
	ticker.ch <- time.Now()
	assert.Eventually(t, func() bool { return c.Snapshot().RemainingSeconds == 58 }, time.Second, 5*time.Millisecond)

	c.Reset()
	assert.Eventually(t, ticker.isStopped, time.Second, 5*time.Millisecond)
}

func TestUntimedQuizUsesWallClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil, WithClock(clock))

	snap, err := c.Generate(context.Background(), mathSettings(1, 0, true))
	require.NoError(t, err)
	assert.False(t, snap.TimerRunning)
	assert.Equal(t, 0, snap.RemainingSeconds)

	now = now.Add(95 * time.Second)
	snap, err = c.Advance()
	require.NoError(t, err)
	assert.Equal(t, 95, snap.Result.TimeTakenSeconds)
}

func TestReset_FromAnyStateYieldsEmptyIdle(t *testing.T) {
	gen := &stubGenerator{qs: fixedQuestions(3)}
	c := newTestController(gen, nil)

	assertEmpty := func(snap Snapshot) {
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, ViewDashboard, snap.View)
		assert.Empty(t, snap.Questions)
		assert.Equal(t, 0, snap.CurrentIndex)
		assert.Empty(t, snap.Answers)
		assert.Nil(t, snap.Result)
		assert.False(t, snap.TimerRunning)
	}

	assertEmpty(c.Reset())

	_, err := c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)
	_, _ = c.SelectAnswer("q-0", 1)
	_, _ = c.Advance()
	assertEmpty(c.Reset())

	_, err = c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)
	_, _ = c.Submit()
	assertEmpty(c.Reset())

	assert.Equal(t, 3, gen.discarded)
}

func TestGenerate_FailureLeavesIdle(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		c := newTestController(&stubGenerator{err: stderrors.New("backend down")}, nil)
		_, err := c.Generate(context.Background(), mathSettings(3, 1, true))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeGenerationFailed))
		snap := c.Snapshot()
		assert.Equal(t, StateIdle, snap.State)
		assert.Empty(t, snap.Questions)
	})

	t.Run("empty result", func(t *testing.T) {
		c := newTestController(&stubGenerator{}, nil)
		_, err := c.Generate(context.Background(), mathSettings(3, 1, true))
		assert.True(t, errors.HasCode(err, errors.ErrCodeGenerationFailed))
		assert.Equal(t, StateIdle, c.Snapshot().State)
	})

	t.Run("non positive count", func(t *testing.T) {
		c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)
		_, err := c.Generate(context.Background(), mathSettings(0, 1, true))
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	})
}

func TestGenerate_RejectsConcurrentGeneration(t *testing.T) {
	gen := &stubGenerator{qs: fixedQuestions(2), block: make(chan struct{})}
	c := newTestController(gen, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), mathSettings(2, 1, true))
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Snapshot().State == StateGenerating }, time.Second, time.Millisecond)

	_, err := c.Generate(context.Background(), mathSettings(2, 1, true))
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))

	close(gen.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateActive, c.Snapshot().State)
}

func TestGenerate_ResetDuringGenerationDiscardsResult(t *testing.T) {
	gen := &stubGenerator{qs: fixedQuestions(2), block: make(chan struct{})}
	c := newTestController(gen, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), mathSettings(2, 1, true))
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Snapshot().State == StateGenerating }, time.Second, time.Millisecond)

	c.Reset()
	close(gen.block)

	assert.True(t, errors.HasCode(<-done, errors.ErrCodeConflict))
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

func TestGenerate_FromCompletedStartsFresh(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)
	first, err := c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)
	_, _ = c.Submit()

	second, err := c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Nil(t, second.Result)
	assert.Equal(t, StateActive, second.State)
}

func TestSelectAnswer_Validation(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(2)}, nil)

	_, err := c.SelectAnswer("q-0", 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict), "not active yet")

	_, err = c.Generate(context.Background(), mathSettings(2, 1, true))
	require.NoError(t, err)

	_, err = c.SelectAnswer("nope", 0)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = c.SelectAnswer("q-0", 4)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = c.SelectAnswer("q-0", -1)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	assert.Empty(t, c.Snapshot().Answers)

	snap, err := c.SelectAnswer("q-1", 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"q-1": 3}, snap.Answers)
}

func TestAdvance_KeepsIndexInBounds(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(3)}, nil)
	_, err := c.Generate(context.Background(), mathSettings(3, 1, true))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		snap, err := c.Advance()
		require.NoError(t, err)
		assert.Equal(t, i+1, snap.CurrentIndex)
		assert.Equal(t, StateActive, snap.State)
		cur, ok := snap.Current()
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("q-%d", i+1), cur.ID)
	}

	snap, err := c.Advance()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, 2, snap.CurrentIndex)

	_, err = c.Advance()
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
}

func TestNavigate(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)

	snap, err := c.Navigate(ViewSettings)
	require.NoError(t, err)
	assert.Equal(t, ViewSettings, snap.View)

	_, err = c.Navigate(ViewQuiz)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	_, err = c.Navigate(ViewResults)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	_, err = c.Navigate(View("profile"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	snap, err = c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)
	assert.Equal(t, ViewQuiz, snap.View)

	_, err = c.Navigate(ViewPerformance)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConflict), "must exit an active quiz first")

	_, _ = c.Submit()
	snap, err = c.Navigate(ViewPerformance)
	require.NoError(t, err)
	assert.Equal(t, ViewPerformance, snap.View)
	assert.NotNil(t, snap.Result, "results survive until reset")

	snap, err = c.Navigate(ViewResults)
	require.NoError(t, err)
	assert.Equal(t, ViewResults, snap.View)
}

func TestSnapshot_HidesAnswersUntilCompleted(t *testing.T) {
	settings := mathSettings(1, 1, true)
	settings.ShowExplanations = false
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)

	snap, err := c.Generate(context.Background(), settings)
	require.NoError(t, err)
	assert.Nil(t, snap.Result)

	snap, _ = c.Submit()
	require.Len(t, snap.Result.Review, 1)
	assert.Equal(t, 0, snap.Result.Review[0].Question.CorrectAnswer)
	assert.Empty(t, snap.Result.Review[0].Question.Explanation)
	assert.Equal(t, "because", c.questions[0].Explanation, "internal copy untouched")
}

func TestRecordSave(t *testing.T) {
	t.Run("failure surfaces a notice", func(t *testing.T) {
		persister := &recordingPersister{err: stderrors.New("db locked")}
		c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, persister)
		_, err := c.Generate(context.Background(), mathSettings(1, 1, true))
		require.NoError(t, err)

		snap, _ := c.Submit()
		assert.Equal(t, StateCompleted, snap.State)

		require.Eventually(t, func() bool { return c.Snapshot().Result.SaveStatus == SaveFailed }, time.Second, 5*time.Millisecond)
		assert.NotEmpty(t, c.Snapshot().Result.Notice)
		assert.Equal(t, 1, c.Snapshot().Result.Total, "results still shown")
	})

	t.Run("stale outcome ignored", func(t *testing.T) {
		c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)
		_, err := c.Generate(context.Background(), mathSettings(1, 1, true))
		require.NoError(t, err)
		snap, _ := c.Submit()

		c.RecordSave("other-session", snap.Result.AttemptID, nil)
		assert.Equal(t, SaveSkipped, c.Snapshot().Result.SaveStatus)
	})
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	c := newTestController(&stubGenerator{qs: fixedQuestions(1)}, nil)
	events, cancel := c.Subscribe()

	_, err := c.Generate(context.Background(), mathSettings(1, 1, true))
	require.NoError(t, err)
	tickN(c, 1)

	var types []EventType
	for len(types) < 4 {
		select {
		case e := <-events:
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", types)
		}
	}
	assert.Equal(t, []EventType{EventState, EventProgress, EventState, EventTick}, types)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("performance")
	assert.True(t, ok)
	assert.Equal(t, ViewPerformance, v)

	_, ok = ParseView("admin")
	assert.False(t, ok)
}
