package questions

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

// ProgressFunc receives generation progress in percent with a short stage label.
type ProgressFunc func(percent int, stage string)

// Generator produces question sets for a quiz session. Provider is the static
// implementation; a generative backend can replace it.
type Generator interface {
	Generate(ctx context.Context, subject, difficulty string, count int, progress ProgressFunc) ([]models.Question, error)
	// DiscardSession forgets what was served in the current session.
	DiscardSession()
}

var _ Generator = (*Provider)(nil)

// Provider serves deduplicated question sets from a Bank. It remembers what it
// served in two logs: the current session and the user's lifetime.
type Provider struct {
	bank     *Bank
	lifetime *History

	mu      sync.Mutex
	session *History
	rng     *rand.Rand
	newID   func() string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithRand fixes the source used for placeholder answers.
func WithRand(r *rand.Rand) ProviderOption {
	return func(p *Provider) { p.rng = r }
}

// WithIDFunc replaces the instance id generator.
func WithIDFunc(fn func() string) ProviderOption {
	return func(p *Provider) { p.newID = fn }
}

func NewProvider(bank *Bank, session, lifetime *History, opts ...ProviderOption) *Provider {
	if session == nil {
		session = NewHistory()
	}
	if lifetime == nil {
		lifetime = NewHistory()
	}
	p := &Provider{
		bank:     bank,
		session:  session,
		lifetime: lifetime,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session returns the current session log.
func (p *Provider) Session() *History {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Lifetime returns the lifetime log.
func (p *Provider) Lifetime() *History {
	return p.lifetime
}

// DiscardSession drops the session log and starts an empty one. The lifetime
// log is untouched.
func (p *Provider) DiscardSession() {
	p.mu.Lock()
	p.session = NewHistory()
	p.mu.Unlock()
}

// Provide returns up to count questions for subject/difficulty. It never fails:
// unknown subjects and empty buckets are served with placeholders.
func (p *Provider) Provide(subject, difficulty string, count int) []models.Question {
	if count <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	log := logger.Default().WithPrefix("questions")
	difficulty = models.NormalizeDifficulty(difficulty)

	candidates := p.candidates(subject, difficulty, count)

	seen := make(map[string]struct{})
	p.session.addPrompts(seen)
	p.lifetime.addPrompts(seen)

	unique := make([]models.Question, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Prompt]; !dup {
			unique = append(unique, c)
		}
	}
	if len(unique) == 0 {
		// Everything was served before. Repeat rather than hand back an empty quiz.
		log.Warn("all %d candidates for %s/%s already served, relaxing duplicate filter", len(candidates), subject, difficulty)
		unique = candidates
	}

	out := make([]models.Question, 0, count)
	for i := 0; i < count && len(unique) > 0; i++ {
		q := unique[i%len(unique)].Clone()
		q.ID = fmt.Sprintf("%s-%s", q.ID, p.newID())
		out = append(out, q)
	}

	// Logged only after the set is built so a call never dedups against itself.
	p.session.Append(out...)
	p.lifetime.Append(out...)

	log.Debug("served %d questions for %s/%s (%d unique templates)", len(out), subject, difficulty, len(unique))
	return out
}

// Generate wraps Provide with staged progress reporting and honours ctx.
func (p *Provider) Generate(ctx context.Context, subject, difficulty string, count int, progress ProgressFunc) ([]models.Question, error) {
	report := func(pct int, stage string) {
		if progress != nil {
			progress(pct, stage)
		}
	}

	report(25, "Preparing quiz generation...")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report(75, "Generating questions...")
	qs := p.Provide(subject, difficulty, count)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report(100, "Quiz generation complete!")
	return qs, nil
}

func (p *Provider) candidates(subject, difficulty string, count int) []models.Question {
	if !p.bank.HasSubject(subject) {
		return p.dynamicPlaceholders(subject, difficulty, count)
	}

	bucket := p.bank.Bucket(subject, difficulty)
	if len(bucket) == 0 {
		bucket = p.bank.Bucket(subject, models.DifficultyIntermediate)
	}
	if len(bucket) == 0 {
		return []models.Question{genericPlaceholder(subject, difficulty)}
	}
	return bucket
}

func (p *Provider) dynamicPlaceholders(subject, difficulty string, count int) []models.Question {
	out := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, models.Question{
			ID:     fmt.Sprintf("fallback-%s-%s-%d", subject, difficulty, i),
			Prompt: fmt.Sprintf("What is an important concept in %s?", subject),
			Options: []string{
				fmt.Sprintf("Basic %s principle", subject),
				fmt.Sprintf("Advanced %s theory", subject),
				fmt.Sprintf("Fundamental %s law", subject),
				fmt.Sprintf("Core %s concept", subject),
			},
			CorrectAnswer: p.rng.Intn(models.OptionCount),
			Explanation:   fmt.Sprintf("This is a %s level question about %s.", difficulty, subject),
			Subject:       subject,
			Difficulty:    difficulty,
		})
	}
	return out
}

func genericPlaceholder(subject, difficulty string) models.Question {
	return models.Question{
		ID:            fmt.Sprintf("fallback-%s-%s", subject, difficulty),
		Prompt:        fmt.Sprintf("What is a key principle in %s?", subject),
		Options:       []string{"Option A", "Option B", "Option C", "Option D"},
		CorrectAnswer: 0,
		Explanation:   fmt.Sprintf("This is a %s level question about %s.", difficulty, subject),
		Subject:       subject,
		Difficulty:    difficulty,
	}
}
