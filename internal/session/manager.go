package session

import (
	"sync"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/questions"
)

// Manager hands out one Controller per user. Each controller gets its own
// session history and the user's lifetime history from the shared Library.
type Manager struct {
	bank      *questions.Bank
	library   *questions.Library
	persister Persister
	opts      []Option

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewManager(bank *questions.Bank, library *questions.Library, persister Persister, opts ...Option) *Manager {
	if library == nil {
		library = questions.NewLibrary()
	}
	return &Manager{
		bank:        bank,
		library:     library,
		persister:   persister,
		opts:        opts,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the user's controller, creating it on first use.
func (m *Manager) Get(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[userID]; ok {
		return c
	}
	provider := questions.NewProvider(m.bank, questions.NewHistory(), m.library.Lifetime(userID))
	c := New(userID, provider, m.persister, m.opts...)
	m.controllers[userID] = c
	logger.Default().WithPrefix("session").Debug("created controller for user %s", userID)
	return c
}

// Reset resets the user's session if one exists.
func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	c, ok := m.controllers[userID]
	m.mu.Unlock()
	if ok {
		c.Reset()
	}
}

// Close resets every session, stopping all timers.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		all = append(all, c)
	}
	m.mu.Unlock()

	for _, c := range all {
		c.Reset()
	}
}
