package questions

import (
	"sync"

	"github.com/vytor/quizflash/internal/models"
)

// History is an append-only log of served questions.
type History struct {
	mu      sync.RWMutex
	records []models.HistoryRecord
}

func NewHistory() *History {
	return &History{}
}

// Append records every question in order.
func (h *History) Append(qs ...models.Question) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, q := range qs {
		h.records = append(h.records, q.Record())
	}
}

// Records returns a copy of the log.
func (h *History) Records() []models.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.HistoryRecord(nil), h.records...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

func (h *History) addPrompts(into map[string]struct{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.records {
		into[r.Prompt] = struct{}{}
	}
}

// Library owns the lifetime history logs, one per user, for as long as the
// process runs. Create exactly one at startup and share it.
type Library struct {
	mu   sync.Mutex
	logs map[string]*History
}

func NewLibrary() *Library {
	return &Library{logs: make(map[string]*History)}
}

// Lifetime returns the user's lifetime log, creating it on first use.
func (l *Library) Lifetime(userID string) *History {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.logs[userID]
	if !ok {
		h = NewHistory()
		l.logs[userID] = h
	}
	return h
}
