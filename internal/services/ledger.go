package services

import (
	"sync"

	"github.com/pphilfre/stake-sub000/internal/models"
)

// ResultLedger is the append-only history of resolved wagers for one
// session. No update or delete; the recent-N cap for UI display is a
// presentation concern applied at read time.
type ResultLedger interface {
	Append(r *models.GameResult) error
	// Recent returns up to n results, most recent first.
	Recent(n int) ([]*models.GameResult, error)
	// All returns the full history, oldest first.
	All() ([]*models.GameResult, error)
}

type memoryLedger struct {
	mu      sync.RWMutex
	results []*models.GameResult
}

func NewMemoryLedger() ResultLedger {
	return &memoryLedger{}
}

func (l *memoryLedger) Append(r *models.GameResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
	return nil
}

func (l *memoryLedger) Recent(n int) ([]*models.GameResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n > len(l.results) {
		n = len(l.results)
	}
	out := make([]*models.GameResult, n)
	for i := 0; i < n; i++ {
		out[i] = l.results[len(l.results)-1-i]
	}
	return out, nil
}

func (l *memoryLedger) All() ([]*models.GameResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*models.GameResult, len(l.results))
	copy(out, l.results)
	return out, nil
}
