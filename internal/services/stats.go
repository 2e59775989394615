package services

import (
	"sync"

	"github.com/pphilfre/stake-sub000/internal/models"
)

// StatsTracker maintains AggregateStats incrementally. The stats are never
// authoritative: RecomputeFrom must reproduce them from the ledger exactly.
type StatsTracker struct {
	mu    sync.RWMutex
	stats models.AggregateStats
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{stats: models.NewAggregateStats()}
}

func (t *StatsTracker) Record(r *models.GameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Record(r)
}

func (t *StatsTracker) Snapshot() models.AggregateStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}

// RecomputeFrom rebuilds stats from the full result stream.
func RecomputeFrom(ledger ResultLedger) (models.AggregateStats, error) {
	results, err := ledger.All()
	if err != nil {
		return models.AggregateStats{}, err
	}
	stats := models.NewAggregateStats()
	for _, r := range results {
		stats.Record(r)
	}
	return stats, nil
}
