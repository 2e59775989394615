package services

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
)

// Session scopes a balance store and result ledger to one user. The mutex
// serializes every wager and balance mutation for the session: no second
// wager, deposit or withdrawal may interleave between a wager's debit and
// credit. Cross-session operations need no coordination.
type Session struct {
	ID      string
	mu      sync.Mutex
	Balance BalanceStore
	Ledger  ResultLedger
	Stats   *StatsTracker
}

// SessionManager hands out sessions. With a redis backend attached,
// sessions are account-scoped and survive restarts; otherwise they are
// guest sessions living in process memory.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	redis    *RedisService
	starting decimal.Decimal
	log      zerolog.Logger
}

func NewSessionManager(redis *RedisService, startingBalance float64, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		redis:    redis,
		starting: decimal.NewFromFloat(startingBalance),
		log:      log.With().Str("component", "sessions").Logger(),
	}
}

// Get returns the session for an id, creating it on first use. Fresh
// sessions are seeded with the starting USD balance.
func (m *SessionManager) Get(id string) *Session {
	if id == "" {
		id = models.GenerateSessionID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess
	}

	sess := &Session{ID: id}
	if m.redis != nil {
		sess.Balance = m.redis.BalanceStore(id)
		sess.Ledger = m.redis.Ledger(id)
	} else {
		sess.Balance = NewMemoryBalanceStore()
		sess.Ledger = NewMemoryLedger()
	}
	sess.Stats = NewStatsTracker()

	m.seed(sess)
	m.sessions[id] = sess
	return sess
}

func (m *SessionManager) seed(sess *Session) {
	if m.starting.Sign() <= 0 {
		return
	}
	bal, err := sess.Balance.Get("USD")
	if err != nil || bal.Sign() > 0 {
		return
	}
	// Only genuinely fresh sessions get the welcome balance.
	if history, err := sess.Ledger.Recent(1); err != nil || len(history) > 0 {
		return
	}
	if err := sess.Balance.Credit("USD", m.starting); err != nil {
		m.log.Error().Err(err).Str("session", sess.ID).Msg("welcome credit failed")
	}
}
