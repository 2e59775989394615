package services

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceStore holds per-currency balances for one session. Only the wager
// engine and explicit deposit/withdraw operations mutate it; implementations
// rely on the session lock for mutual exclusion between debit and credit.
type BalanceStore interface {
	Get(currency string) (decimal.Decimal, error)
	Credit(currency string, amount decimal.Decimal) error
	Debit(currency string, amount decimal.Decimal) error
}

// memoryBalanceStore is the guest-session scope: balances live only as
// long as the process.
type memoryBalanceStore struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

func NewMemoryBalanceStore() BalanceStore {
	return &memoryBalanceStore{balances: make(map[string]decimal.Decimal)}
}

func (s *memoryBalanceStore) Get(currency string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bal, ok := s.balances[currency]; ok {
		return bal, nil
	}
	return decimal.Zero, nil
}

func (s *memoryBalanceStore) Credit(currency string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: credit amount must not be negative", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[currency] = s.balances[currency].Add(amount)
	return nil
}

func (s *memoryBalanceStore) Debit(currency string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: debit amount must not be negative", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.balances[currency]
	if current.LessThan(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, current, amount)
	}
	s.balances[currency] = current.Sub(amount)
	return nil
}
