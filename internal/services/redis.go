package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/config"
	"github.com/pphilfre/stake-sub000/internal/models"
)

// RedisService backs the persisted-account scope: balances and ledgers for
// sessions that should outlive the process. Guest sessions use the
// in-memory stores instead; the engine never knows the difference.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client, ctx: ctx}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// BalanceStore returns a redis-backed balance store scoped to a session.
// Mutations are serialized by the session lock, so plain read-modify-write
// against the session's own keys is race-free.
func (s *RedisService) BalanceStore(sessionID string) BalanceStore {
	return &redisBalanceStore{svc: s, sessionID: sessionID}
}

// Ledger returns a redis-backed result ledger scoped to a session.
func (s *RedisService) Ledger(sessionID string) ResultLedger {
	return &redisLedger{svc: s, sessionID: sessionID}
}

type redisBalanceStore struct {
	svc       *RedisService
	sessionID string
}

func (s *redisBalanceStore) key(currency string) string {
	return fmt.Sprintf(KeyBalance, s.sessionID, currency)
}

func (s *redisBalanceStore) Get(currency string) (decimal.Decimal, error) {
	data, err := s.svc.client.Get(s.svc.ctx, s.key(currency)).Result()
	if err == redis.Nil {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %v", err)
	}
	bal, err := decimal.NewFromString(data)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance for %s: %v", currency, err)
	}
	return bal, nil
}

func (s *redisBalanceStore) Credit(currency string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: credit amount must not be negative", ErrValidation)
	}
	current, err := s.Get(currency)
	if err != nil {
		return err
	}
	return s.set(currency, current.Add(amount))
}

func (s *redisBalanceStore) Debit(currency string, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: debit amount must not be negative", ErrValidation)
	}
	current, err := s.Get(currency)
	if err != nil {
		return err
	}
	if current.LessThan(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, current, amount)
	}
	return s.set(currency, current.Sub(amount))
}

func (s *redisBalanceStore) set(currency string, balance decimal.Decimal) error {
	return s.svc.client.Set(s.svc.ctx, s.key(currency), balance.String(), TTLSession).Err()
}

type redisLedger struct {
	svc       *RedisService
	sessionID string
}

func (l *redisLedger) key() string {
	return fmt.Sprintf(KeySessionLedger, l.sessionID)
}

func (l *redisLedger) Append(r *models.GameResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	pipe := l.svc.client.TxPipeline()
	pipe.LPush(l.svc.ctx, l.key(), data)
	pipe.Expire(l.svc.ctx, l.key(), TTLSession)
	_, err = pipe.Exec(l.svc.ctx)
	return err
}

func (l *redisLedger) Recent(n int) ([]*models.GameResult, error) {
	items, err := l.svc.client.LRange(l.svc.ctx, l.key(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	return decodeResults(items)
}

func (l *redisLedger) All() ([]*models.GameResult, error) {
	items, err := l.svc.client.LRange(l.svc.ctx, l.key(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	results, err := decodeResults(items)
	if err != nil {
		return nil, err
	}
	// The list is most-recent-first; All is oldest-first.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

func decodeResults(items []string) ([]*models.GameResult, error) {
	results := make([]*models.GameResult, 0, len(items))
	for _, item := range items {
		var r models.GameResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("corrupt ledger entry: %v", err)
		}
		results = append(results, &r)
	}
	return results, nil
}
