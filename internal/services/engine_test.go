package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

func newTestSession(balanceUSD float64) *Session {
	sess := &Session{
		ID:      "test-session",
		Balance: NewMemoryBalanceStore(),
		Ledger:  NewMemoryLedger(),
		Stats:   NewStatsTracker(),
	}
	if balanceUSD > 0 {
		sess.Balance.Credit("USD", decimal.NewFromFloat(balanceUSD))
	}
	return sess
}

// newTestEngine wires an engine with the given win rate applied to every
// game and a deterministic random source.
func newTestEngine(t *testing.T, winRate float64, src rng.Source) (*WagerEngine, *SettingsStore, string) {
	t.Helper()
	auth, token := newTestAuth(t)
	store := NewSettingsStore(auth)
	for _, gt := range models.AllGameTypes() {
		if _, err := store.Update(gt, models.GameSettingsPatch{WinRate: &winRate}, token); err != nil {
			t.Fatalf("failed to set win rate for %s: %v", gt, err)
		}
	}
	return NewWagerEngine(store, src, zerolog.Nop()), store, token
}

func diceWager(stake float64, threshold int, direction string) *models.Wager {
	params, _ := json.Marshal(map[string]any{"threshold": threshold, "direction": direction})
	return &models.Wager{
		GameID:   models.GameTypeDice,
		Currency: "USD",
		Stake:    decimal.NewFromFloat(stake),
		Params:   params,
	}
}

func TestPlaceWagerForcedWin(t *testing.T) {
	engine, _, _ := newTestEngine(t, 100, rng.NewSeeded(1))
	sess := newTestSession(100)

	result, err := engine.PlaceWager(sess, diceWager(10, 50, "over"))
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	if !result.Won {
		t.Error("wager at 100% win rate lost")
	}
	if result.Multiplier != 1.98 {
		t.Errorf("multiplier = %v, want 1.98", result.Multiplier)
	}
	if !result.WinAmount.Equal(decimal.NewFromFloat(19.8)) {
		t.Errorf("payout = %s, want 19.8", result.WinAmount)
	}

	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(decimal.NewFromFloat(109.8)) {
		t.Errorf("balance = %s, want 109.8", bal)
	}
}

func TestPlaceWagerForcedLoss(t *testing.T) {
	engine, _, _ := newTestEngine(t, 0, rng.NewSeeded(1))
	sess := newTestSession(100)

	result, err := engine.PlaceWager(sess, diceWager(10, 50, "over"))
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	if result.Won {
		t.Error("wager at 0% win rate won")
	}
	if !result.WinAmount.IsZero() {
		t.Errorf("losing payout = %s, want 0", result.WinAmount)
	}

	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(decimal.NewFromInt(90)) {
		t.Errorf("balance = %s, want 90", bal)
	}
}

func TestPlaceWagerInsufficientFunds(t *testing.T) {
	engine, _, _ := newTestEngine(t, 50, rng.NewSeeded(1))
	sess := newTestSession(5)

	_, err := engine.PlaceWager(sess, diceWager(10, 50, "over"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}

	// A rejected wager leaves no trace.
	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(decimal.NewFromInt(5)) {
		t.Errorf("balance after rejection = %s, want 5", bal)
	}
	history, _ := sess.Ledger.All()
	if len(history) != 0 {
		t.Errorf("rejected wager appended %d ledger entries", len(history))
	}
}

func TestPlaceWagerDisabledGame(t *testing.T) {
	engine, store, token := newTestEngine(t, 50, rng.NewSeeded(1))
	sess := newTestSession(100)

	if _, err := store.Update(models.GameTypeDice, models.GameSettingsPatch{Enabled: boolPtr(false)}, token); err != nil {
		t.Fatalf("failed to disable dice: %v", err)
	}

	// Rejection is idempotent: repeated attempts mutate nothing.
	for i := 0; i < 3; i++ {
		_, err := engine.PlaceWager(sess, diceWager(10, 50, "over"))
		if !errors.Is(err, ErrGameDisabled) {
			t.Fatalf("attempt %d: error = %v, want ErrGameDisabled", i, err)
		}
	}

	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", bal)
	}
}

func TestPlaceWagerStakeBounds(t *testing.T) {
	engine, _, _ := newTestEngine(t, 50, rng.NewSeeded(1))
	sess := newTestSession(100000)

	if _, err := engine.PlaceWager(sess, diceWager(0.05, 50, "over")); !errors.Is(err, ErrStakeOutOfRange) {
		t.Errorf("below-min stake error = %v, want ErrStakeOutOfRange", err)
	}
	if _, err := engine.PlaceWager(sess, diceWager(1001, 50, "over")); !errors.Is(err, ErrStakeOutOfRange) {
		t.Errorf("above-max stake error = %v, want ErrStakeOutOfRange", err)
	}
}

func TestPlaceWagerRollsBackOnRuleFault(t *testing.T) {
	engine, _, _ := newTestEngine(t, 50, rng.NewSeeded(1))
	sess := newTestSession(100)

	// Bets that pass per-bet validation but whose sum disagrees with the
	// stake fail inside resolution, after the debit.
	params, _ := json.Marshal(map[string]any{"bets": map[string]float64{"red": 3}})
	w := &models.Wager{
		GameID:   models.GameTypeRoulette,
		Currency: "USD",
		Stake:    decimal.NewFromInt(10),
		Params:   params,
	}

	_, err := engine.PlaceWager(sess, w)
	if !errors.Is(err, ErrEngineFault) {
		t.Fatalf("error = %v, want ErrEngineFault", err)
	}

	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after rollback = %s, want 100", bal)
	}
	history, _ := sess.Ledger.All()
	if len(history) != 0 {
		t.Errorf("faulted wager appended %d ledger entries", len(history))
	}
}

func TestPlaceWagerConservation(t *testing.T) {
	engine, _, _ := newTestEngine(t, 45, rng.NewSeeded(7))
	sess := newTestSession(10000)

	start := decimal.NewFromInt(10000)
	for i := 0; i < 500; i++ {
		if _, err := engine.PlaceWager(sess, diceWager(1, 50, "over")); err != nil {
			t.Fatalf("wager %d failed: %v", i, err)
		}
	}

	// Balance must equal start - sum(stakes) + sum(payouts) exactly.
	history, _ := sess.Ledger.All()
	expected := start
	for _, r := range history {
		expected = expected.Sub(r.BetAmount).Add(r.WinAmount)
	}
	bal, _ := sess.Balance.Get("USD")
	if !bal.Equal(expected) {
		t.Errorf("balance = %s, ledger implies %s", bal, expected)
	}
	if len(history) != 500 {
		t.Errorf("ledger has %d entries, want 500", len(history))
	}
}

func TestBiasConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping frequency test in short mode")
	}

	const n = 100000
	const winRate = 45.0
	engine, _, _ := newTestEngine(t, winRate, rng.NewSeeded(42))
	sess := newTestSession(2 * n)

	wins := 0
	for i := 0; i < n; i++ {
		result, err := engine.PlaceWager(sess, diceWager(1, 50, "over"))
		if err != nil {
			t.Fatalf("wager %d failed: %v", i, err)
		}
		if result.Won {
			wins++
		}
	}

	observed := float64(wins) / n * 100
	if observed < winRate-1 || observed > winRate+1 {
		t.Errorf("observed win rate %.2f%%, want %.0f%% +/- 1", observed, winRate)
	}
}

func TestStatsMatchLedger(t *testing.T) {
	engine, _, _ := newTestEngine(t, 45, rng.NewSeeded(3))
	sess := newTestSession(1000)

	for i := 0; i < 50; i++ {
		if _, err := engine.PlaceWager(sess, diceWager(2, 50, "over")); err != nil {
			t.Fatalf("wager %d failed: %v", i, err)
		}
	}

	recomputed, err := RecomputeFrom(sess.Ledger)
	if err != nil {
		t.Fatalf("RecomputeFrom failed: %v", err)
	}
	if !sess.Stats.Snapshot().Equal(recomputed) {
		t.Errorf("incremental stats %+v diverge from ledger %+v", sess.Stats.Snapshot(), recomputed)
	}
}

func TestMaxPayoutClamp(t *testing.T) {
	engine, store, token := newTestEngine(t, 100, rng.NewSeeded(1))
	sess := newTestSession(1000)

	if _, err := store.Update(models.GameTypeDice, models.GameSettingsPatch{MaxPayout: decPtr(50)}, token); err != nil {
		t.Fatalf("failed to lower max payout: %v", err)
	}

	// A 95-threshold over bet pays 19.8x; on a 10 USD stake the raw payout
	// of 198 must be capped at 50.
	result, err := engine.PlaceWager(sess, diceWager(10, 95, "over"))
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	if !result.WinAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("clamped payout = %s, want 50", result.WinAmount)
	}
	if result.Multiplier != 5 {
		t.Errorf("multiplier after clamp = %v, want 5", result.Multiplier)
	}
}

func TestDepositWithdraw(t *testing.T) {
	engine, _, _ := newTestEngine(t, 50, rng.NewSeeded(1))
	sess := newTestSession(0)

	bal, err := engine.Deposit(sess, "USD", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("balance after deposit = %s, want 200", bal)
	}

	bal, err = engine.Withdraw(sess, "USD", decimal.NewFromInt(80))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(120)) {
		t.Errorf("balance after withdrawal = %s, want 120", bal)
	}

	if _, err := engine.Withdraw(sess, "USD", decimal.NewFromInt(500)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdraft withdrawal error = %v, want ErrInsufficientFunds", err)
	}
	if _, err := engine.Deposit(sess, "USD", decimal.NewFromInt(-5)); !errors.Is(err, ErrValidation) {
		t.Errorf("negative deposit error = %v, want ErrValidation", err)
	}
	if _, err := engine.Deposit(sess, "XYZ", decimal.NewFromInt(5)); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown currency deposit error = %v, want ErrValidation", err)
	}
}
