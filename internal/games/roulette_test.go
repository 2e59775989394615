package games

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

func rouletteWager(stake float64, bets map[string]float64) *models.Wager {
	decBets := make(map[string]decimal.Decimal, len(bets))
	for k, v := range bets {
		decBets[k] = decimal.NewFromFloat(v)
	}
	params, _ := json.Marshal(RouletteParams{Bets: decBets})
	return &models.Wager{
		GameID:   models.GameTypeRoulette,
		Currency: "USD",
		Stake:    decimal.NewFromFloat(stake),
		Params:   params,
	}
}

func TestRoulettePayoutForPocket(t *testing.T) {
	// Pocket 10 is black and even: red loses, even pays 2x.
	bets := map[string]decimal.Decimal{
		RouletteBetRed:  decimal.NewFromInt(10),
		RouletteBetEven: decimal.NewFromInt(5),
	}
	if got := roulettePayout(bets, 10); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("payout for pocket 10 = %s, want 10", got)
	}

	// Pocket 12 is red and even: both pay.
	if got := roulettePayout(bets, 12); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("payout for pocket 12 = %s, want 30", got)
	}

	// Zero is green and loses everything.
	if got := roulettePayout(bets, 0); got.Sign() != 0 {
		t.Errorf("payout for pocket 0 = %s, want 0", got)
	}
}

func TestRouletteBetWins(t *testing.T) {
	tests := []struct {
		betType string
		pocket  int
		want    bool
	}{
		{RouletteBetRed, 1, true},
		{RouletteBetRed, 2, false},
		{RouletteBetBlack, 2, true},
		{RouletteBetEven, 10, true},
		{RouletteBetOdd, 10, false},
		{RouletteBetLow, 18, true},
		{RouletteBetLow, 19, false},
		{RouletteBetHigh, 19, true},
		{RouletteBetRed, 0, false},
		{RouletteBetEven, 0, false},
	}

	for _, tt := range tests {
		if got := rouletteBetWins(tt.betType, tt.pocket); got != tt.want {
			t.Errorf("rouletteBetWins(%s, %d) = %v, want %v", tt.betType, tt.pocket, got, tt.want)
		}
	}
}

func TestRouletteForcedClasses(t *testing.T) {
	rule := &RouletteRule{}
	src := rng.NewSeeded(11)
	settings := models.DefaultSettings(models.GameTypeRoulette)
	w := rouletteWager(15, map[string]float64{RouletteBetRed: 10, RouletteBetEven: 5})

	for i := 0; i < 500; i++ {
		out, err := rule.Resolve(w, settings, true, src)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !out.Won || !out.Payout.GreaterThan(w.Stake) {
			t.Fatalf("forced win produced payout %s on stake %s", out.Payout, w.Stake)
		}
	}

	for i := 0; i < 500; i++ {
		out, err := rule.Resolve(w, settings, false, src)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if out.Won || out.Payout.GreaterThan(w.Stake) {
			t.Fatalf("forced loss produced payout %s on stake %s", out.Payout, w.Stake)
		}
	}
}

func TestRouletteStakeMismatch(t *testing.T) {
	rule := &RouletteRule{}
	settings := models.DefaultSettings(models.GameTypeRoulette)

	w := rouletteWager(100, map[string]float64{RouletteBetRed: 10})
	if _, err := rule.Resolve(w, settings, true, rng.NewSeeded(4)); err == nil {
		t.Error("expected error when stake does not match sum of bets")
	}
}

func TestRouletteValidateParams(t *testing.T) {
	rule := &RouletteRule{}

	tests := []struct {
		name    string
		bets    map[string]float64
		wantErr bool
	}{
		{"single bet", map[string]float64{RouletteBetRed: 10}, false},
		{"several bets", map[string]float64{RouletteBetBlack: 1, RouletteBetOdd: 2, RouletteBetHigh: 3}, false},
		{"no bets", map[string]float64{}, true},
		{"unknown type", map[string]float64{"straight_17": 10}, true},
		{"non-positive bet", map[string]float64{RouletteBetRed: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := rouletteWager(10, tt.bets)
			err := rule.ValidateParams(w.Params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
