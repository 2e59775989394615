package games

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

func diceWager(stake float64, direction string, threshold int) *models.Wager {
	params, _ := json.Marshal(DiceParams{Direction: direction, Threshold: threshold})
	return &models.Wager{
		GameID:   models.GameTypeDice,
		Currency: "USD",
		Stake:    decimal.NewFromFloat(stake),
		Params:   params,
	}
}

func TestDiceValidateParams(t *testing.T) {
	rule := &DiceRule{}

	tests := []struct {
		name      string
		direction string
		threshold int
		wantErr   bool
	}{
		{"over mid", DiceDirectionOver, 50, false},
		{"over max", DiceDirectionOver, 99, false},
		{"under min winnable", DiceDirectionUnder, 2, false},
		{"under unwinnable", DiceDirectionUnder, 1, true},
		{"threshold too low", DiceDirectionOver, 0, true},
		{"threshold too high", DiceDirectionOver, 100, true},
		{"bad direction", "sideways", 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := diceWager(10, tt.direction, tt.threshold)
			err := rule.ValidateParams(w.Params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiceForcedWinOver50(t *testing.T) {
	rule := &DiceRule{}
	src := rng.NewSeeded(1)
	settings := models.DefaultSettings(models.GameTypeDice)

	for i := 0; i < 1000; i++ {
		out, err := rule.Resolve(diceWager(10, DiceDirectionOver, 50), settings, true, src)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !out.Won {
			t.Fatal("forced win resolved as loss")
		}

		detail := out.Detail.(DiceDetail)
		if detail.Roll <= 50 || detail.Roll > 100 {
			t.Fatalf("forced win roll %d outside (50, 100]", detail.Roll)
		}
		if out.Multiplier != 1.98 {
			t.Fatalf("multiplier = %v, want 1.98", out.Multiplier)
		}
		if !out.Payout.Equal(decimal.NewFromFloat(19.8)) {
			t.Fatalf("payout = %s, want 19.8", out.Payout)
		}
	}
}

func TestDiceForcedLossRanges(t *testing.T) {
	rule := &DiceRule{}
	src := rng.NewSeeded(2)
	settings := models.DefaultSettings(models.GameTypeDice)

	for i := 0; i < 1000; i++ {
		out, err := rule.Resolve(diceWager(5, DiceDirectionUnder, 30), settings, false, src)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if out.Won {
			t.Fatal("forced loss resolved as win")
		}

		detail := out.Detail.(DiceDetail)
		if detail.Roll < 30 || detail.Roll > 100 {
			t.Fatalf("forced loss roll %d outside [30, 100]", detail.Roll)
		}
		if out.Payout.Sign() != 0 {
			t.Fatalf("losing payout = %s, want 0", out.Payout)
		}
	}
}

func TestDiceMultiplierFormula(t *testing.T) {
	rule := &DiceRule{}
	settings := models.DefaultSettings(models.GameTypeDice)

	tests := []struct {
		direction string
		threshold int
		want      float64
	}{
		{DiceDirectionOver, 50, 99.0 / 50},
		{DiceDirectionOver, 90, 99.0 / 10},
		{DiceDirectionUnder, 25, 99.0 / 25},
		{DiceDirectionUnder, 99, 99.0 / 99},
	}

	for _, tt := range tests {
		out, err := rule.Resolve(diceWager(1, tt.direction, tt.threshold), settings, true, rng.NewSeeded(3))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if out.Multiplier != tt.want {
			t.Errorf("%s %d: multiplier = %v, want %v", tt.direction, tt.threshold, out.Multiplier, tt.want)
		}
	}
}
