package games

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

const (
	DiceDirectionOver  = "over"
	DiceDirectionUnder = "under"
)

type DiceParams struct {
	Direction string `json:"direction"`
	Threshold int    `json:"threshold"`
}

type DiceDetail struct {
	Roll      int    `json:"roll"`
	Threshold int    `json:"threshold"`
	Direction string `json:"direction"`
}

// DiceRule rolls an integer 1..100. Over wins strictly above the threshold,
// under wins strictly below it. Multiplier is 99/winChanceUnits, so the
// house keeps one unit of the hundred.
type DiceRule struct{}

func (r *DiceRule) GameType() models.GameType { return models.GameTypeDice }

func (r *DiceRule) ValidateParams(params json.RawMessage) error {
	var p DiceParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if p.Direction != DiceDirectionOver && p.Direction != DiceDirectionUnder {
		return fmt.Errorf("direction must be %q or %q", DiceDirectionOver, DiceDirectionUnder)
	}
	if p.Threshold < 1 || p.Threshold > 99 {
		return fmt.Errorf("threshold must be between 1 and 99, got %d", p.Threshold)
	}
	// Under 1 can never win: rolls are 1..100 and the win is strict.
	if p.Direction == DiceDirectionUnder && p.Threshold == 1 {
		return fmt.Errorf("under 1 has no winning roll")
	}
	return nil
}

func (r *DiceRule) Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error) {
	var p DiceParams
	if err := decodeParams(w.Params, &p); err != nil {
		return nil, err
	}
	if err := r.ValidateParams(w.Params); err != nil {
		return nil, err
	}

	winChanceUnits := p.Threshold
	if p.Direction == DiceDirectionOver {
		winChanceUnits = 100 - p.Threshold
	}
	multiplier := 99.0 / float64(winChanceUnits)

	// The winning and losing roll ranges partition 1..100, so the forced
	// class is sampled directly.
	var roll int
	switch {
	case p.Direction == DiceDirectionOver && forceWin:
		roll = src.IntN(p.Threshold+1, 100)
	case p.Direction == DiceDirectionOver:
		roll = src.IntN(1, p.Threshold)
	case forceWin: // under
		roll = src.IntN(1, p.Threshold-1)
	default: // under, loss
		roll = src.IntN(p.Threshold, 100)
	}

	won := roll > p.Threshold
	if p.Direction == DiceDirectionUnder {
		won = roll < p.Threshold
	}

	out := &Outcome{
		Won:    won,
		Payout: decimal.Zero,
		Detail: DiceDetail{Roll: roll, Threshold: p.Threshold, Direction: p.Direction},
	}
	if won {
		out.Multiplier = multiplier
		out.Payout = w.Stake.Mul(decimal.NewFromFloat(multiplier))
	}
	return out, nil
}
