package games

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

// European wheel red pockets. Zero is green; everything else is black.
var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

const (
	RouletteBetRed   = "red"
	RouletteBetBlack = "black"
	RouletteBetEven  = "even"
	RouletteBetOdd   = "odd"
	RouletteBetLow   = "low"  // 1-18
	RouletteBetHigh  = "high" // 19-36
)

// All listed bet types pay even money.
const rouletteBetMultiplier = 2.0

type RouletteParams struct {
	Bets map[string]decimal.Decimal `json:"bets"`
}

type RouletteDetail struct {
	Pocket     int                        `json:"pocket"`
	Color      string                     `json:"color"`
	WinningBet map[string]decimal.Decimal `json:"winning_bets,omitempty"`
}

// RouletteRule spins once and settles every sub-bet against the single
// pocket. The round counts as won when total payout exceeds total stake.
type RouletteRule struct{}

func (r *RouletteRule) GameType() models.GameType { return models.GameTypeRoulette }

func (r *RouletteRule) ValidateParams(params json.RawMessage) error {
	var p RouletteParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	if len(p.Bets) == 0 {
		return fmt.Errorf("at least one bet is required")
	}
	for betType, amount := range p.Bets {
		switch betType {
		case RouletteBetRed, RouletteBetBlack, RouletteBetEven, RouletteBetOdd, RouletteBetLow, RouletteBetHigh:
		default:
			return fmt.Errorf("unknown bet type: %s", betType)
		}
		if amount.Sign() <= 0 {
			return fmt.Errorf("bet on %s must be positive", betType)
		}
	}
	return nil
}

func (r *RouletteRule) Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error) {
	var p RouletteParams
	if err := decodeParams(w.Params, &p); err != nil {
		return nil, err
	}
	if err := r.ValidateParams(w.Params); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, amount := range p.Bets {
		total = total.Add(amount)
	}
	if !total.Equal(w.Stake) {
		return nil, fmt.Errorf("stake %s does not match sum of bets %s", w.Stake, total)
	}

	// The pocket space is small enough to enumerate, so the forced class is
	// sampled uniformly over qualifying pockets. A class can be empty (e.g.
	// red and black covered together never beat the combined stake), in
	// which case the draw falls back to the full wheel.
	var winning, losing []int
	for pocket := 0; pocket <= 36; pocket++ {
		if roulettePayout(p.Bets, pocket).GreaterThan(total) {
			winning = append(winning, pocket)
		} else {
			losing = append(losing, pocket)
		}
	}

	var pocket int
	switch {
	case forceWin && len(winning) > 0:
		pocket = winning[src.IntN(0, len(winning)-1)]
	case !forceWin && len(losing) > 0:
		pocket = losing[src.IntN(0, len(losing)-1)]
	default:
		pocket = src.IntN(0, 36)
	}

	payout := roulettePayout(p.Bets, pocket)
	winners := make(map[string]decimal.Decimal)
	for betType, amount := range p.Bets {
		if rouletteBetWins(betType, pocket) {
			winners[betType] = amount.Mul(decimal.NewFromFloat(rouletteBetMultiplier))
		}
	}

	multiplier := 0.0
	if w.Stake.Sign() > 0 {
		multiplier = payout.Div(w.Stake).InexactFloat64()
	}

	return &Outcome{
		Won:        payout.GreaterThan(total),
		Multiplier: multiplier,
		Payout:     payout,
		Detail: RouletteDetail{
			Pocket:     pocket,
			Color:      RouletteColor(pocket),
			WinningBet: winners,
		},
	}, nil
}

func roulettePayout(bets map[string]decimal.Decimal, pocket int) decimal.Decimal {
	payout := decimal.Zero
	for betType, amount := range bets {
		if rouletteBetWins(betType, pocket) {
			payout = payout.Add(amount.Mul(decimal.NewFromFloat(rouletteBetMultiplier)))
		}
	}
	return payout
}

func rouletteBetWins(betType string, pocket int) bool {
	if pocket == 0 {
		return false
	}
	switch betType {
	case RouletteBetRed:
		return rouletteRed[pocket]
	case RouletteBetBlack:
		return !rouletteRed[pocket]
	case RouletteBetEven:
		return pocket%2 == 0
	case RouletteBetOdd:
		return pocket%2 == 1
	case RouletteBetLow:
		return pocket >= 1 && pocket <= 18
	case RouletteBetHigh:
		return pocket >= 19 && pocket <= 36
	}
	return false
}

func RouletteColor(pocket int) string {
	switch {
	case pocket == 0:
		return "green"
	case rouletteRed[pocket]:
		return "red"
	default:
		return "black"
	}
}
