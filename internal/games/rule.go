// Package games holds one outcome rule per game family. Rules are pure:
// given a wager, the current settings, the engine's bias decision and a
// randomness source they produce an outcome. Rules never re-derive win
// probability; the engine owns the bias draw.
package games

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

// Outcome is the result of resolving one wager.
type Outcome struct {
	Won        bool
	Multiplier float64
	Payout     decimal.Decimal
	Detail     any
}

// Rule resolves wagers for a single game family. forceWin is the engine's
// bias decision: when true the rule samples only from winning outcomes
// (where structurally possible), otherwise only from losing ones.
type Rule interface {
	GameType() models.GameType
	ValidateParams(params json.RawMessage) error
	Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error)
}

var registry = make(map[models.GameType]Rule)

func register(r Rule) {
	registry[r.GameType()] = r
}

// Get retrieves the rule for a game type.
func Get(gameType models.GameType) (Rule, bool) {
	r, ok := registry[gameType]
	return r, ok
}

// List returns the registered game types.
func List() []models.GameType {
	out := make([]models.GameType, 0, len(registry))
	for gt := range registry {
		out = append(out, gt)
	}
	return out
}

func init() {
	register(&DiceRule{})
	register(&RouletteRule{})
	register(&MinesRule{})
	register(&PlinkoRule{})
	register(&BlackjackRule{})
}

func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return fmt.Errorf("missing game parameters")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("malformed game parameters: %v", err)
	}
	return nil
}
