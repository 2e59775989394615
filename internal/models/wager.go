package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Wager is the ephemeral bet submission. Params carries the game-specific
// payload; each outcome rule decodes its own shape.
type Wager struct {
	GameID   GameType        `json:"game_id"`
	Currency string          `json:"currency"`
	Stake    decimal.Decimal `json:"stake"`
	Params   json.RawMessage `json:"params,omitempty"`
}

func (w *Wager) Validate() error {
	if !w.GameID.Valid() {
		return fmt.Errorf("unknown game type: %s", w.GameID)
	}
	if _, ok := GetCurrency(w.Currency); !ok {
		return fmt.Errorf("unsupported currency: %s", w.Currency)
	}
	if w.Stake.Sign() <= 0 {
		return fmt.Errorf("stake must be positive")
	}
	return nil
}
