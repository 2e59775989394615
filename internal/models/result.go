package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GameResult is the immutable record of one resolved wager. Multiplier is
// always WinAmount/BetAmount; the two must never drift apart.
type GameResult struct {
	ID         string          `json:"id"`
	GameType   GameType        `json:"game_type"`
	BetAmount  decimal.Decimal `json:"bet_amount"`
	WinAmount  decimal.Decimal `json:"win_amount"`
	Currency   string          `json:"currency"`
	Multiplier float64         `json:"multiplier"`
	Won        bool            `json:"won"`
	CreatedAt  time.Time       `json:"created_at"`
	GameData   json.RawMessage `json:"game_data,omitempty"`
}

func NewGameResult(gameType GameType, currency string, stake, payout decimal.Decimal, won bool, detail any) (*GameResult, error) {
	var data json.RawMessage
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return nil, err
		}
		data = b
	}

	multiplier := 0.0
	if stake.Sign() > 0 {
		multiplier = payout.Div(stake).InexactFloat64()
	}

	return &GameResult{
		ID:         GenerateResultID(),
		GameType:   gameType,
		BetAmount:  stake,
		WinAmount:  payout,
		Currency:   currency,
		Multiplier: multiplier,
		Won:        won,
		CreatedAt:  time.Now().UTC(),
		GameData:   data,
	}, nil
}
