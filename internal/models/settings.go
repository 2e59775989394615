package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameTypeDice      GameType = "dice"
	GameTypeRoulette  GameType = "roulette"
	GameTypeBlackjack GameType = "blackjack"
	GameTypeMines     GameType = "mines"
	GameTypePlinko    GameType = "plinko"
)

func AllGameTypes() []GameType {
	return []GameType{GameTypeDice, GameTypeRoulette, GameTypeBlackjack, GameTypeMines, GameTypePlinko}
}

func (g GameType) Valid() bool {
	switch g {
	case GameTypeDice, GameTypeRoulette, GameTypeBlackjack, GameTypeMines, GameTypePlinko:
		return true
	}
	return false
}

// GameSettings is the house-side configuration for one game. WinRate is the
// configured probability (0-100) that a round is biased toward a winning
// outcome, independent of the game's fair odds.
type GameSettings struct {
	GameID    GameType        `json:"game_id"`
	WinRate   float64         `json:"win_rate"`
	HouseEdge float64         `json:"house_edge"`
	MinBet    decimal.Decimal `json:"min_bet"`
	MaxBet    decimal.Decimal `json:"max_bet"`
	MaxPayout decimal.Decimal `json:"max_payout"`
	Enabled   bool            `json:"enabled"`
}

// GameSettingsPatch carries a partial admin update; nil fields are left as-is.
type GameSettingsPatch struct {
	WinRate   *float64         `json:"win_rate,omitempty"`
	HouseEdge *float64         `json:"house_edge,omitempty"`
	MinBet    *decimal.Decimal `json:"min_bet,omitempty"`
	MaxBet    *decimal.Decimal `json:"max_bet,omitempty"`
	MaxPayout *decimal.Decimal `json:"max_payout,omitempty"`
	Enabled   *bool            `json:"enabled,omitempty"`
}

func (s GameSettings) Validate() error {
	if s.WinRate < 0 || s.WinRate > 100 {
		return fmt.Errorf("win_rate must be between 0 and 100, got %.2f", s.WinRate)
	}
	if s.HouseEdge < 0 || s.HouseEdge > 50 {
		return fmt.Errorf("house_edge must be between 0 and 50, got %.2f", s.HouseEdge)
	}
	if s.MinBet.Sign() <= 0 {
		return fmt.Errorf("min_bet must be positive")
	}
	if s.MaxBet.LessThan(s.MinBet) {
		return fmt.Errorf("max_bet must be at least min_bet")
	}
	if s.MaxPayout.Sign() <= 0 {
		return fmt.Errorf("max_payout must be positive")
	}
	return nil
}

// DefaultSettings returns the built-in record for a game id. The engine
// re-seeds from this table at startup and on admin reset.
func DefaultSettings(gameID GameType) GameSettings {
	return GameSettings{
		GameID:    gameID,
		WinRate:   45,
		HouseEdge: 3,
		MinBet:    decimal.NewFromFloat(0.1),
		MaxBet:    decimal.NewFromInt(1000),
		MaxPayout: decimal.NewFromInt(100000),
		Enabled:   true,
	}
}
