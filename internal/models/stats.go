package models

import "github.com/shopspring/decimal"

// AggregateStats is derived data: it must always be recomputable from the
// GameResult stream.
type AggregateStats struct {
	TotalGames   int64           `json:"total_games"`
	TotalWagered decimal.Decimal `json:"total_wagered"`
	TotalWon     decimal.Decimal `json:"total_won"`
	Wins         int64           `json:"wins"`
	Losses       int64           `json:"losses"`
}

func NewAggregateStats() AggregateStats {
	return AggregateStats{
		TotalWagered: decimal.Zero,
		TotalWon:     decimal.Zero,
	}
}

func (s *AggregateStats) Record(r *GameResult) {
	s.TotalGames++
	s.TotalWagered = s.TotalWagered.Add(r.BetAmount)
	s.TotalWon = s.TotalWon.Add(r.WinAmount)
	if r.Won {
		s.Wins++
	} else {
		s.Losses++
	}
}

func (s AggregateStats) Equal(other AggregateStats) bool {
	return s.TotalGames == other.TotalGames &&
		s.Wins == other.Wins &&
		s.Losses == other.Losses &&
		s.TotalWagered.Equal(other.TotalWagered) &&
		s.TotalWon.Equal(other.TotalWon)
}
