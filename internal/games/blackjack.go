package games

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

// Blackjack payout multipliers relative to the stake.
const (
	BlackjackWinMultiplier     = 2.0
	BlackjackNaturalMultiplier = 2.5
	BlackjackPushMultiplier    = 1.0
)

const blackjackDealerStand = 17

var blackjackSuits = []string{"spades", "hearts", "diamonds", "clubs"}
var blackjackRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

type BlackjackDetail struct {
	PlayerHand  []Card `json:"player_hand"`
	DealerHand  []Card `json:"dealer_hand"`
	PlayerTotal int    `json:"player_total"`
	DealerTotal int    `json:"dealer_total"`
	Result      string `json:"result"` // win, blackjack, push, lose
}

// DrawCard pulls a card from an endless shoe.
func DrawCard(src rng.Source) Card {
	return Card{
		Rank: blackjackRanks[src.IntN(0, 12)],
		Suit: blackjackSuits[src.IntN(0, 3)],
	}
}

func cardValue(c Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		// Ranks "2".."9" are single digits.
		return int(c.Rank[0] - '0')
	}
}

// HandValue returns the best total, counting aces as 11 where that does
// not bust.
func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		v := cardValue(c)
		if c.Rank == "A" {
			aces++
		}
		total += v
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21.
func IsNatural(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

// DealerPlay draws onto the dealer's hand until it reaches 17.
func DealerPlay(hand []Card, src rng.Source) []Card {
	for HandValue(hand) < blackjackDealerStand {
		hand = append(hand, DrawCard(src))
	}
	return hand
}

// SettleBlackjack compares final hands and returns the payout multiplier
// with a result label. playerNatural must be determined before any hits.
func SettleBlackjack(player, dealer []Card, playerNatural bool) (float64, string) {
	playerTotal := HandValue(player)
	dealerTotal := HandValue(dealer)

	switch {
	case playerTotal > 21:
		return 0, "lose"
	case playerNatural:
		return BlackjackNaturalMultiplier, "blackjack"
	case dealerTotal > 21:
		return BlackjackWinMultiplier, "win"
	case playerTotal > dealerTotal:
		return BlackjackWinMultiplier, "win"
	case playerTotal == dealerTotal:
		return BlackjackPushMultiplier, "push"
	default:
		return 0, "lose"
	}
}

// BlackjackRule resolves a full round in one shot: the player follows a
// fixed hit-below-17 line. Interactive rounds drive hit/stand/double
// through the same hand machinery instead.
type BlackjackRule struct{}

func (r *BlackjackRule) GameType() models.GameType { return models.GameTypeBlackjack }

func (r *BlackjackRule) ValidateParams(params json.RawMessage) error {
	// A blackjack wager needs no parameters.
	return nil
}

func (r *BlackjackRule) Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error) {
	player := []Card{DrawCard(src), DrawCard(src)}
	natural := IsNatural(player)

	for !natural && HandValue(player) < blackjackDealerStand {
		player = append(player, DrawCard(src))
	}

	dealer := []Card{DrawCard(src)}
	dealer = RiggedDealerPlay(dealer, player, natural, forceWin, src)

	multiplier, label := SettleBlackjack(player, dealer, natural)
	payout := w.Stake.Mul(decimal.NewFromFloat(multiplier))

	return &Outcome{
		Won:        payout.GreaterThan(w.Stake),
		Multiplier: multiplier,
		Payout:     payout,
		Detail: BlackjackDetail{
			PlayerHand:  player,
			DealerHand:  dealer,
			PlayerTotal: HandValue(player),
			DealerTotal: HandValue(dealer),
			Result:      label,
		},
	}, nil
}

// RiggedDealerPlay resolves the dealer's hand under the engine's bias
// decision: dealer draws are resampled until the settled outcome lands in
// the forced class. A busted player or a natural fixes the outcome, so no
// amount of resampling changes it; the first completed hand stands.
func RiggedDealerPlay(dealer, player []Card, playerNatural, forceWin bool, src rng.Source) []Card {
	if HandValue(player) > 21 || playerNatural {
		return DealerPlay(dealer, src)
	}

	const maxAttempts = 100
	var last []Card
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := DealerPlay(append([]Card(nil), dealer...), src)
		mult, _ := SettleBlackjack(player, candidate, playerNatural)
		if (mult > BlackjackPushMultiplier) == forceWin {
			return candidate
		}
		last = candidate
	}
	return last
}
