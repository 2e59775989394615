package games

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

const MinesDefaultGridSize = 25

type MinesParams struct {
	GridSize int `json:"grid_size,omitempty"`
	Mines    int `json:"mines"`
	// Reveals is how many cells are uncovered before cashing out.
	Reveals int `json:"reveals"`
}

type MinesDetail struct {
	GridSize  int   `json:"grid_size"`
	Mines     []int `json:"mines"`
	Revealed  []int `json:"revealed"`
	HitIndex  int   `json:"hit_index"` // -1 when no mine was hit
	GemsFound int   `json:"gems_found"`
}

// MinesRule uncovers cells on a grid seeded with mines. Each safe reveal
// compounds the multiplier by remaining_cells/remaining_gems; the final
// multiplier is scaled by the house edge factor.
type MinesRule struct{}

func (r *MinesRule) GameType() models.GameType { return models.GameTypeMines }

func (r *MinesRule) ValidateParams(params json.RawMessage) error {
	var p MinesParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	_, err := normalizeMinesParams(p)
	return err
}

func normalizeMinesParams(p MinesParams) (MinesParams, error) {
	if p.GridSize == 0 {
		p.GridSize = MinesDefaultGridSize
	}
	if p.GridSize < 4 || p.GridSize > 100 {
		return p, fmt.Errorf("grid_size must be between 4 and 100, got %d", p.GridSize)
	}
	if p.Mines < 1 || p.Mines >= p.GridSize {
		return p, fmt.Errorf("mines must be between 1 and %d, got %d", p.GridSize-1, p.Mines)
	}
	if p.Reveals < 1 {
		return p, fmt.Errorf("at least one reveal is required before cashout")
	}
	if p.Reveals > p.GridSize-p.Mines {
		return p, fmt.Errorf("cannot reveal %d gems with only %d on the grid", p.Reveals, p.GridSize-p.Mines)
	}
	return p, nil
}

func (r *MinesRule) Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error) {
	var p MinesParams
	if err := decodeParams(w.Params, &p); err != nil {
		return nil, err
	}
	p, err := normalizeMinesParams(p)
	if err != nil {
		return nil, err
	}

	order := shuffledCells(p.GridSize, src)

	if forceWin {
		// Reveal order is random; mines go to cells outside the reveals.
		revealed := order[:p.Reveals]
		mines := append([]int(nil), order[p.Reveals:p.Reveals+p.Mines]...)
		multiplier := MinesMultiplier(p.GridSize, p.Mines, p.Reveals, s.HouseEdge)
		return &Outcome{
			Won:        true,
			Multiplier: multiplier,
			Payout:     w.Stake.Mul(decimal.NewFromFloat(multiplier)),
			Detail: MinesDetail{
				GridSize:  p.GridSize,
				Mines:     mines,
				Revealed:  revealed,
				HitIndex:  -1,
				GemsFound: p.Reveals,
			},
		}, nil
	}

	// Forced loss: one mine lands somewhere in the reveal sequence.
	hit := src.IntN(1, p.Reveals)
	revealed := order[:hit]
	mines := []int{order[hit-1]}
	for _, cell := range order[hit : hit+p.Mines-1] {
		mines = append(mines, cell)
	}
	return &Outcome{
		Won:    false,
		Payout: decimal.Zero,
		Detail: MinesDetail{
			GridSize:  p.GridSize,
			Mines:     mines,
			Revealed:  revealed,
			HitIndex:  hit - 1,
			GemsFound: hit - 1,
		},
	}, nil
}

// MinesMultiplier compounds the per-reveal odds for the given number of
// successful reveals, scaled by the house edge factor.
func MinesMultiplier(gridSize, mines, reveals int, houseEdge float64) float64 {
	gems := gridSize - mines
	multiplier := 1.0
	for i := 1; i <= reveals; i++ {
		multiplier *= float64(gridSize-i+1) / float64(gems-i+1)
	}
	return multiplier * (1 - houseEdge/100)
}

func shuffledCells(n int, src rng.Source) []int {
	cells := make([]int, n)
	for i := range cells {
		cells[i] = i
	}
	src.Shuffle(n, func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})
	return cells
}
