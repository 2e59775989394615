package games

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/rng"
)

const (
	PlinkoRiskLow    = "low"
	PlinkoRiskMedium = "medium"
	PlinkoRiskHigh   = "high"
)

// Static bucket multipliers keyed by (risk, rows). Inherited configuration
// data, not a derived probability model.
var plinkoTables = map[string]map[int][]float64{
	PlinkoRiskLow: {
		8:  {5.6, 2.1, 1.1, 1.0, 0.5, 1.0, 1.1, 2.1, 5.6},
		12: {10, 3, 1.6, 1.4, 1.1, 1.0, 0.5, 1.0, 1.1, 1.4, 1.6, 3, 10},
		16: {16, 9, 2, 1.4, 1.4, 1.2, 1.1, 1.0, 0.5, 1.0, 1.1, 1.2, 1.4, 1.4, 2, 9, 16},
	},
	PlinkoRiskMedium: {
		8:  {13, 3, 1.3, 0.7, 0.4, 0.7, 1.3, 3, 13},
		12: {33, 11, 4, 2, 1.1, 0.6, 0.3, 0.6, 1.1, 2, 4, 11, 33},
		16: {110, 41, 10, 5, 3, 1.5, 1.0, 0.5, 0.3, 0.5, 1.0, 1.5, 3, 5, 10, 41, 110},
	},
	PlinkoRiskHigh: {
		8:  {29, 4, 1.5, 0.3, 0.2, 0.3, 1.5, 4, 29},
		12: {170, 24, 8.1, 2, 0.7, 0.2, 0.2, 0.2, 0.7, 2, 8.1, 24, 170},
		16: {1000, 130, 26, 9, 4, 2, 0.2, 0.2, 0.2, 0.2, 0.2, 2, 4, 9, 26, 130, 1000},
	},
}

type PlinkoParams struct {
	Risk string `json:"risk"`
	Rows int    `json:"rows"`
}

type PlinkoDetail struct {
	Path       []int   `json:"path"` // 0 = left, 1 = right
	Bucket     int     `json:"bucket"`
	Multiplier float64 `json:"multiplier"`
}

// PlinkoRule drops a ball through rows of binary left/right steps; the
// number of rights picks the terminal bucket. Buckets follow a binomial
// distribution, so forced sampling keeps the binomial weights restricted
// to the chosen outcome class.
type PlinkoRule struct{}

func (r *PlinkoRule) GameType() models.GameType { return models.GameTypePlinko }

func (r *PlinkoRule) ValidateParams(params json.RawMessage) error {
	var p PlinkoParams
	if err := decodeParams(params, &p); err != nil {
		return err
	}
	byRows, ok := plinkoTables[p.Risk]
	if !ok {
		return fmt.Errorf("risk must be %q, %q or %q", PlinkoRiskLow, PlinkoRiskMedium, PlinkoRiskHigh)
	}
	if _, ok := byRows[p.Rows]; !ok {
		return fmt.Errorf("rows must be 8, 12 or 16, got %d", p.Rows)
	}
	return nil
}

func (r *PlinkoRule) Resolve(w *models.Wager, s models.GameSettings, forceWin bool, src rng.Source) (*Outcome, error) {
	var p PlinkoParams
	if err := decodeParams(w.Params, &p); err != nil {
		return nil, err
	}
	if err := r.ValidateParams(w.Params); err != nil {
		return nil, err
	}

	table := plinkoTables[p.Risk][p.Rows]

	var class []int
	for bucket, mult := range table {
		if (mult > 1) == forceWin {
			class = append(class, bucket)
		}
	}
	if len(class) == 0 {
		for bucket := range table {
			class = append(class, bucket)
		}
	}

	bucket := sampleBinomialBucket(class, p.Rows, src)
	multiplier := table[bucket]

	// Synthesize a path consistent with the bucket: `bucket` rights among
	// `rows` steps, in random order.
	path := make([]int, p.Rows)
	for i := 0; i < bucket; i++ {
		path[i] = 1
	}
	src.Shuffle(len(path), func(i, j int) {
		path[i], path[j] = path[j], path[i]
	})

	payout := w.Stake.Mul(decimal.NewFromFloat(multiplier))
	return &Outcome{
		Won:        multiplier > 1,
		Multiplier: multiplier,
		Payout:     payout,
		Detail:     PlinkoDetail{Path: path, Bucket: bucket, Multiplier: multiplier},
	}, nil
}

// sampleBinomialBucket picks a bucket from the allowed set with probability
// proportional to C(rows, bucket), preserving the shape of the fair
// distribution inside the restricted class.
func sampleBinomialBucket(allowed []int, rows int, src rng.Source) int {
	weights := make([]float64, len(allowed))
	var total float64
	for i, bucket := range allowed {
		weights[i] = binomialCoefficient(rows, bucket)
		total += weights[i]
	}

	target := src.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return allowed[i]
		}
	}
	return allowed[len(allowed)-1]
}

func binomialCoefficient(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}

// PlinkoMultipliers exposes the static table for a risk/rows pair, for the
// settings surface and UI.
func PlinkoMultipliers(risk string, rows int) ([]float64, bool) {
	byRows, ok := plinkoTables[risk]
	if !ok {
		return nil, false
	}
	table, ok := byRows[rows]
	return table, ok
}
