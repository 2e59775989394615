// Package rng provides the engine's source of randomness. The default
// source is a PRNG seeded from crypto/rand; a fixed-sequence source backs
// deterministic tests. Same seed and call sequence produce the same output
// sequence.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Source produces uniformly distributed draws. Implementations need not be
// safe for concurrent use; the engine serializes access per session.
type Source interface {
	// Float64 returns a float in [0, 1).
	Float64() float64
	// IntN returns an integer in [min, max] inclusive.
	IntN(min, max int) int
	// Shuffle permutes n elements via the swap callback.
	Shuffle(n int, swap func(i, j int))
}

type prngSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Source seeded from crypto/rand.
func New() Source {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("rng: crypto/rand unavailable: " + err.Error())
	}
	return NewSeeded(int64(binary.BigEndian.Uint64(b[:])))
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &prngSource{r: rand.New(rand.NewSource(seed))}
}

func (s *prngSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *prngSource) IntN(min, max int) int {
	if max < min {
		min, max = max, min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.r.Intn(max-min+1)
}

func (s *prngSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}

// Sequence replays a fixed list of floats, cycling when exhausted. IntN and
// Shuffle are derived from the same stream so tests can script exact
// outcomes.
type Sequence struct {
	floats []float64
	pos    int
}

func NewSequence(floats ...float64) *Sequence {
	if len(floats) == 0 {
		floats = []float64{0}
	}
	return &Sequence{floats: floats}
}

func (s *Sequence) Float64() float64 {
	f := s.floats[s.pos%len(s.floats)]
	s.pos++
	return f
}

func (s *Sequence) IntN(min, max int) int {
	if max < min {
		min, max = max, min
	}
	span := max - min + 1
	return min + int(s.Float64()*float64(span))
}

func (s *Sequence) Shuffle(n int, swap func(i, j int)) {
	// Fisher-Yates driven by the scripted stream.
	for i := n - 1; i > 0; i-- {
		j := s.IntN(0, i)
		swap(i, j)
	}
}
