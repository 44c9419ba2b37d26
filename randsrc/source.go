// Package randsrc is the one random-number abstraction threaded through
// every sampler in the core (helicity, colour, momentum, PARNI). Per
// spec §5, "the random-number stream is per-generator and advances
// deterministically given a seed" — every Source here is seeded exactly
// once and never reseeded mid-run.
package randsrc

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source is a source of randomness. It is deliberately narrow so that
// alternative generators (e.g. a recorded replay stream for tests) can
// implement it trivially.
type Source interface {
	Seed(seed int64)
	Uint64() uint64
	// Float64 returns a value uniformly distributed in [0, 1).
	Float64() float64
}

// mt19937Source wraps gonum's MT19937, the same RNG the teacher's
// engine/chain package binds to its sampler.Source contract.
type mt19937Source struct {
	mt *prng.MT19937
}

// New returns a Source seeded deterministically.
func New(seed int64) Source {
	s := &mt19937Source{mt: prng.NewMT19937()}
	s.Seed(seed)
	return s
}

func (m *mt19937Source) Seed(seed int64) {
	m.mt.Seed(uint64(seed))
}

func (m *mt19937Source) Uint64() uint64 {
	return m.mt.Uint64()
}

func (m *mt19937Source) Float64() float64 {
	// 53 significant bits, the standard construction for a uniform double
	// from a 64-bit generator.
	return float64(m.mt.Uint64()>>11) / (1 << 53)
}

// Choice performs a weighted discrete choice over non-negative weights,
// used by PARNI's tree descent ("at each non-leaf node choose a child with
// probability proportional to its stored weight", spec §4.5) and by
// multichannel branching selection (spec §4.6 step 1). Returns false if
// every weight is zero or weights is empty.
func Choice(weights []float64, src Source) (int, bool) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 || math.IsNaN(total) {
		return 0, false
	}
	r := src.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i, true
		}
	}
	return len(weights) - 1, true
}
