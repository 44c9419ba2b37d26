package parni

import "github.com/qflow/ampcore/randsrc"

// SubGrid is a restricted view of a Grid that only samples/evaluates
// within a sub-rectangle, sharing the parent's bin tree and adaptation
// state rather than owning a copy (spec §4.5 "Sub-grid: a restricted
// view of the root that only samples/evaluates in a sub-rectangle,
// sharing adaptation state with the parent").
type SubGrid struct {
	parent  *Grid
	lo, hi  []float64
	maxTries int
}

// SubGrid constructs a restricted view of g over [lo,hi), a sub-
// rectangle of g's domain.
func (g *Grid) SubGrid(lo, hi []float64) *SubGrid {
	return &SubGrid{parent: g, lo: lo, hi: hi, maxTries: 64}
}

// Generate draws from the parent's adaptive density restricted to the
// sub-rectangle via rejection sampling against the parent tree; after
// maxTries failed draws it falls back to a flat sample within the
// sub-rectangle, so Generate always terminates and always returns a
// point inside [lo,hi).
func (s *SubGrid) Generate(src randsrc.Source) (point []float64, weight float64) {
	for try := 0; try < s.maxTries; try++ {
		p, w := s.parent.Generate(src)
		if contains(s.lo, s.hi, p) {
			return p, w
		}
	}
	point = make([]float64, len(s.lo))
	vol := 1.0
	for i := range point {
		point[i] = s.lo[i] + src.Float64()*(s.hi[i]-s.lo[i])
		vol *= s.hi[i] - s.lo[i]
	}
	s.parent.lastLeaf = -1 // flat fallback: Update is a no-op for this draw
	return point, vol
}

// Update forwards to the parent grid, accumulating into whichever leaf
// the last Generate call actually landed in.
func (s *SubGrid) Update(value float64) { s.parent.Update(value) }

func contains(lo, hi, x []float64) bool {
	for i := range x {
		if x[i] < lo[i] || x[i] >= hi[i] {
			return false
		}
	}
	return true
}
