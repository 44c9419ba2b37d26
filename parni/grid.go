// Package parni implements the adaptive binary-partition integrator of
// spec §4.5: a binary tree of axis-aligned rectangular bins over a
// hyper-rectangle domain, used as the invariant-mass and angle sampler
// inside phase-space branchings and standalone for low-dimensional
// integration.
package parni

import (
	"fmt"
	"math"

	"github.com/qflow/ampcore/randsrc"
)

// Mode selects the bin-scoring criterion used by Adapt (spec §4.5 "grid
// mode").
type Mode int

const (
	// RunningSum scores a bin by the running sum of integrand samples.
	RunningSum Mode = iota
	// SumSquares scores a bin by the running sum of |integrand|².
	SumSquares
	// Maximum scores a bin by the largest integrand sample observed.
	Maximum
	// Cumulant scores a bin by the running sum of integrand samples, the
	// same score as RunningSum.
	Cumulant
)

// bin is one node of the binary partition tree. left == -1 marks a leaf;
// left == -2 marks a bin detached from the tree by a merge.
type bin struct {
	lo, hi     []float64
	weight     float64 // score per Mode
	sumSquares float64
	count      int
	axis       int
	split      float64
	parent     int
	left       int
	right      int
}

func (b *bin) volume() float64 {
	v := 1.0
	for i := range b.lo {
		v *= b.hi[i] - b.lo[i]
	}
	return v
}

func (b *bin) contains(x []float64) bool {
	for i, xi := range x {
		if xi < b.lo[i] || xi >= b.hi[i] {
			return false
		}
	}
	return true
}

// Grid is a PARNI adaptive binary-partition integrator over a
// dim-dimensional hyper-rectangle.
type Grid struct {
	dim     int
	bins    []bin
	maxBins int
	mode    Mode

	lastLeaf int // index of the leaf hit by the last Generate/EvaluateWeight
}

// New constructs a Grid whose root covers [lo[i],hi[i]) along axis i,
// capped at maxBins leaves (spec §4.5 "adapt()... above the target
// count, additionally merge... to keep the bin count bounded").
func New(lo, hi []float64, maxBins int, mode Mode) (*Grid, error) {
	if len(lo) != len(hi) || len(lo) == 0 {
		return nil, fmt.Errorf("parni: lo/hi must be equal-length and non-empty, got %d/%d", len(lo), len(hi))
	}
	if maxBins < 1 {
		return nil, fmt.Errorf("parni: maxBins must be >= 1, got %d", maxBins)
	}
	g := &Grid{dim: len(lo), maxBins: maxBins, mode: mode, lastLeaf: -1}
	g.bins = []bin{{
		lo: append([]float64(nil), lo...), hi: append([]float64(nil), hi...),
		parent: -1, left: -1, right: -1,
	}}
	return g, nil
}

// NumBins returns the current leaf count.
func (g *Grid) NumBins() int {
	n := 0
	for _, b := range g.bins {
		if b.left == -1 {
			n++
		}
	}
	return n
}

func (g *Grid) isLeaf(i int) bool { return g.bins[i].left == -1 }

// Generate descends the tree from the root, at each non-leaf node
// choosing a child with probability proportional to its stored weight
// (uniform if both are zero), samples a point uniformly within the
// chosen leaf's rectangle, and returns the point with its reciprocal
// sampling density as the event weight (spec §4.5 "generate()").
func (g *Grid) Generate(src randsrc.Source) (point []float64, weight float64) {
	idx := 0
	density := 1.0
	for !g.isLeaf(idx) {
		b := g.bins[idx]
		left, right := g.bins[b.left], g.bins[b.right]
		weights := []float64{left.weight, right.weight}
		choice, ok := randsrc.Choice(weights, src)
		var childIdx int
		var prob float64
		if !ok {
			// degenerate: no weight accumulated yet anywhere below, split
			// uniformly by volume instead.
			if src.Float64() < left.volume()/b.volume() {
				childIdx, prob = b.left, left.volume()/b.volume()
			} else {
				childIdx, prob = b.right, right.volume()/b.volume()
			}
		} else if choice == 0 {
			childIdx = b.left
			prob = left.weight / (left.weight + right.weight)
		} else {
			childIdx = b.right
			prob = right.weight / (left.weight + right.weight)
		}
		if prob <= 0 {
			prob = 1e-300
		}
		density /= prob
		idx = childIdx
	}
	g.lastLeaf = idx
	leaf := g.bins[idx]
	point = make([]float64, g.dim)
	for i := range point {
		point[i] = leaf.lo[i] + src.Float64()*(leaf.hi[i]-leaf.lo[i])
	}
	vol := leaf.volume()
	return point, vol * density
}

// EvaluateWeight descends the tree to the leaf containing point and
// returns its reciprocal sampling density (spec §4.5 "evaluate_weight()").
func (g *Grid) EvaluateWeight(point []float64) (float64, error) {
	idx := 0
	density := 1.0
	for !g.isLeaf(idx) {
		b := g.bins[idx]
		left, right := g.bins[b.left], g.bins[b.right]
		var childIdx int
		var prob float64
		total := left.weight + right.weight
		if total <= 0 {
			vol := left.volume() + right.volume()
			if point[b.axis] < b.split {
				childIdx, prob = b.left, left.volume()/vol
			} else {
				childIdx, prob = b.right, right.volume()/vol
			}
		} else if point[b.axis] < b.split {
			childIdx, prob = b.left, left.weight/total
		} else {
			childIdx, prob = b.right, right.weight/total
		}
		if !g.bins[childIdx].contains(point) {
			return 0, fmt.Errorf("parni: point out of domain")
		}
		if prob <= 0 {
			prob = 1e-300
		}
		density /= prob
		idx = childIdx
	}
	g.lastLeaf = idx
	return g.bins[idx].volume() * density, nil
}

// Update accumulates value into the leaf the last Generate/EvaluateWeight
// call fell into, propagating the score up to the root (spec §4.5
// "update()").
func (g *Grid) Update(value float64) {
	if g.lastLeaf < 0 {
		return
	}
	score := scoreDelta(g.mode, value)
	idx := g.lastLeaf
	g.bins[idx].sumSquares += value * value
	for idx != -1 {
		g.bins[idx].count++
		switch g.mode {
		case Maximum:
			if score > g.bins[idx].weight {
				g.bins[idx].weight = score
			}
		default:
			g.bins[idx].weight += score
		}
		idx = g.bins[idx].parent
	}
}

func scoreDelta(mode Mode, value float64) float64 {
	switch mode {
	case SumSquares:
		return value * value
	case Cumulant, RunningSum, Maximum:
		return value
	default:
		return value
	}
}

// Integral returns the running Monte-Carlo estimate of ∫f over the
// domain: the root's accumulated score divided by its sample count,
// valid for RunningSum/Cumulant modes.
func (g *Grid) Integral() float64 {
	root := g.bins[0]
	if root.count == 0 {
		return 0
	}
	return root.weight / float64(root.count)
}

// Adapt grows the tree toward maxBins by splitting the highest-weight
// leaf along its longest axis at its midpoint, and — once at or above
// the cap — merges the lowest-combined-weight sibling pair back into a
// leaf, keeping the bin count bounded (spec §4.5 "adapt()").
func (g *Grid) Adapt() {
	if g.NumBins() < g.maxBins {
		g.split(g.highestWeightLeaf())
		return
	}
	g.mergeLowestWeightSiblings()
}

func (g *Grid) highestWeightLeaf() int {
	best, bestWeight := -1, math.Inf(-1)
	for i, b := range g.bins {
		if b.left == -1 && b.weight > bestWeight {
			best, bestWeight = i, b.weight
		}
	}
	return best
}

func (g *Grid) split(idx int) {
	if idx < 0 {
		return
	}
	b := g.bins[idx]
	axis := 0
	longest := 0.0
	for i := range b.lo {
		if extent := b.hi[i] - b.lo[i]; extent > longest {
			longest, axis = extent, i
		}
	}
	mid := (b.lo[axis] + b.hi[axis]) / 2

	leftLo, leftHi := append([]float64(nil), b.lo...), append([]float64(nil), b.hi...)
	leftHi[axis] = mid
	rightLo, rightHi := append([]float64(nil), b.lo...), append([]float64(nil), b.hi...)
	rightLo[axis] = mid

	leftIdx := len(g.bins)
	g.bins = append(g.bins, bin{lo: leftLo, hi: leftHi, weight: b.weight / 2, parent: idx, left: -1, right: -1})
	rightIdx := len(g.bins)
	g.bins = append(g.bins, bin{lo: rightLo, hi: rightHi, weight: b.weight / 2, parent: idx, left: -1, right: -1})

	g.bins[idx].axis = axis
	g.bins[idx].split = mid
	g.bins[idx].left = leftIdx
	g.bins[idx].right = rightIdx
}

func (g *Grid) mergeLowestWeightSiblings() {
	bestParent, bestWeight := -1, math.Inf(1)
	for i, b := range g.bins {
		if b.left < 0 || !g.isLeaf(b.left) || !g.isLeaf(b.right) {
			continue
		}
		combined := g.bins[b.left].weight + g.bins[b.right].weight
		if combined < bestWeight {
			bestParent, bestWeight = i, combined
		}
	}
	if bestParent == -1 {
		return
	}
	b := g.bins[bestParent]
	merged := g.bins[b.left].weight + g.bins[b.right].weight
	g.bins[bestParent].weight = merged
	g.bins[b.left].left, g.bins[b.right].left = -2, -2
	g.bins[bestParent].left = -1
	g.bins[bestParent].right = -1
}
