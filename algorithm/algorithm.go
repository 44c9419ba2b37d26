// Package algorithm is the user-facing compute facade of spec §2 ("the
// Algorithm facade... holds a list of process/tree pairs, a permutation
// mapping user-order to internal-order, and spin/colour summation
// flags"). Family-expanded process strings build one tree per concrete
// flavour assignment; Evaluate/EvaluateSum run one or all of them.
package algorithm

import (
	"fmt"

	"github.com/qflow/ampcore/errs"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/tree"
)

// Subprocess pairs one concrete flavour assignment with its built tree
// and a reusable evaluation state.
type Subprocess struct {
	Process *process.Process
	Tree    *tree.Tree
	state   *tree.State
}

// Algorithm is the facade spec §2 names: one or more Subprocesses sharing
// an external leg count, plus the spin/colour summation flags passed to
// New. EvaluateSum sums over subprocesses only and does not read them.
type Algorithm struct {
	Model       *model.Model
	Subprocess  []*Subprocess
	NIn, NOut   int
	SumSpins    bool
	SumColours  bool
	Permutation []int // user leg order -> Process.Legs order; identity if nil
}

// DefaultFinalLeg tells New to build each subprocess tree with its last
// external leg as the contraction sink (tree.DefaultFinalLeg).
const DefaultFinalLeg = tree.DefaultFinalLeg

// New parses processString against m, builds a tree for every concrete
// flavour assignment it expands to (each rooted at finalLeg — see
// tree.Build; pass DefaultFinalLeg for the usual last-leg choice), and
// returns the facade over whichever subset builds successfully (spec §7:
// a subprocess whose tree cannot be built is dropped, not fatal, as long
// as at least one remains).
func New(m *model.Model, processString string, finalLeg int, sumSpins, sumColours bool) (*Algorithm, error) {
	procs, err := process.ParseAll(m, processString)
	if err != nil {
		return nil, fmt.Errorf("algorithm: %w", err)
	}

	var accum errs.Errs
	var subs []*Subprocess
	for _, p := range procs {
		tr, buildErr := tree.Build(m, p, finalLeg)
		if buildErr != nil {
			accum.Add(fmt.Errorf("subprocess %q: %w", p.SortedFlavourKey(), buildErr))
			continue
		}
		subs = append(subs, &Subprocess{Process: p, Tree: tr, state: tr.NewState()})
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("algorithm: no subprocess tree could be built: %w", accum.Err())
	}

	return &Algorithm{
		Model:      m,
		Subprocess: subs,
		NIn:        subs[0].Process.NIn(),
		NOut:       subs[0].Process.NOut(),
		SumSpins:   sumSpins,
		SumColours: sumColours,
	}, nil
}

// ValidProcess reports whether at least one subprocess tree was built
// (spec §6 "valid_process()").
func (a *Algorithm) ValidProcess() bool { return a != nil && len(a.Subprocess) > 0 }

// permute applies a's user-order-to-internal-order permutation, if any.
func (a *Algorithm) permute(xs []model.Momentum) []model.Momentum {
	if a.Permutation == nil {
		return xs
	}
	out := make([]model.Momentum, len(xs))
	for internal, user := range a.Permutation {
		out[internal] = xs[user]
	}
	return out
}

func (a *Algorithm) permuteInts(xs []int) []int {
	if a.Permutation == nil {
		return xs
	}
	out := make([]int, len(xs))
	for internal, user := range a.Permutation {
		out[internal] = xs[user]
	}
	return out
}

// Evaluate computes the amplitude of subprocess index i for the given
// external momenta/helicities, in user leg order.
func (a *Algorithm) Evaluate(i int, momenta []model.Momentum, helicities []int) (complex128, error) {
	if i < 0 || i >= len(a.Subprocess) {
		return 0, fmt.Errorf("algorithm: subprocess index %d out of range [0,%d)", i, len(a.Subprocess))
	}
	s := a.Subprocess[i]
	return s.Tree.Evaluate(s.state, a.permute(momenta), a.permuteInts(helicities))
}

// EvaluateSum sums |M|² over every subprocess (spec §4.7 "Summation:
// weight = 1; the algorithm's evaluate_sum is used"), the flavour-
// summed matrix element squared used when summing over e.g. quark
// flavours in a family-expanded process.
func (a *Algorithm) EvaluateSum(momenta []model.Momentum, helicities []int) (float64, error) {
	var total float64
	for i, s := range a.Subprocess {
		amp, err := s.Tree.Evaluate(s.state, a.permute(momenta), a.permuteInts(helicities))
		if err != nil {
			return 0, fmt.Errorf("algorithm: subprocess %d: %w", i, err)
		}
		m2 := real(amp)*real(amp) + imag(amp)*imag(amp)
		total += m2
	}
	return total, nil
}

// NSubprocess returns the number of concrete flavour assignments built.
func (a *Algorithm) NSubprocess() int { return len(a.Subprocess) }
