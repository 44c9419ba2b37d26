package tree

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/tensor"
)

// toyRuleFor returns a scalar three-point rule that multiplies the two
// non-produced iterators' values by the coupling and accumulates into the
// produced iterator, used to exercise the tree plumbing without real
// Lorentz/Dirac structure.
func toyRuleFor(produced int) model.FeynmanRuleFunc {
	others := make([]int, 0, 2)
	for i := 0; i < 3; i++ {
		if i != produced {
			others = append(others, i)
		}
	}
	return func(prefactor complex128, couplings []complex128, iters []tensor.Iterator, _ []model.Momentum) {
		v := prefactor * iters[others[0]].Get() * iters[others[1]].Get()
		if len(couplings) > 0 {
			v *= couplings[0]
		}
		iters[produced].Add(v)
	}
}

func buildToyScalarQED() (*model.Model, model.ID, model.ID, model.ID) {
	m := model.New("toy-scalar-qed", nil)
	electron := model.NewParticle("e-", 11, 0, -1, model.Singlet, 1)
	positron := model.NewParticle("e+", -11, 0, 1, model.Singlet, 1)
	photon := model.NewParticle("gamma", 22, 0, 0, model.Singlet, 1)
	eID := m.InsertParticle(electron)
	pID := m.InsertParticle(positron)
	gID := m.InsertParticle(photon)
	m.LinkAntiParticles(eID, pID)

	rules := model.RuleTable{Natural: [4]model.FeynmanRuleFunc{toyRuleFor(0), toyRuleFor(1), toyRuleFor(2), nil}}
	v := model.NewVertex([]model.ID{eID, pID, gID}, []complex128{complex(1, 0)}, rules, model.MajoranaNone, true)
	_ = m.InsertVertex(v)
	return m, eID, pID, gID
}

func TestBuildMollerLikeProcess(t *testing.T) {
	require := require.New(t)
	m, _, _, _ := buildToyScalarQED()

	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)
	require.Len(procs, 1)

	tr, err := Build(m, procs[0], DefaultFinalLeg)
	require.NoError(err)
	require.NotEmpty(tr.TopCurrents())
	require.Greater(tr.NumCurrents(), 4) // externals plus at least one internal photon current
	require.Greater(tr.NumInteractions(), 0)
}

func TestEvaluateProducesFiniteAmplitude(t *testing.T) {
	require := require.New(t)
	m, _, _, _ := buildToyScalarQED()

	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)
	tr, err := Build(m, procs[0], DefaultFinalLeg)
	require.NoError(err)

	state := tr.NewState()
	momenta := []model.Momentum{
		{50, 0, 0, 50},
		{50, 0, 0, -50},
		{50, 30, 0, 0},
		{50, -30, 0, 0},
	}
	helicities := []int{0, 0, 0, 0}

	amp, err := tr.Evaluate(state, momenta, helicities)
	require.NoError(err)
	require.False(isNaNOrInf(amp))

	// a second call with the same state must reproduce the same value
	// (the memoization flags reset cleanly between calls).
	amp2, err := tr.Evaluate(state, momenta, helicities)
	require.NoError(err)
	require.Equal(amp, amp2)
}

func TestBuildRejectsInvalidProcess(t *testing.T) {
	require := require.New(t)
	m, _, _, _ := buildToyScalarQED()

	procs, err := process.ParseAll(m, "e-,e+ mu-")
	require.Error(err)
	_, buildErr := Build(m, procs[0], DefaultFinalLeg)
	require.Error(buildErr)
}

func isNaNOrInf(c complex128) bool {
	return cmplx.IsNaN(c) || cmplx.IsInf(c)
}

// The amplitude is a property of the process, not of which external leg was
// picked as the contraction sink: building the same tree rooted at leg 0
// instead of the default last leg must reproduce the same value.
func TestEvaluateInvariantUnderFinalLegChoice(t *testing.T) {
	require := require.New(t)
	m, _, _, _ := buildToyScalarQED()

	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)

	trDefault, err := Build(m, procs[0], DefaultFinalLeg)
	require.NoError(err)
	trLegZero, err := Build(m, procs[0], 0)
	require.NoError(err)

	momenta := []model.Momentum{
		{50, 0, 0, 50},
		{50, 0, 0, -50},
		{50, 30, 0, 0},
		{50, -30, 0, 0},
	}
	helicities := []int{0, 0, 0, 0}

	ampDefault, err := trDefault.Evaluate(trDefault.NewState(), momenta, helicities)
	require.NoError(err)
	ampLegZero, err := trLegZero.Evaluate(trLegZero.NewState(), momenta, helicities)
	require.NoError(err)

	require.InDelta(real(ampDefault), real(ampLegZero), 1e-9)
	require.InDelta(imag(ampDefault), imag(ampLegZero), 1e-9)
}

// e-,e+ > e-,e+ through a single eeg vertex has exactly two tree diagrams:
// s-channel annihilation and t-channel exchange.
func TestDiagramCount(t *testing.T) {
	require := require.New(t)
	m, _, _, _ := buildToyScalarQED()

	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)
	tr, err := Build(m, procs[0], DefaultFinalLeg)
	require.NoError(err)

	require.Equal(2, tr.DiagramCount())
}
