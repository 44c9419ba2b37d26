package generator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/initialstate"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/randsrc"
	"github.com/qflow/ampcore/tensor"
)

// toyRuleFor is the same scalar three-point placeholder rule used across
// the tree/algorithm packages' tests, exercising the generator's plumbing
// without real Lorentz/Dirac structure.
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

func buildToyScalarQED() *model.Model {
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
	return m
}

func toyBeams(t *testing.T, cfg *config.Parameters) *initialstate.Beams {
	t.Helper()
	b, err := initialstate.New(cfg, 0, 0, nil, 0, 0)
	require.NoError(t, err)
	return b
}

func TestGenerateOnceUniformPhaseSpaceProducesFiniteWeight(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()
	cfg := config.TestParameters()
	cfg.PhaseSpace = config.Uniform
	cfg.Helicity = config.HelicityUniform
	cfg.Colour = config.ColourUniform

	g, err := New(m, "e-,e+ > e-,e+", cfg, toyBeams(t, cfg), nil, nil)
	require.NoError(err)

	src := randsrc.New(11)
	for i := 0; i < 5; i++ {
		ev, err := g.GenerateOnce(src)
		require.NoError(err)
		require.False(math.IsNaN(ev.Weight))
		require.GreaterOrEqual(ev.Weight, 0.0)
		require.Len(ev.Incoming, 2)
		require.Len(ev.Outgoing, 2)

		var total model.Momentum
		for _, p := range ev.Incoming {
			total = total.Add(p)
		}
		for _, p := range ev.Outgoing {
			total = total.Sub(p)
		}
		require.InDelta(0, total[0], 1e-4)
	}
	require.EqualValues(5, g.CrossSection.N())
}

func TestGenerateOnceRecursivePhaseSpacePinsBeamMomenta(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()
	cfg := config.TestParameters()
	cfg.PhaseSpace = config.Recursive
	cfg.Helicity = config.HelicityUniform
	cfg.Colour = config.ColourUniform
	cfg.AdaptiveAngle = true
	cfg.GridBinCap = 4

	g, err := New(m, "e-,e+ > e-,e+", cfg, toyBeams(t, cfg), nil, nil)
	require.NoError(err)

	src := randsrc.New(13)
	ev, err := g.GenerateOnce(src)
	require.NoError(err)
	require.InDelta(cfg.BeamEnergy[0], ev.Incoming[0][0], 1e-9)
	require.InDelta(cfg.BeamEnergy[1], ev.Incoming[1][0], 1e-9)
}

func TestGenerateOnceSpinorSumEvaluatesAllHelicityCombinations(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()
	cfg := config.TestParameters()
	cfg.PhaseSpace = config.Uniform
	cfg.Helicity = config.HelicitySpinorSum
	cfg.Colour = config.ColourUniform

	g, err := New(m, "e-,e+ > e-,e+", cfg, toyBeams(t, cfg), nil, nil)
	require.NoError(err)

	ev, err := g.GenerateOnce(randsrc.New(21))
	require.NoError(err)
	require.Nil(ev.Helicities)
	require.False(math.IsNaN(ev.Weight))
}

func TestGenerateUnweightedEventuallyAccepts(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()
	cfg := config.TestParameters()
	cfg.PhaseSpace = config.Uniform
	cfg.Helicity = config.HelicityUniform
	cfg.Colour = config.ColourUniform

	g, err := New(m, "e-,e+ > e-,e+", cfg, toyBeams(t, cfg), nil, nil)
	require.NoError(err)

	src := randsrc.New(3)
	// Prime max_weight so the first unweighted draw has something to
	// reject against.
	for i := 0; i < 20; i++ {
		_, err := g.GenerateOnce(src)
		require.NoError(err)
	}
	ev, err := g.GenerateUnweighted(src, 200)
	require.NoError(err)
	require.Greater(ev.Weight, 0.0)
}
