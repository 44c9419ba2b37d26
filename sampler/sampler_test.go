package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/randsrc"
)

func buildToyModel() *model.Model {
	m := model.New("toy-qed", nil)
	e := model.NewParticle("e-", 11, 1, -1, model.Singlet, 1)
	p := model.NewParticle("e+", -11, 1, 1, model.Singlet, 1)
	g := model.NewParticle("gamma", 22, 2, 0, model.Singlet, 1)
	eID := m.InsertParticle(e)
	pID := m.InsertParticle(p)
	gID := m.InsertParticle(g)
	m.LinkAntiParticles(eID, pID)
	v := model.NewVertex([]model.ID{eID, pID, gID}, []complex128{complex(1, 0)}, model.RuleTable{}, model.MajoranaNone, true)
	_ = m.InsertVertex(v)
	return m
}

func buildToyQCDColourModel() *model.Model {
	m := model.New("toy-qcd-colour", nil)
	q := model.NewParticle("q", 1, 1, 1, model.Fundamental, 3)
	qbar := model.NewParticle("qbar", -1, 1, -1, model.AntiFundamental, 3)
	g := model.NewParticle("g", 21, 2, 0, model.Adjoint, 3)
	qID := m.InsertParticle(q)
	qbarID := m.InsertParticle(qbar)
	gID := m.InsertParticle(g)
	m.LinkAntiParticles(qID, qbarID)
	v := model.NewVertex([]model.ID{qID, qbarID, gID}, nil, model.RuleTable{}, model.MajoranaNone, true)
	_ = m.InsertVertex(v)
	return m
}

func TestSampleHelicitiesUniformWeightMatchesSpinDOFProduct(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()
	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)

	res, err := SampleHelicities(config.HelicityUniform, procs[0], randsrc.New(1))
	require.NoError(err)
	require.False(res.Summed)
	require.Len(res.Helicities, 4)
	require.InDelta(2*2*2*2, res.Weight, 1e-9) // spin-1/2 legs each have 2 helicity states
}

func TestSampleHelicitiesSumModeReturnsSummedFlag(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()
	procs, err := process.ParseAll(m, "e-,e+ > e-,e+")
	require.NoError(err)

	res, err := SampleHelicities(config.HelicitySpinorSum, procs[0], randsrc.New(1))
	require.NoError(err)
	require.True(res.Summed)
	require.Equal(1.0, res.Weight)
}

func TestSampleColoursFlowRequiresBalancedLegs(t *testing.T) {
	require := require.New(t)
	m := buildToyQCDColourModel()
	procs, err := process.ParseAll(m, "q,qbar > q,qbar")
	require.NoError(err)

	res, err := SampleColours(config.ColourFlowSampling, true, procs[0], randsrc.New(7))
	require.NoError(err)
	require.Greater(res.Weight, 0.0)
	require.Len(res.Indices, 4)
}

func TestSampleColoursUniformWeightsByDimension(t *testing.T) {
	require := require.New(t)
	m := buildToyQCDColourModel()
	procs, err := process.ParseAll(m, "q,qbar > g,g")
	require.NoError(err)

	res, err := SampleColours(config.ColourUniform, true, procs[0], randsrc.New(3))
	require.NoError(err)
	// two fundamental/antifundamental legs (dim 3 each) and two adjoint legs (dim 8 each)
	require.InDelta(3*3*8*8, res.Weight, 1e-9)
}

func TestRAMBOMasslessConservesEnergyMomentum(t *testing.T) {
	require := require.New(t)
	r := NewRAMBO([]float64{0, 0, 0}, 10)
	src := randsrc.New(99)
	res, err := r.Generate(src, 100)
	require.NoError(err)
	require.Len(res.Momenta, 3)
	require.Greater(res.Weight, 0.0)

	var sum model.Momentum
	for _, p := range res.Momenta {
		sum = sum.Add(p)
	}
	require.InDelta(100, sum[0], 1e-6)
	require.InDelta(0, sum[1], 1e-6)
	require.InDelta(0, sum[2], 1e-6)
	require.InDelta(0, sum[3], 1e-6)
}

func TestRAMBOMassiveConservesEnergyAndHitsTargetMasses(t *testing.T) {
	require := require.New(t)
	r := NewRAMBO([]float64{10, 20}, 20)
	src := randsrc.New(5)
	res, err := r.Generate(src, 100)
	require.NoError(err)
	require.Len(res.Momenta, 2)

	var sum model.Momentum
	for i, p := range res.Momenta {
		sum = sum.Add(p)
		require.InDelta(r.Masses[i], p.Mass(), 1e-4)
	}
	require.InDelta(100, sum[0], 1e-4)
	require.False(math.IsNaN(res.Weight))
}
