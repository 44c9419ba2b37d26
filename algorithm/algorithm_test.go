package algorithm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/tensor"
)

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

func TestAlgorithmEvaluateAndSum(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()

	a, err := New(m, "e-,e+ > e-,e+", DefaultFinalLeg, false, true)
	require.NoError(err)
	require.True(a.ValidProcess())
	require.Equal(1, a.NSubprocess())

	momenta := []model.Momentum{
		{50, 0, 0, 50},
		{50, 0, 0, -50},
		{50, 30, 0, 0},
		{50, -30, 0, 0},
	}
	helicities := []int{0, 0, 0, 0}

	amp, err := a.Evaluate(0, momenta, helicities)
	require.NoError(err)

	m2, err := a.EvaluateSum(momenta, helicities)
	require.NoError(err)
	require.InDelta(real(amp)*real(amp)+imag(amp)*imag(amp), m2, 1e-9)
}

func TestAlgorithmRejectsInvalidProcess(t *testing.T) {
	require := require.New(t)
	m := buildToyScalarQED()

	_, err := New(m, "e-,e+ mu-", DefaultFinalLeg, false, false)
	require.Error(err)
}
