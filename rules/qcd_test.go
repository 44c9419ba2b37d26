package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/tensor"
	"github.com/qflow/ampcore/tree"
)

func buildToyQCDModel() *model.Model {
	m := model.New("toy-qcd", nil)
	q := model.NewParticle("q", 1, 1, 1, model.Fundamental, 3)
	qbar := model.NewParticle("qbar", -1, 1, -1, model.AntiFundamental, 3)
	g := model.NewParticle("g", 21, 2, 0, model.Adjoint, 3)
	qID := m.InsertParticle(q)
	qbarID := m.InsertParticle(qbar)
	gID := m.InsertParticle(g)
	m.LinkAntiParticles(qID, qbarID)

	v := model.NewVertex([]model.ID{qID, qbarID, gID}, []complex128{complex(1, 0)}, QuarkGluonRuleTable(3), model.MajoranaNone, true)
	_ = m.InsertVertex(v)
	return m
}

// TestQuarkGluonRuleProducesNonzeroColourFlow exercises the colour
// contraction directly, bypassing Lorentz structure: a quark with colour
// amplitude concentrated at index 0 and an antiquark at anti-index 0
// should source a nonzero gluon adjoint amplitude through the generator
// matrices, since T^a_00 isn't identically zero for every a.
func TestQuarkGluonRuleProducesNonzeroColourFlow(t *testing.T) {
	require := require.New(t)
	rule := BuildQuarkGluonRule(3, 2)

	quark := tensor.New(3)
	antiquark := tensor.New(3)
	gluon := tensor.New(8)
	_ = quark.SetAt(1, 0)
	_ = antiquark.SetAt(1, 0)

	iters := []tensor.Iterator{quark.Begin(), antiquark.Begin(), gluon.Begin()}
	rule(1, nil, iters, nil)

	var total complex128
	for a := 0; a < 8; a++ {
		v, _ := gluon.At(a)
		total += v * v
	}
	require.NotEqual(complex(0, 0), total)
}

func TestQuarkGluonVertexBuildsIntoProcessTree(t *testing.T) {
	require := require.New(t)
	m := buildToyQCDModel()
	procs, err := process.ParseAll(m, "q,qbar > q,qbar")
	require.NoError(err)
	require.Len(procs, 1)

	tr, err := tree.Build(m, procs[0], tree.DefaultFinalLeg)
	require.NoError(err)
	require.Greater(tr.NumCurrents(), 4)
}
