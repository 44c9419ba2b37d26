package parni

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/randsrc"
)

func TestGenerateStaysInDomainAndReportsPositiveWeight(t *testing.T) {
	require := require.New(t)
	g, err := New([]float64{0, 0}, []float64{1, 2}, 16, RunningSum)
	require.NoError(err)

	src := randsrc.New(7)
	for i := 0; i < 200; i++ {
		p, w := g.Generate(src)
		require.Len(p, 2)
		require.GreaterOrEqual(p[0], 0.0)
		require.Less(p[0], 1.0)
		require.GreaterOrEqual(p[1], 0.0)
		require.Less(p[1], 2.0)
		require.Greater(w, 0.0)
		g.Update(1.0)
	}
}

func TestAdaptGrowsThenCapsBinCount(t *testing.T) {
	require := require.New(t)
	g, err := New([]float64{0}, []float64{10}, 4, Maximum)
	require.NoError(err)

	src := randsrc.New(11)
	for i := 0; i < 50; i++ {
		_, _ = g.Generate(src)
		g.Update(src.Float64() * 10)
		g.Adapt()
	}
	require.LessOrEqual(g.NumBins(), 4)
	require.Greater(g.NumBins(), 1)
}

func TestIntegralConvergesOnUniformIntegrand(t *testing.T) {
	require := require.New(t)
	g, err := New([]float64{0}, []float64{1}, 8, RunningSum)
	require.NoError(err)

	src := randsrc.New(3)
	for i := 0; i < 20000; i++ {
		_, _ = g.Generate(src)
		g.Update(1.0) // integrand f(x) = 1 over [0,1]: ∫f = 1
	}
	require.InDelta(1.0, g.Integral(), 0.05)
}

func TestEvaluateWeightMatchesADeterministicPoint(t *testing.T) {
	require := require.New(t)
	g, err := New([]float64{0}, []float64{1}, 2, RunningSum)
	require.NoError(err)
	g.split(0) // force one split so EvaluateWeight exercises the non-leaf path

	w, err := g.EvaluateWeight([]float64{0.25})
	require.NoError(err)
	require.False(math.IsNaN(w))
	require.Greater(w, 0.0)
}

func TestSubGridStaysWithinItsRectangle(t *testing.T) {
	require := require.New(t)
	g, err := New([]float64{0}, []float64{10}, 8, RunningSum)
	require.NoError(err)
	sg := g.SubGrid([]float64{2}, []float64{4})

	src := randsrc.New(5)
	for i := 0; i < 50; i++ {
		p, w := sg.Generate(src)
		require.GreaterOrEqual(p[0], 2.0)
		require.Less(p[0], 4.0)
		require.Greater(w, 0.0)
		sg.Update(1.0)
	}
}
