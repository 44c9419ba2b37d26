package colour

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorCountAndNormalization(t *testing.T) {
	require := require.New(t)

	for _, n := range []int{2, 3, 5} {
		g := NewGenerators(n)
		require.Len(g.Gen, n*n-1)

		for a := range g.Gen {
			var tr complex128
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					tr += g.T(a, i, j) * g.T(a, j, i)
				}
			}
			require.InDelta(0.5, real(tr), 1e-9, "Tr(T^a T^a) should be 1/2 for generator %d (N=%d)", a, n)
			require.InDelta(0, imag(tr), 1e-9)
		}
	}
}

func TestGeneratorsAreTraceless(t *testing.T) {
	require := require.New(t)
	g := NewGenerators(3)
	for a := range g.Gen {
		var tr complex128
		for i := 0; i < g.N; i++ {
			tr += g.T(a, i, i)
		}
		require.InDelta(0, cmplx.Abs(tr), 1e-9)
	}
}

func TestStructureConstantAntisymmetry(t *testing.T) {
	require := require.New(t)
	g := NewGenerators(3)

	fabc := g.StructureConstant(0, 1, 2)
	fbac := g.StructureConstant(1, 0, 2)
	require.InDelta(real(fabc), -real(fbac), 1e-9)
}

func TestFierzProductMatchesExplicitSum(t *testing.T) {
	require := require.New(t)
	g := NewGenerators(3)

	i, j, k, l := 0, 1, 1, 0
	var explicit complex128
	for a := range g.Gen {
		explicit += g.T(a, i, j) * g.T(a, k, l)
	}
	closed := g.FierzProduct(i, j, k, l)
	require.InDelta(real(explicit), real(closed), 1e-9)
	require.InDelta(imag(explicit), imag(closed), 1e-9)
}

func TestDeltaValue(t *testing.T) {
	require := require.New(t)
	d := Delta{N: 3}
	require.Equal(complex(1, 0), d.Value(1, 1))
	require.Equal(complex(0, 0), d.Value(1, 2))
}
