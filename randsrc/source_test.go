package randsrc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeterministicStream(t *testing.T) {
	require := require.New(t)

	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		require.Equal(a.Uint64(), b.Uint64())
	}
}

func TestFloat64Range(t *testing.T) {
	require := require.New(t)
	s := New(7)
	for i := 0; i < 10000; i++ {
		f := s.Float64()
		require.GreaterOrEqual(f, 0.0)
		require.Less(f, 1.0)
	}
}

func TestChoiceRespectsWeights(t *testing.T) {
	require := require.New(t)
	s := New(1)

	counts := make([]int, 3)
	weights := []float64{1, 0, 3}
	for i := 0; i < 4000; i++ {
		idx, ok := Choice(weights, s)
		require.True(ok)
		counts[idx]++
	}
	require.Zero(counts[1])
	require.Greater(counts[2], counts[0])

	_, ok := Choice([]float64{0, 0}, s)
	require.False(ok)
}
