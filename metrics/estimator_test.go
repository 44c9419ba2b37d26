package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrossSectionMeanAndRejects(t *testing.T) {
	require := require.New(t)

	var c CrossSection
	c.Observe(1.0)
	c.Observe(0.0)
	c.Observe(3.0)

	require.EqualValues(3, c.N())
	require.EqualValues(1, c.Rejects())
	require.InDelta(4.0/3.0, c.Mean(), 1e-12)
	require.Greater(c.StdError(), 0.0)
}

func TestCrossSectionConstantWeightHasZeroVariance(t *testing.T) {
	require := require.New(t)

	var c CrossSection
	for i := 0; i < 1000; i++ {
		c.Observe(2.5)
	}
	require.InDelta(2.5, c.Mean(), 1e-9)
	require.True(c.Variance() < 1e-18 || math.Abs(c.Variance()) < 1e-12)
}
