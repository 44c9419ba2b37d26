package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultAndTestParametersAreValid(t *testing.T) {
	require := require.New(t)
	require.NoError(DefaultParameters().Valid())
	require.NoError(TestParameters().Valid())
}

func TestValidRejectsBadKnobs(t *testing.T) {
	require := require.New(t)

	p := DefaultParameters()
	p.BeamEnergy[0] = 0
	require.ErrorIs(p.Valid(), ErrInvalidBeamEnergy)

	p = DefaultParameters()
	p.DiscardedHighWeightFraction = 1
	require.ErrorIs(p.Valid(), ErrInvalidEpsilon)

	p = DefaultParameters()
	p.GridBinCap = 0
	require.ErrorIs(p.Valid(), ErrInvalidGridBinCap)
}

func TestExponentOverride(t *testing.T) {
	require := require.New(t)
	e := Exponents{Timelike: 1.5, PerParticle: map[string]float64{"Z": 2.0}}
	require.Equal(2.0, e.ExponentFor("Z", e.Timelike))
	require.Equal(1.5, e.ExponentFor("gamma", e.Timelike))
}
