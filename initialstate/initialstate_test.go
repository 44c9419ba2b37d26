package initialstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/randsrc"
)

type flatPDF struct{}

func (flatPDF) XFX(id int, x, q2 float64) float64 { return 1 }

func TestPartonicBeamsAreBackToBack(t *testing.T) {
	require := require.New(t)
	cfg := config.TestParameters()
	cfg.Initial = config.Partonic
	b, err := New(cfg, 0, 0, nil, 0, 0)
	require.NoError(err)

	a, bMom, weight, err := b.Generate(randsrc.New(1))
	require.NoError(err)
	require.Equal(1.0, weight)
	require.InDelta(0, a[3]+bMom[3], 1e-9)
	require.Equal(cfg.BeamEnergy[0], a[0])
	require.Equal(cfg.BeamEnergy[1], bMom[0])
}

func TestProtonProtonRequiresPDFSet(t *testing.T) {
	require := require.New(t)
	cfg := config.TestParameters()
	cfg.Initial = config.ProtonProton
	_, err := New(cfg, 0, 0, nil, 2, -2)
	require.Error(err)
}

func TestProtonProtonSamplesMomentumFractions(t *testing.T) {
	require := require.New(t)
	cfg := config.TestParameters()
	cfg.Initial = config.ProtonProton
	b, err := New(cfg, 0, 0, flatPDF{}, 2, -2)
	require.NoError(err)

	a, bMom, weight, err := b.Generate(randsrc.New(2))
	require.NoError(err)
	require.Greater(weight, 0.0)
	require.LessOrEqual(a[0], cfg.BeamEnergy[0])
	require.LessOrEqual(bMom[0], cfg.BeamEnergy[1])
}

func TestNewRejectsNonPositiveBeamEnergy(t *testing.T) {
	require := require.New(t)
	cfg := config.TestParameters()
	cfg.BeamEnergy = [2]float64{0, 50}
	_, err := New(cfg, 0, 0, nil, 0, 0)
	require.Error(err)
}
