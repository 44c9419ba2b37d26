package process

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qflow/ampcore/model"
)

func buildToyModel() *model.Model {
	m := model.New("toy-qed", nil)
	e := model.NewParticle("e-", 11, 1, -1, model.Singlet, 1)
	p := model.NewParticle("e+", -11, 1, 1, model.Singlet, 1)
	g := model.NewParticle("gamma", 22, 2, 0, model.Singlet, 1)
	eID := m.InsertParticle(e)
	pID := m.InsertParticle(p)
	m.InsertParticle(g)
	m.LinkAntiParticles(eID, pID)
	_ = m.ConstructFamily("leptons", []string{"e-", "e+"})
	return m
}

func TestParseAllPlainProcess(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()

	procs, err := ParseAll(m, "e-,e+ > gamma")
	require.NoError(err)
	require.Len(procs, 1)
	p := procs[0]
	require.True(p.Valid())
	require.Equal(2, p.NIn())
	require.Equal(1, p.NOut())

	electron := m.GetParticleByName("e-")
	gamma := m.GetParticleByName("gamma")
	require.Equal(electron.ID(), p.Legs[0].Internal)
	require.Equal(gamma.AntiParticle(), p.Legs[2].Internal)
}

func TestParseAllExpandsFamilies(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()

	procs, err := ParseAll(m, "leptons,gamma > leptons")
	require.NoError(err)
	// 2 choices for the first incoming leg x 2 choices for the outgoing leg
	require.Len(procs, 4)
	for _, p := range procs {
		require.True(p.Valid())
	}
}

func TestParseAllRejectsMalformedString(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()

	for _, s := range []string{
		"e-,e+ gamma",     // missing '>'
		"e-,e+ > ",        // empty outgoing side
		"e-, > gamma",     // empty token
		"e-,mu- > gamma",  // unknown particle
		"e-,e+ > gamma > gamma",
	} {
		procs, err := ParseAll(m, s)
		require.Error(err, s)
		require.Len(procs, 1, s)
		require.False(procs[0].Valid(), s)
	}
}

func TestSortedFlavourKeyIsOrderIndependent(t *testing.T) {
	require := require.New(t)
	m := buildToyModel()

	a, err := ParseAll(m, "e-,e+ > gamma")
	require.NoError(err)
	b, err := ParseAll(m, "e+,e- > gamma")
	require.NoError(err)

	require.Equal(a[0].SortedFlavourKey(), b[0].SortedFlavourKey())
}
