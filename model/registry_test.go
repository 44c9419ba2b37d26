package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildToyQED returns a minimal three-particle model (electron, positron,
// photon) with a single eeγ vertex, used to test the fusion map without
// needing a full Standard Model definition.
func buildToyQED() (*Model, ID, ID, ID, *Vertex) {
	m := New("toy-qed", nil)

	electron := NewParticle("e-", 11, 1, -1, Singlet, 1)
	positron := NewParticle("e+", -11, 1, 1, Singlet, 1)
	photon := NewParticle("gamma", 22, 2, 0, Singlet, 1)

	eID := m.InsertParticle(electron)
	pID := m.InsertParticle(positron)
	gID := m.InsertParticle(photon)
	m.LinkAntiParticles(eID, pID)
	// photon is self-conjugate: antiParticle already defaults to itself.

	v := NewVertex([]ID{eID, pID, gID}, []complex128{complex(0.3, 0)}, RuleTable{}, MajoranaNone, true)
	_ = m.InsertVertex(v)

	return m, eID, pID, gID, v
}

func TestParticleLookupsAndAntiParticleLink(t *testing.T) {
	require := require.New(t)
	m, eID, pID, gID, _ := buildToyQED()

	require.Equal(eID, m.GetParticleByName("e-").ID())
	require.Equal(pID, m.GetParticleByPDG(-11).ID())
	require.Nil(m.GetParticleByName("mu-"))

	require.Equal(pID, m.particles[eID].AntiParticle())
	require.Equal(eID, m.particles[pID].AntiParticle())
	require.Equal(gID, m.particles[gID].AntiParticle())
}

func TestFusionMapProducesExpectedEntries(t *testing.T) {
	require := require.New(t)
	m, eID, pID, gID, v := buildToyQED()

	// e- + e+ -> gamma: the incoming multiset required is the
	// anti-particles of the vertex's non-produced legs. Producing the
	// photon (leg index 2) requires incoming {antiparticle(e-), antiparticle(e+)}
	// = {e+, e-}.
	entries := m.Fusions([]ID{pID, eID})
	require.Len(entries, 1)
	require.Equal(gID, entries[0].Produced)
	require.Equal(v, entries[0].Vertex)
	require.Equal(2, entries[0].ProducedLeg)

	// producing the electron (leg 0) requires incoming {antiparticle(e+)=e-, antiparticle(gamma)=gamma}
	entries = m.Fusions([]ID{eID, gID})
	require.Len(entries, 1)
	require.Equal(eID, entries[0].Produced)
	require.Equal(0, entries[0].ProducedLeg)

	// an unrelated multiset has no fusion.
	require.Empty(m.Fusions([]ID{gID, gID}))
}

func TestEraseVertexRemovesFusionEntries(t *testing.T) {
	require := require.New(t)
	m, eID, pID, _, v := buildToyQED()

	m.EraseVertex(v)
	require.Empty(m.Fusions([]ID{pID, eID}))
	require.Equal(0, m.NumVertices())
}

func TestFamilies(t *testing.T) {
	require := require.New(t)
	m, _, _, _, _ := buildToyQED()

	require.NoError(m.ConstructFamily("leptons", []string{"e-", "e+"}))
	require.Len(m.FamilyMembers("leptons"), 2)

	err := m.ConstructFamily("bad", []string{"e-", "mu-"})
	require.Error(err)
}
