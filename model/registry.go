// Package model implements the model registry of spec §4.3: it owns the
// particle and vertex lists of one quantum field theory model and answers
// flavour/name/PDG lookups plus the fusion-map query process-tree
// construction depends on ("which vertex fuses these N-1 particles into
// which produced particle?").
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qflow/ampcore/errs"
	"github.com/qflow/ampcore/log"
)

// Model is a process-wide registry of particles and vertices, read-after-
// construction per spec §5's concurrency model.
type Model struct {
	Tag string

	particles []*Particle
	byName    map[string]ID
	byPDG     map[int]ID
	families  map[string][]ID

	vertices []*Vertex
	fusion   map[string][]FusionEntry

	log log.Logger
}

// FusionEntry is spec §3's Fusion entry: a produced particle, the vertex
// that produces it, and the produced leg's index within that vertex.
type FusionEntry struct {
	Produced    ID
	Vertex      *Vertex
	ProducedLeg int
}

// New returns an empty Model tagged with tag, logging through l (or a
// no-op logger if l is nil).
func New(tag string, l log.Logger) *Model {
	if l == nil {
		l = log.NewNoOpLogger()
	}
	return &Model{
		Tag:      tag,
		byName:   make(map[string]ID),
		byPDG:    make(map[int]ID),
		families: make(map[string][]ID),
		fusion:   make(map[string][]FusionEntry),
		log:      l,
	}
}

// InsertParticle registers p and assigns it the next internal flavour
// index. Every particle starts out as its own anti-particle; call
// LinkAntiParticles once both members of a conjugate pair are inserted.
func (m *Model) InsertParticle(p *Particle) ID {
	id := ID(len(m.particles))
	p.id = id
	p.antiParticle = id
	m.particles = append(m.particles, p)
	m.byName[p.Name] = id
	m.byPDG[p.PDG] = id
	return id
}

// LinkAntiParticles records that a and b are mutual anti-particles (spec
// §3 "anti-particle back-link"). Call after both have been inserted.
func (m *Model) LinkAntiParticles(a, b ID) {
	m.particles[a].antiParticle = b
	m.particles[b].antiParticle = a
}

// GetParticleByName returns the particle registered under name, or nil
// with a logged warning on miss (spec §4.3 "get_particle").
func (m *Model) GetParticleByName(name string) *Particle {
	id, ok := m.byName[name]
	if !ok {
		m.log.Warn("model: unknown particle name", zap.String("name", name))
		return nil
	}
	return m.particles[id]
}

// GetParticleByID returns the particle at flavour index id, or nil on miss.
func (m *Model) GetParticleByID(id ID) *Particle {
	if int(id) < 0 || int(id) >= len(m.particles) {
		m.log.Warn("model: flavour index out of range")
		return nil
	}
	return m.particles[id]
}

// GetParticleByPDG returns the particle with the given PDG id, or nil on miss.
func (m *Model) GetParticleByPDG(pdg int) *Particle {
	id, ok := m.byPDG[pdg]
	if !ok {
		m.log.Warn("model: unknown PDG id")
		return nil
	}
	return m.particles[id]
}

// ConstructFamily defines a named particle family, e.g. "q" -> the quark
// flavours, used by the process-string parser's shorthand (spec §4.3).
func (m *Model) ConstructFamily(name string, members []string) error {
	var e errs.Errs
	ids := make([]ID, 0, len(members))
	for _, mname := range members {
		id, ok := m.byName[mname]
		if !ok {
			e.Add(fmt.Errorf("model: family %q references unknown particle %q", name, mname))
			continue
		}
		ids = append(ids, id)
	}
	if e.Errored() {
		return e.Err()
	}
	m.families[name] = ids
	return nil
}

// FamilyMembers returns the particle ids of a named family, or nil.
func (m *Model) FamilyMembers(name string) []ID {
	return m.families[name]
}

// InsertVertex registers v and populates the fusion map for every choice
// of produced leg (spec §4.3 "insert_vertex also populates the fusion map
// for every permutation of (N-1) legs that yields a valid produced leg").
func (m *Model) InsertVertex(v *Vertex) error {
	if len(v.Legs) < 3 || len(v.Legs) > 4 {
		return fmt.Errorf("model: vertex must have 3 or 4 legs, got %d", len(v.Legs))
	}
	m.vertices = append(m.vertices, v)
	for produced := range v.Legs {
		incoming := make([]ID, 0, len(v.Legs)-1)
		for i, leg := range v.Legs {
			if i == produced {
				continue
			}
			incoming = append(incoming, m.particles[leg].antiParticle)
		}
		producedParticle := v.Legs[produced]
		key := multisetKey(incoming)
		m.fusion[key] = append(m.fusion[key], FusionEntry{
			Produced:    producedParticle,
			Vertex:      v,
			ProducedLeg: produced,
		})
	}
	return nil
}

// Fusions returns every (produced particle, vertex, produced-leg) entry
// whose required incoming multiset matches incoming, ordered by
// particle-flavour key (spec §4.3 "Fusion lookup").
func (m *Model) Fusions(incoming []ID) []FusionEntry {
	entries := m.fusion[multisetKey(incoming)]
	sorted := append([]FusionEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Produced < sorted[j].Produced })
	return sorted
}

// EraseVertex removes v from the registry and its fusion entries.
func (m *Model) EraseVertex(v *Vertex) {
	out := m.vertices[:0]
	for _, existing := range m.vertices {
		if existing != v {
			out = append(out, existing)
		}
	}
	m.vertices = out
	for key, entries := range m.fusion {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Vertex != v {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(m.fusion, key)
		} else {
			m.fusion[key] = filtered
		}
	}
}

// DecoupleVertex marks v as not participating in evaluation without
// removing it from the registry (spec §4.3 "decouple_vertex").
func (m *Model) DecoupleVertex(v *Vertex) { v.Decouple() }

// DecoupleParticle marks p as not participating in evaluation.
func (m *Model) DecoupleParticle(p *Particle) { p.Decouple() }

// EraseParticle removes every vertex that references p and drops p from
// the name and PDG lookups. p keeps its flavour index and stays reachable
// through GetParticleByID.
func (m *Model) EraseParticle(p *Particle) {
	var dependent []*Vertex
	for _, v := range m.vertices {
		for _, leg := range v.Legs {
			if leg == p.id {
				dependent = append(dependent, v)
				break
			}
		}
	}
	for _, v := range dependent {
		m.EraseVertex(v)
	}
	delete(m.byName, p.Name)
	delete(m.byPDG, p.PDG)
}

// NumParticles returns the number of registered particles.
func (m *Model) NumParticles() int { return len(m.particles) }

// NumVertices returns the number of registered vertices.
func (m *Model) NumVertices() int { return len(m.vertices) }

func multisetKey(ids []ID) string {
	sorted := append([]ID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
