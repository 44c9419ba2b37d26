// Package process parses the external interface grammar of spec §6 ("Process
// selection string": `phi1,phi2,...,phiN_in > psi1,...,psiN_out`) into
// concrete external-leg assignments against a model registry.
package process

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qflow/ampcore/model"
)

// ErrInvalidProcessString is the spec §7 "Invalid process string" error
// kind: parser failure. A Process built from a failing parse is marked
// invalid; every subsequent call on it is a documented no-op.
var ErrInvalidProcessString = errors.New("process: invalid process string")

// Direction distinguishes incoming from outgoing external legs.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

// Leg is one external leg: the particle as written in the process string,
// its direction, and the particle actually flowing into the diagram after
// crossing outgoing legs to their anti-particle (spec §4.4's uniform
// "incoming to the recursion" convention).
type Leg struct {
	Particle  model.ID // the physical particle on this leg
	Direction Direction
	Internal  model.ID // Particle for Incoming legs, AntiParticle(Particle) for Outgoing
}

// Process is one fixed external flavour assignment (spec §3's Process
// entity, minus the tree pointer which package tree attaches).
type Process struct {
	Model *model.Model
	Legs  []Leg
	Raw   string

	valid bool
}

// Valid reports whether this process was built from a well-formed string
// and every token resolved to a known particle (spec §7 propagation
// policy: "subsequent calls on that process become no-ops returning
// zero").
func (p *Process) Valid() bool { return p.valid }

// NIn returns the number of incoming legs.
func (p *Process) NIn() int {
	n := 0
	for _, l := range p.Legs {
		if l.Direction == Incoming {
			n++
		}
	}
	return n
}

// NOut returns the number of outgoing legs.
func (p *Process) NOut() int { return len(p.Legs) - p.NIn() }

// SortedFlavourKey returns a canonical string key for this process'
// flavour content, used by the algorithm facade to recognize identical
// subprocesses (spec §3 "sorted-flavour key").
func (p *Process) SortedFlavourKey() string {
	ids := make([]int, len(p.Legs))
	for i, l := range p.Legs {
		ids[i] = int(l.Particle)
	}
	// simple insertion sort; process leg counts are tiny (<=~12)
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	sb := strings.Builder{}
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d,", id)
	}
	return sb.String()
}

// ParseAll parses a process selection string into one Process per concrete
// flavour assignment, expanding any family tokens (spec §4.3
// "construct_family") via Cartesian product. A malformed string returns a
// single invalid Process and ErrInvalidProcessString, per spec §7.
func ParseAll(m *model.Model, s string) ([]*Process, error) {
	sides := strings.Split(s, ">")
	if len(sides) != 2 {
		return []*Process{{Raw: s, Model: m, valid: false}}, fmt.Errorf("%w: expected exactly one '>', got %d", ErrInvalidProcessString, len(sides)-1)
	}
	inTokens, err := tokenize(sides[0])
	if err != nil {
		return []*Process{{Raw: s, Model: m, valid: false}}, err
	}
	outTokens, err := tokenize(sides[1])
	if err != nil {
		return []*Process{{Raw: s, Model: m, valid: false}}, err
	}
	if len(inTokens) == 0 || len(outTokens) == 0 {
		return []*Process{{Raw: s, Model: m, valid: false}}, fmt.Errorf("%w: empty incoming or outgoing list", ErrInvalidProcessString)
	}

	inOptions, err := resolveTokens(m, inTokens)
	if err != nil {
		return []*Process{{Raw: s, Model: m, valid: false}}, err
	}
	outOptions, err := resolveTokens(m, outTokens)
	if err != nil {
		return []*Process{{Raw: s, Model: m, valid: false}}, err
	}

	var processes []*Process
	cartesian(inOptions, func(in []model.ID) {
		cartesian(outOptions, func(out []model.ID) {
			processes = append(processes, buildProcess(m, s, in, out))
		})
	})
	return processes, nil
}

func tokenize(side string) ([]string, error) {
	fields := strings.Split(side, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("%w: empty particle token", ErrInvalidProcessString)
		}
		out = append(out, f)
	}
	return out, nil
}

// resolveTokens returns, for each token, the list of concrete particle ids
// it can mean (a single id for a plain particle name, or a family's
// members).
func resolveTokens(m *model.Model, tokens []string) ([][]model.ID, error) {
	options := make([][]model.ID, len(tokens))
	for i, tok := range tokens {
		if family := m.FamilyMembers(tok); family != nil {
			options[i] = family
			continue
		}
		p := m.GetParticleByName(tok)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown particle or family %q", ErrInvalidProcessString, tok)
		}
		options[i] = []model.ID{p.ID()}
	}
	return options, nil
}

// cartesian invokes emit once per combination drawn from options.
func cartesian(options [][]model.ID, emit func([]model.ID)) {
	combo := make([]model.ID, len(options))
	var recurse func(i int)
	recurse = func(i int) {
		if i == len(options) {
			emit(append([]model.ID(nil), combo...))
			return
		}
		for _, id := range options[i] {
			combo[i] = id
			recurse(i + 1)
		}
	}
	recurse(0)
}

func buildProcess(m *model.Model, raw string, in, out []model.ID) *Process {
	legs := make([]Leg, 0, len(in)+len(out))
	for _, id := range in {
		legs = append(legs, Leg{Particle: id, Direction: Incoming, Internal: id})
	}
	for _, id := range out {
		p := m.GetParticleByID(id)
		internal := id
		if p != nil {
			internal = p.AntiParticle()
		}
		legs = append(legs, Leg{Particle: id, Direction: Outgoing, Internal: internal})
	}
	return &Process{Model: m, Legs: legs, Raw: raw, valid: true}
}
