// Package tree builds and evaluates the off-shell current recursion of
// spec §4.4: starting from the external legs of a process, it fuses
// disjoint leg subsets through the model's fusion map level by level,
// producing the arena of currents and interactions that evaluate walks
// for every phase-space point. Currents and interactions are referenced
// by arena index rather than pointer, so the tree has no cyclic
// references and can be built once and evaluated many times.
package tree

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/qflow/ampcore/bitkey"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
)

// Current is one node of the recursion: the off-shell (or external) leg
// identified by a leg bitstring and a flavour. Its In list names the
// interactions that can produce it — more than one when several
// diagrams share a produced flavour on the same leg subset (spec §3
// "diagram multiplicity").
type Current struct {
	Bits     bitkey.Bitstring
	Mask     uint64
	Particle model.ID
	External int // external leg index, or -1 for an internal current
	In       []int

	// FermionOrder lists, in canonical ascending order, the external
	// fermion-leg indices folded into this current by the vertices built
	// so far. Empty for currents with no fermion content. Kept sorted at
	// every step so a later vertex only needs to interleave already-
	// ordered chains (spec §3 "Fermi sign... determined during tree
	// construction by counting crossings of fermion lines").
	FermionOrder []int
	// FermionFlowOutgoing records, for a current that continues a single
	// fermion line, whether the external leg that line originated from
	// was outgoing. Used to pick the correct Majorana charge-conjugation
	// variant at whatever vertex later consumes this current.
	FermionFlowOutgoing bool
}

// isFermion reports whether p has spin-1/2 quantum numbers.
func isFermion(p *model.Particle) bool { return p != nil && p.Spin == 1 }

// Interaction is one fusion of factor currents through a model vertex
// into a produced current (spec §3 "Interaction entity").
type Interaction struct {
	Vertex      *model.Vertex
	Factors     []int // current indices, in vertex leg order minus the produced leg
	ProducedLeg int
	Produced    int // current index

	// FermiSign is the ±1 relative sign contributed by this fusion,
	// counted from the number of fermion-line crossings needed to merge
	// the factors' FermionOrder chains (spec §3, §4.4 step 5 "assign
	// Fermi signs"). 1 for vertices with no fermion content.
	FermiSign int
}

// Tree is the built topology for one process: every current and
// interaction reachable from the external legs, keyed so that Evaluate
// can walk it for arbitrary momenta and helicities.
type Tree struct {
	Model   *model.Model
	Process *process.Process

	nLegs    int
	sinkLeg  int
	universe uint64

	Currents     []Current
	Interactions []Interaction

	external []int // external leg index -> current index
	byMask   map[uint64]map[model.ID]int
	top      []int // current indices at mask == universe

	diagramCount int // cached DiagramCount, 0 means "not yet computed"
}

// ErrNoDiagrams is returned by Build when the process' flavour content
// has no fusion path at all (spec §7 "process with zero diagrams").
var ErrNoDiagrams = fmt.Errorf("tree: process has no contributing diagrams")

// DefaultFinalLeg tells Build to use the process's last external leg as
// the contraction sink.
const DefaultFinalLeg = -1

// Build constructs the current/interaction arena for p against m (spec
// §4.4). finalLeg names the external leg singled out as the
// contraction sink: every other leg is built up into internal currents,
// and the top-level currents spanning every leg but finalLeg are
// contracted directly against finalLeg's wave function in Evaluate,
// rather than fused through one more vertex. Pass DefaultFinalLeg to use
// the process's last leg. The amplitude is invariant under this choice
// (spec §8); callers exercising that invariant build the tree twice with
// different finalLeg values.
func Build(m *model.Model, p *process.Process, finalLeg int) (*Tree, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("tree: cannot build from an invalid process")
	}
	n := len(p.Legs)
	if n < 3 {
		return nil, fmt.Errorf("tree: process needs at least 3 external legs, got %d", n)
	}
	if finalLeg == DefaultFinalLeg {
		finalLeg = n - 1
	}
	if finalLeg < 0 || finalLeg >= n {
		return nil, fmt.Errorf("tree: final leg %d out of range [0,%d)", finalLeg, n)
	}

	var universe uint64
	for i := 0; i < n; i++ {
		if i == finalLeg {
			continue
		}
		universe |= uint64(1) << uint(i)
	}

	t := &Tree{
		Model:    m,
		Process:  p,
		nLegs:    n,
		sinkLeg:  finalLeg,
		universe: universe,
		external: make([]int, n),
		byMask:   make(map[uint64]map[model.ID]int),
	}
	t.external[finalLeg] = -1

	for i := 0; i < n; i++ {
		if i == finalLeg {
			continue
		}
		mask := uint64(1) << uint(i)
		idx := t.addCurrent(mask, p.Legs[i].Internal, i)
		t.external[i] = idx
		if particle := m.GetParticleByID(p.Legs[i].Internal); isFermion(particle) {
			t.Currents[idx].FermionOrder = []int{i}
			t.Currents[idx].FermionFlowOutgoing = p.Legs[i].Direction == process.Outgoing
		}
	}

	maxLevel := bits.OnesCount64(universe)
	for level := 2; level <= maxLevel; level++ {
		for sub := universe; ; sub = (sub - 1) & universe {
			if bits.OnesCount64(sub) == level {
				t.buildMask(sub)
			}
			if sub == 0 {
				break
			}
		}
	}

	if byParticle, ok := t.byMask[universe]; ok {
		for _, idx := range byParticle {
			t.top = append(t.top, idx)
		}
	}
	if len(t.top) == 0 {
		return nil, ErrNoDiagrams
	}
	return t, nil
}

// addCurrent returns the index of the current at (mask, particle),
// creating it if it doesn't already exist.
func (t *Tree) addCurrent(mask uint64, particle model.ID, external int) int {
	byParticle, ok := t.byMask[mask]
	if !ok {
		byParticle = make(map[model.ID]int)
		t.byMask[mask] = byParticle
	}
	if idx, ok := byParticle[particle]; ok {
		return idx
	}
	idx := len(t.Currents)
	t.Currents = append(t.Currents, Current{
		Bits:     maskToBitstring(mask, t.nLegs),
		Mask:     mask,
		Particle: particle,
		External: external,
	})
	byParticle[particle] = idx
	return idx
}

func maskToBitstring(mask uint64, nLegs int) bitkey.Bitstring {
	b := bitkey.Empty(uint(nLegs))
	for i := 0; i < nLegs; i++ {
		if mask&(uint64(1)<<uint(i)) != 0 {
			b = b.Set(uint(i))
		}
	}
	return b
}

// buildMask fuses every disjoint partition of mask into 2 (3-point
// vertex) or 3 (4-point vertex) parts already present in the arena,
// inserting a new interaction and produced current per matching fusion
// map entry (spec §4.4 step 2).
func (t *Tree) buildMask(mask uint64) {
	t.fuseTwo(mask)
	t.fuseThree(mask)
}

func (t *Tree) fuseTwo(mask uint64) {
	for m1 := (mask - 1) & mask; m1 != 0; m1 = (m1 - 1) & mask {
		m2 := mask ^ m1
		if m1 >= m2 {
			continue // unordered pair, process once
		}
		currents1 := t.byMask[m1]
		currents2 := t.byMask[m2]
		for p1, idx1 := range currents1 {
			for p2, idx2 := range currents2 {
				t.applyFusions(mask, []model.ID{p1, p2}, []int{idx1, idx2})
			}
		}
	}
}

func (t *Tree) fuseThree(mask uint64) {
	for m1 := (mask - 1) & mask; m1 != 0; m1 = (m1 - 1) & mask {
		rest := mask ^ m1
		for m2 := (rest - 1) & rest; m2 != 0; m2 = (m2 - 1) & rest {
			m3 := rest ^ m2
			if !(m1 < m2 && m2 < m3) {
				continue // unordered triple, process once
			}
			currents1 := t.byMask[m1]
			currents2 := t.byMask[m2]
			currents3 := t.byMask[m3]
			for p1, idx1 := range currents1 {
				for p2, idx2 := range currents2 {
					for p3, idx3 := range currents3 {
						t.applyFusions(mask, []model.ID{p1, p2, p3}, []int{idx1, idx2, idx3})
					}
				}
			}
		}
	}
}

func (t *Tree) applyFusions(mask uint64, incoming []model.ID, factors []int) {
	for _, entry := range t.Model.Fusions(incoming) {
		ordered := t.orderFactorsForVertex(entry.Vertex, entry.ProducedLeg, factors)
		order, sign := t.fermionCrossingSign(ordered)
		produced := t.addCurrent(mask, entry.Produced, -1)
		interIdx := len(t.Interactions)
		t.Interactions = append(t.Interactions, Interaction{
			Vertex:      entry.Vertex,
			Factors:     ordered,
			ProducedLeg: entry.ProducedLeg,
			Produced:    produced,
			FermiSign:   sign,
		})
		t.Currents[produced].In = append(t.Currents[produced].In, interIdx)
		if particle := t.Model.GetParticleByID(entry.Produced); isFermion(particle) && len(t.Currents[produced].FermionOrder) == 0 {
			t.Currents[produced].FermionOrder = order
			t.Currents[produced].FermionFlowOutgoing = t.fermionFlowForProduced(entry.Vertex, entry.ProducedLeg, ordered)
		}
	}
}

// fermionCrossingSign merges the FermionOrder chains of factors (already
// aligned to the vertex's declared leg order) into one canonically
// sorted chain, returning that chain and the sign of the permutation
// needed to reach it from the vertex-order concatenation. Each
// out-of-order adjacent pair is one fermion-line crossing and
// contributes one sign flip (spec §3 "Fermi sign... determined by
// counting crossings of fermion lines"); chains are themselves always
// stored pre-sorted, so only crossings introduced at this vertex are
// counted.
func (t *Tree) fermionCrossingSign(factors []int) (order []int, sign int) {
	sign = 1
	for _, fidx := range factors {
		for _, v := range t.Currents[fidx].FermionOrder {
			for _, existing := range order {
				if existing > v {
					sign = -sign
				}
			}
			order = append(order, v)
		}
	}
	sort.Ints(order)
	return order, sign
}

// fermionFlowForProduced inherits FermionFlowOutgoing from the sole
// other fermionic, non-produced leg of v — fermion-number conservation
// guarantees exactly one at the fermion-boson-fermion vertices this
// covers; vertices with more than one fermion pair (four-fermion
// contact terms) take the first one found, a documented approximation.
func (t *Tree) fermionFlowForProduced(v *model.Vertex, producedLeg int, ordered []int) bool {
	pos := 0
	for legIdx := range v.Legs {
		if legIdx == producedLeg {
			continue
		}
		fidx := ordered[pos]
		pos++
		if isFermion(t.Model.GetParticleByID(t.Currents[fidx].Particle)) {
			return t.Currents[fidx].FermionFlowOutgoing
		}
	}
	return false
}

// orderFactorsForVertex permutes factors (currently in arbitrary mask-
// partition order) into the vertex's declared leg order, excluding the
// produced leg, by matching each non-produced leg's required incoming
// flavour (the anti-particle of that leg, spec §4.3's "insert_vertex")
// against the factor currents' flavours.
func (t *Tree) orderFactorsForVertex(v *model.Vertex, producedLeg int, factors []int) []int {
	required := make([]model.ID, 0, len(v.Legs)-1)
	for i, legID := range v.Legs {
		if i == producedLeg {
			continue
		}
		req := legID
		if p := t.Model.GetParticleByID(legID); p != nil {
			req = p.AntiParticle()
		}
		required = append(required, req)
	}
	ordered := make([]int, len(required))
	used := make([]bool, len(factors))
	for i, req := range required {
		for j, fidx := range factors {
			if used[j] || t.Currents[fidx].Particle != req {
				continue
			}
			ordered[i] = fidx
			used[j] = true
			break
		}
	}
	return ordered
}

// NumCurrents returns the size of the current arena.
func (t *Tree) NumCurrents() int { return len(t.Currents) }

// NumInteractions returns the size of the interaction arena.
func (t *Tree) NumInteractions() int { return len(t.Interactions) }

// TopCurrents returns the arena indices of the currents spanning every
// leg but the sink leg — the currents Evaluate contracts against the
// sink's wave function.
func (t *Tree) TopCurrents() []int { return t.top }

// DiagramCount returns the number of distinct Feynman diagrams
// contributing to this process (spec §3 "diagram multiplicity counter",
// §4.4 step 5 "count diagrams"): the recursive current tree already
// encodes multiplicity structurally, since a current's In list holds one
// entry per distinct way to produce it, so the count is the standard
// dynamic-program walk — one diagram per external leg, summed over an
// Interaction's alternatives and multiplied across its factors. Cached
// after the first call.
func (t *Tree) DiagramCount() int {
	if t.diagramCount != 0 {
		return t.diagramCount
	}
	memo := make(map[int]int, len(t.Currents))
	var total int
	for _, topIdx := range t.top {
		total += t.currentDiagramCount(topIdx, memo)
	}
	t.diagramCount = total
	return total
}

func (t *Tree) currentDiagramCount(idx int, memo map[int]int) int {
	if n, ok := memo[idx]; ok {
		return n
	}
	c := t.Currents[idx]
	if c.External >= 0 {
		memo[idx] = 1
		return 1
	}
	var total int
	for _, interIdx := range c.In {
		product := 1
		for _, fidx := range t.Interactions[interIdx].Factors {
			product *= t.currentDiagramCount(fidx, memo)
		}
		total += product
	}
	memo[idx] = total
	return total
}
