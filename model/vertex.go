package model

import "github.com/qflow/ampcore/tensor"

// FeynmanRuleFunc writes the produced-leg tensor from the Lorentz/colour
// structure of a vertex's Feynman rule (spec §4.1 "recursive-relation
// dispatch"). iters holds one iterator per leg in the vertex's declared
// order, momenta one four-momentum per leg; the produced leg's iterator is
// accumulated into, the others are read from.
type FeynmanRuleFunc func(prefactor complex128, couplings []complex128, iters []tensor.Iterator, momenta []Momentum)

// MajoranaType classifies a vertex's fermion content for the purposes of
// dispatching the correct (possibly charge-conjugated) Feynman-rule
// variant (spec §4.2 "Vertex dispatch"). The four cases are preserved
// verbatim from the source per spec §9's open question — "attempts to
// clean up the logic risk sign errors".
type MajoranaType int

const (
	// MajoranaNone: no leg is a Majorana fermion.
	MajoranaNone MajoranaType = iota
	// MajoranaLeg1: leg index 0 is Majorana, leg index 1 is Dirac.
	MajoranaLeg1
	// MajoranaLeg2: leg index 1 is Majorana, leg index 0 is Dirac (mirror of MajoranaLeg1).
	MajoranaLeg2
	// MajoranaBoth: legs 0 and 1 are both Majorana.
	MajoranaBoth
)

// RuleTable holds the four produced-leg variants of a vertex's natural
// Feynman rule plus two charge-conjugated tables (RightC and LeftC) for
// Majorana fermion-flow reversal. There is no third charge-conjugated
// table.
type RuleTable struct {
	Natural [4]FeynmanRuleFunc
	// RightC and LeftC are the charge-conjugated rules used when a
	// Majorana leg is outgoing (RightC) or the Majorana leg itself is the
	// produced leg (LeftC) — spec §4.2's "case-by-case swap/charge-
	// conjugate selection".
	RightC [4]FeynmanRuleFunc
	LeftC  [4]FeynmanRuleFunc
}

// Vertex is the descriptor of spec §3's Vertex entity.
type Vertex struct {
	Legs      []ID // ordered, 3 or 4 particles
	Couplings []complex128
	Rules     RuleTable
	Majorana  MajoranaType
	Fermionic bool
	coupled   bool
}

// NewVertex constructs a Vertex from its ordered leg particles.
func NewVertex(legs []ID, couplings []complex128, rules RuleTable, majorana MajoranaType, fermionic bool) *Vertex {
	return &Vertex{
		Legs:      legs,
		Couplings: couplings,
		Rules:     rules,
		Majorana:  majorana,
		Fermionic: fermionic,
		coupled:   true,
	}
}

// Coupled reports whether the vertex currently participates in evaluation.
func (v *Vertex) Coupled() bool { return v.coupled }

// Decouple marks the vertex as not participating in evaluation (spec §4.3
// "decouple_vertex").
func (v *Vertex) Decouple() { v.coupled = false }

// Couple re-enables the vertex.
func (v *Vertex) Couple() { v.coupled = true }

// DispatchFeynmanRule returns the function-table entry to invoke for this
// vertex given which legs are outgoing Majorana legs (legOutgoing, indexed
// like v.Legs) and the produced-leg index. swapFermions is set when the
// chosen rule requires swapping the second and third tensor-iterator
// arguments before the call, per spec §4.2's "in one configuration the
// second/third tensor-iterator arguments are swapped".
func (v *Vertex) DispatchFeynmanRule(legOutgoing []bool, produced int) (rule FeynmanRuleFunc, swapFermions bool) {
	switch v.Majorana {
	case MajoranaNone:
		return v.Rules.Natural[produced], false

	case MajoranaLeg1:
		// leg 0 is Majorana. Charge-conjugate when the Majorana leg is
		// outgoing; use the reversed (LeftC) variant when the Majorana leg
		// itself is being produced.
		if produced == 0 {
			return v.Rules.LeftC[produced], false
		}
		if len(legOutgoing) > 0 && legOutgoing[0] {
			return v.Rules.RightC[produced], false
		}
		return v.Rules.Natural[produced], false

	case MajoranaLeg2:
		// mirror of MajoranaLeg1 with leg 1 as the Majorana leg.
		if produced == 1 {
			return v.Rules.LeftC[produced], false
		}
		if len(legOutgoing) > 1 && legOutgoing[1] {
			return v.Rules.RightC[produced], false
		}
		return v.Rules.Natural[produced], false

	case MajoranaBoth:
		// both legs 0 and 1 are Majorana: the natural rule applies unless
		// leg 0 is outgoing and leg 1 is incoming, in which case the
		// right-C rule is used with legs 1 and 2's iterators swapped, or
		// leg 0 is incoming and leg 1 outgoing, in which case the left-C
		// rule applies without a swap.
		leg0Out := len(legOutgoing) > 0 && legOutgoing[0]
		leg1Out := len(legOutgoing) > 1 && legOutgoing[1]
		switch {
		case leg0Out && !leg1Out:
			return v.Rules.RightC[produced], true
		case !leg0Out && leg1Out:
			return v.Rules.LeftC[produced], false
		default:
			return v.Rules.Natural[produced], false
		}
	default:
		return v.Rules.Natural[produced], false
	}
}
