// Package bitkey implements the momentum-channel bitstring of spec §3: a
// fixed-width bit set identifying which external legs contribute to an
// off-shell current's momentum. It is the key type for every current and
// momentum-channel lookup in package tree and phasespace.
package bitkey

import (
	"github.com/bits-and-blooms/bitset"
)

// Bitstring identifies a subset of external legs. The zero value is the
// empty set.
type Bitstring struct {
	bs *bitset.BitSet
}

// Empty returns the empty bitstring sized for nLegs external legs.
func Empty(nLegs uint) Bitstring {
	return Bitstring{bs: bitset.New(nLegs)}
}

// Leg returns the single-bit bitstring for external leg i (0-indexed),
// used when seeding level-1 currents (spec §4.4 step 1).
func Leg(nLegs, i uint) Bitstring {
	b := bitset.New(nLegs)
	b.Set(i)
	return Bitstring{bs: b}
}

// Full returns the bitstring with all nLegs bits set.
func Full(nLegs uint) Bitstring {
	b := bitset.New(nLegs)
	for i := uint(0); i < nLegs; i++ {
		b.Set(i)
	}
	return Bitstring{bs: b}
}

// Test reports whether leg i is a member.
func (b Bitstring) Test(i uint) bool {
	if b.bs == nil {
		return false
	}
	return b.bs.Test(i)
}

// Set returns a copy of b with leg i added.
func (b Bitstring) Set(i uint) Bitstring {
	nb := b.clone()
	if nb.bs == nil {
		nb.bs = bitset.New(i + 1)
	}
	nb.bs.Set(i)
	return nb
}

// Union returns the disjoint-or-not union B1 ∪ B2.
func (b Bitstring) Union(o Bitstring) Bitstring {
	if b.bs == nil {
		return o.clone()
	}
	if o.bs == nil {
		return b.clone()
	}
	return Bitstring{bs: b.bs.Union(o.bs)}
}

// Intersection returns B1 ∩ B2.
func (b Bitstring) Intersection(o Bitstring) Bitstring {
	if b.bs == nil || o.bs == nil {
		return Bitstring{}
	}
	return Bitstring{bs: b.bs.Intersection(o.bs)}
}

// IsDisjoint reports whether B1 ∩ B2 == ∅, the condition required of a
// valid partition B = B1 ⊔ B2 during tree construction (spec §4.4 step 2).
func (b Bitstring) IsDisjoint(o Bitstring) bool {
	if b.bs == nil || o.bs == nil {
		return true
	}
	return b.bs.IntersectionCardinality(o.bs) == 0
}

// Complement returns full \ b.
func (b Bitstring) Complement(full Bitstring) Bitstring {
	return full.Difference(b)
}

// Difference returns B1 \ B2.
func (b Bitstring) Difference(o Bitstring) Bitstring {
	if b.bs == nil {
		return Bitstring{}
	}
	if o.bs == nil {
		return b.clone()
	}
	return Bitstring{bs: b.bs.Difference(o.bs)}
}

// Count returns |B|, the cardinality (bitstring "level").
func (b Bitstring) Count() uint {
	if b.bs == nil {
		return 0
	}
	return b.bs.Count()
}

// Equal reports structural equality.
func (b Bitstring) Equal(o Bitstring) bool {
	switch {
	case b.bs == nil && o.bs == nil:
		return true
	case b.bs == nil || o.bs == nil:
		return b.Count() == 0 && o.Count() == 0
	default:
		return b.bs.Equal(o.bs)
	}
}

// Legs returns the member leg indices in ascending order — deterministic
// iteration order, as required by the re-architecture guidance for the
// colour-flow iterator sets built on the same library (spec §9).
func (b Bitstring) Legs() []uint {
	if b.bs == nil {
		return nil
	}
	legs := make([]uint, 0, b.bs.Count())
	for i, ok := b.bs.NextSet(0); ok; i, ok = b.bs.NextSet(i + 1) {
		legs = append(legs, i)
	}
	return legs
}

// Key returns a canonical, comparable representation suitable for use as a
// map key (the source's bitstring-keyed current maps, spec §3).
func (b Bitstring) Key() string {
	if b.bs == nil {
		return ""
	}
	return b.bs.DumpAsBits()
}

func (b Bitstring) clone() Bitstring {
	if b.bs == nil {
		return Bitstring{}
	}
	return Bitstring{bs: b.bs.Clone()}
}
