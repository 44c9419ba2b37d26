// Package phasespace implements the recursive phase-space decomposition
// of spec §4.6: N-body final-state four-momenta are generated by
// decomposing the process into a tree of momentum channels (s/t-channel
// propagator branchings), built from the same fusion map the amplitude
// current tree uses, so the channel topology mirrors the diagrams that
// actually contribute.
package phasespace

import (
	"github.com/qflow/ampcore/bitkey"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/parni"
)

// Status is a momentum channel's kinematic state.
type Status int

const (
	Unset Status = iota
	Assigned
	Generated
)

// MomentumChannel is spec §3's Momentum channel entity: a leg subset
// with its four-momentum, invariant mass squared, and the particle
// channels that can live there.
type MomentumChannel struct {
	Bits       bitkey.Bitstring
	Mask       uint64
	Momentum   model.Momentum
	S          float64
	Status     Status
	SLow, SHigh float64
	Particles  []int // particle channel indices attached here
}

// ParticleChannel is spec §3's Particle channel entity: one candidate
// intermediate flavour for a momentum channel, with its branchings into
// two daughter momentum channels and its multichannel weight among
// siblings attached to the same momentum channel.
type ParticleChannel struct {
	MomentumChannel int
	Particle        model.ID
	Branchings      []int
	OnShell         bool
	Weight          float64 // siblings attached to the same momentum channel sum to 1

	accumWeight float64
	accumCount  int
}

// Branching is spec §3's Branching entity: one particle channel's decay
// into two daughter momentum channels, with running weight statistics
// used by multichannel adaptation.
type Branching struct {
	Incoming     int    // particle channel index
	Outgoing     [2]int // momentum channel indices
	generated    bool
	weightSum    float64
	weightSqSum  float64
	count        int

	// Grid, when non-nil, replaces uniform angle sampling for this
	// branching's decay angle with PARNI importance sampling over
	// cosTheta x phi (spec §4.6 "PARNI grids inside branchings are
	// updated and adapted per their own policies").
	Grid *parni.Grid
}

// NumCurrents/NumBranchings-style accessors are provided by Tree in build.go.
