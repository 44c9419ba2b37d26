// Package generator implements spec §4.8's process generator façade: it
// composes one momentum + one helicity + one colour sampler around one
// algorithm.Algorithm instance, tracks cross-section estimators, drives
// multichannel/grid adaptation, and supports weighted and unweighted
// event emission.
package generator

import "github.com/qflow/ampcore/model"

// leHouchesBase is the Les Houches convention's first colour-flow tag
// (spec §6 "colour tag and anti-colour tag per particle... starting from
// 501 and incrementing per distinct flow line").
const leHouchesBase = 501

// Event is spec §6's "Event record (emitted by unweighted generation)".
type Event struct {
	Weight    float64
	MaxWeight float64

	Incoming []model.Momentum
	Outgoing []model.Momentum

	IncomingPDG []int
	OutgoingPDG []int

	Helicities []int

	// ColourTag/AntiColourTag are indexed like the full (incoming+outgoing)
	// leg list; 0 means the leg carries no colour-flow tag.
	ColourTag     []int
	AntiColourTag []int

	FactorizationScale   float64
	RenormalizationScale float64
	AlphaS               float64
}
