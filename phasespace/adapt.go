package phasespace

import (
	"math"

	"github.com/qflow/ampcore/parni"
)

// EnableAdaptiveAngles gives every branching its own PARNI grid over the
// (cosTheta, phi) decay-angle domain, capped at binCap leaves each, so
// subsequent Generate calls importance-sample the branching angle
// instead of drawing it uniformly (spec §4.6 "PARNI grids inside
// branchings are updated and adapted per their own policies").
func (t *Tree) EnableAdaptiveAngles(binCap int, mode parni.Mode) error {
	for i := range t.Branch {
		g, err := parni.New([]float64{-1, 0}, []float64{1, 2 * math.Pi}, binCap, mode)
		if err != nil {
			return err
		}
		t.Branch[i].Grid = g
	}
	return nil
}

// LastBranchings returns the branching indices touched by the most
// recent Generate call, in decay order.
func (t *Tree) LastBranchings() []int { return t.lastBranchings }

// UpdateAngleGrids feeds value (typically the event's contribution to
// the cross section) into every adaptive angle grid touched by the most
// recent Generate call.
func (t *Tree) UpdateAngleGrids(value float64) {
	for _, brIdx := range t.lastBranchings {
		if g := t.Branch[brIdx].Grid; g != nil {
			g.Update(value)
		}
	}
}

// AdaptAngleGrids runs one Adapt step on every branching's angle grid.
func (t *Tree) AdaptAngleGrids() {
	for i := range t.Branch {
		if g := t.Branch[i].Grid; g != nil {
			g.Adapt()
		}
	}
}

// RecordParticleContribution accrues value (typically an event's
// contribution to the cross section) against a specific particle
// channel the caller recorded as chosen during a prior Generate call
// (spec §4.6 "multichannel weights per particle channel are updated
// from accumulated per-channel contribution to the cross section").
func (t *Tree) RecordParticleContribution(particleIdx int, value float64) {
	t.Particle[particleIdx].accumWeight += value
	t.Particle[particleIdx].accumCount++
}

// AdaptChannels blends each momentum channel's sibling particle-channel
// weights toward their accumulated contribution shares, by adaptivity in
// [0,1] (0 = no change, 1 = fully replace), then resets the accumulators
// (spec §4.6 adaptation policy).
func (t *Tree) AdaptChannels(adaptivity float64) {
	for i := range t.Momentum {
		siblings := t.Momentum[i].Particles
		if len(siblings) < 2 {
			for _, pc := range siblings {
				t.Particle[pc].accumWeight = 0
				t.Particle[pc].accumCount = 0
			}
			continue
		}
		var total float64
		for _, pc := range siblings {
			total += t.Particle[pc].accumWeight
		}
		if total <= 0 {
			continue
		}
		for _, pc := range siblings {
			target := t.Particle[pc].accumWeight / total
			t.Particle[pc].Weight = t.Particle[pc].Weight*(1-adaptivity) + target*adaptivity
			t.Particle[pc].accumWeight = 0
			t.Particle[pc].accumCount = 0
		}
	}
}
