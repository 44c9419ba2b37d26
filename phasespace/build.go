package phasespace

import (
	"fmt"
	"math/bits"

	"github.com/qflow/ampcore/bitkey"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
)

// Tree is the built channel topology for one process: every momentum
// channel and particle channel reachable from the external legs via
// 2-body fusions, up to the full-minus-sink bitstring (spec §4.6
// "practically, it is built from the process-tree's momentum-channel
// graph").
type Tree struct {
	Model   *model.Model
	Process *process.Process

	nLegs    int
	sinkLeg  int
	universe uint64

	Momentum []MomentumChannel
	Particle []ParticleChannel
	Branch   []Branching

	external []int // leg index -> momentum channel index
	byMask   map[uint64]int
	top      int // momentum channel index at mask == universe

	lastBranchings []int // branchings visited by the most recent Generate call
}

// ErrNoChannels is returned by Build when the process has no 2-body
// fusion path connecting its external legs at all.
var ErrNoChannels = fmt.Errorf("phasespace: process has no contributing channel topology")

// Build constructs the channel tree for p against m.
func Build(m *model.Model, p *process.Process) (*Tree, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("phasespace: cannot build from an invalid process")
	}
	n := len(p.Legs)
	if n < 3 {
		return nil, fmt.Errorf("phasespace: process needs at least 3 external legs, got %d", n)
	}
	sink := n - 1
	var universe uint64
	for i := 0; i < sink; i++ {
		universe |= uint64(1) << uint(i)
	}

	t := &Tree{
		Model: m, Process: p,
		nLegs: n, sinkLeg: sink, universe: universe,
		external: make([]int, n),
		byMask:   make(map[uint64]int),
	}
	t.external[sink] = -1

	for i := 0; i < sink; i++ {
		mask := uint64(1) << uint(i)
		idx := t.addMomentumChannel(mask)
		t.external[i] = idx
		t.Momentum[idx].Status = Assigned
		t.addParticleChannel(idx, p.Legs[i].Internal, true)
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

	top, ok := t.byMask[universe]
	if !ok || len(t.Momentum[top].Particles) == 0 {
		return nil, ErrNoChannels
	}
	t.top = top
	for i := range t.Momentum {
		assignMultichannelWeights(t.Momentum[i].Particles, t)
	}
	return t, nil
}

func (t *Tree) addMomentumChannel(mask uint64) int {
	if idx, ok := t.byMask[mask]; ok {
		return idx
	}
	idx := len(t.Momentum)
	t.Momentum = append(t.Momentum, MomentumChannel{
		Bits: maskToBitstring(mask, t.nLegs),
		Mask: mask,
	})
	t.byMask[mask] = idx
	return idx
}

func (t *Tree) addParticleChannel(momentumIdx int, particle model.ID, onShell bool) int {
	for _, existing := range t.Momentum[momentumIdx].Particles {
		if t.Particle[existing].Particle == particle {
			return existing
		}
	}
	idx := len(t.Particle)
	t.Particle = append(t.Particle, ParticleChannel{
		MomentumChannel: momentumIdx,
		Particle:        particle,
		OnShell:         onShell,
	})
	t.Momentum[momentumIdx].Particles = append(t.Momentum[momentumIdx].Particles, idx)
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

// buildMask attaches, for every disjoint 2-body split of mask already
// present in the arena, one branching per fusion-map entry (spec §4.6
// "nodes... attaching one or more particle channels per momentum
// channel, one per dominant intermediate particle").
func (t *Tree) buildMask(mask uint64) {
	for m1 := (mask - 1) & mask; m1 != 0; m1 = (m1 - 1) & mask {
		m2 := mask ^ m1
		if m1 >= m2 {
			continue
		}
		mom1, ok1 := t.byMask[m1]
		mom2, ok2 := t.byMask[m2]
		if !ok1 || !ok2 {
			continue
		}
		for _, pc1 := range t.Momentum[mom1].Particles {
			for _, pc2 := range t.Momentum[mom2].Particles {
				p1, p2 := t.Particle[pc1].Particle, t.Particle[pc2].Particle
				for _, entry := range t.Model.Fusions([]model.ID{p1, p2}) {
					target := t.addMomentumChannel(mask)
					p := t.Model.GetParticleByID(entry.Produced)
					onShell := p != nil && p.GetMass() > 0
					intermediate := t.addParticleChannel(target, entry.Produced, onShell)

					branchIdx := len(t.Branch)
					t.Branch = append(t.Branch, Branching{
						Incoming: intermediate,
						Outgoing: [2]int{mom1, mom2},
					})
					t.Particle[intermediate].Branchings = append(t.Particle[intermediate].Branchings, branchIdx)
				}
			}
		}
	}
}

func assignMultichannelWeights(particleIdx []int, t *Tree) {
	if len(particleIdx) == 0 {
		return
	}
	w := 1.0 / float64(len(particleIdx))
	for _, idx := range particleIdx {
		t.Particle[idx].Weight = w
	}
}

// NumMomentumChannels returns the number of momentum channels built.
func (t *Tree) NumMomentumChannels() int { return len(t.Momentum) }

// NumParticleChannels returns the number of particle channels built.
func (t *Tree) NumParticleChannels() int { return len(t.Particle) }

// NumBranchings returns the number of branchings built.
func (t *Tree) NumBranchings() int { return len(t.Branch) }

// TopMomentumChannel returns the index of the momentum channel spanning
// every leg but the sink leg.
func (t *Tree) TopMomentumChannel() int { return t.top }
