package phasespace

import (
	"fmt"
	"math"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/randsrc"
)

// ErrKinematicallyInfeasible is spec §7's "Kinematic infeasibility" kind:
// the total CM energy is below the sum of outgoing masses along some
// branch. Generate returns it with a zero weight rather than panicking.
var ErrKinematicallyInfeasible = fmt.Errorf("phasespace: kinematically infeasible")

// state is the per-Generate-call scratch: sampled invariant masses,
// chosen particle channels/branchings, and the running weight, kept out
// of Tree so a Tree is safe to evaluate from multiple generators
// sequentially without residual state (spec §5 "PARNI bins and channel
// state are mutated only by their owning generator").
type state struct {
	s          []float64
	momentum   []model.Momentum
	chosenPC   []int // momentum channel idx -> particle channel idx chosen, -1 if unset
	weight     float64
	branchings []int // branching indices visited, in decay order
}

// Generate produces lab-frame four-momenta for every external leg given
// the total incoming four-momentum, recursively decomposing the channel
// tree from the top momentum channel down to the externals (spec §4.6
// steps 1-4), and returns the phase-space weight (step 5's final-state
// factor; the caller folds in the initial-state weight and flux).
// Kinematically infeasible configurations return ErrKinematicallyInfeasible
// with weight 0, per spec §7.
func (t *Tree) Generate(src randsrc.Source, exps config.Exponents, incoming model.Momentum) (momenta []model.Momentum, weight float64, chosenChannels []int, err error) {
	st := &state{
		s:        make([]float64, len(t.Momentum)),
		momentum: make([]model.Momentum, len(t.Momentum)),
		chosenPC: make([]int, len(t.Momentum)),
		weight:   1,
	}
	for i := range st.chosenPC {
		st.chosenPC[i] = -1
	}

	sTotal := incoming.Mass2()
	t.Momentum[t.top].Momentum = incoming
	st.momentum[t.top] = incoming

	if err := t.decay(src, exps, st, t.top, sTotal); err != nil {
		return nil, 0, nil, err
	}

	momenta = make([]model.Momentum, t.nLegs)
	for leg, idx := range t.external {
		if idx < 0 {
			continue
		}
		momenta[leg] = st.momentum[idx]
	}
	momenta[t.sinkLeg] = incoming
	for leg, idx := range t.external {
		if idx < 0 || leg == t.sinkLeg {
			continue
		}
		momenta[t.sinkLeg] = momenta[t.sinkLeg].Sub(momenta[leg])
	}

	var chosen []int
	for _, pc := range st.chosenPC {
		if pc >= 0 {
			chosen = append(chosen, pc)
		}
	}
	t.lastBranchings = st.branchings
	return momenta, st.weight, chosen, nil
}

// decay samples channel idx's own invariant mass (if not an external
// leaf, whose mass is fixed) within [minMass(idx)², sHigh], then
// recurses into its chosen branching's two daughters.
func (t *Tree) decay(src randsrc.Source, exps config.Exponents, st *state, idx int, sHigh float64) error {
	mc := t.Momentum[idx]
	if isLeaf(mc.Mask) {
		s := t.leafMass2(idx)
		if s > sHigh*(1+1e-9) {
			return ErrKinematicallyInfeasible
		}
		st.s[idx] = s
		return nil
	}

	pcIdx, brIdx, err := t.choose(src, mc.Particles)
	if err != nil {
		return err
	}
	st.chosenPC[idx] = pcIdx
	pc := t.Particle[pcIdx]
	particle := t.Model.GetParticleByID(pc.Particle)

	sLowD1 := t.minMass2(t.Branch[brIdx].Outgoing[0])
	sLowD2 := t.minMass2(t.Branch[brIdx].Outgoing[1])
	sLow := (math.Sqrt(sLowD1) + math.Sqrt(sLowD2)) * (math.Sqrt(sLowD1) + math.Sqrt(sLowD2))
	if sLow > sHigh {
		return ErrKinematicallyInfeasible
	}

	mass, width := 0.0, 0.0
	if particle != nil {
		mass, width = particle.GetMass(), particle.GetWidth()
	}
	nu := exps.ExponentFor(particleName(t.Model, pc.Particle), defaultExponent(exps, mass))
	s, w := sampleInvariant(mass, width, nu, sLow, sHigh, src)
	st.s[idx] = s
	st.weight *= w

	d1, d2 := t.Branch[brIdx].Outgoing[0], t.Branch[brIdx].Outgoing[1]
	sqrtS := math.Sqrt(s)
	d1High := (sqrtS - math.Sqrt(sLowD2))
	d1High *= d1High
	if err := t.decay(src, exps, st, d1, d1High); err != nil {
		return err
	}
	remaining := sqrtS - math.Sqrt(st.s[d1])
	if remaining < 0 {
		return ErrKinematicallyInfeasible
	}
	d2High := remaining * remaining
	if err := t.decay(src, exps, st, d2, d2High); err != nil {
		return err
	}

	m1, m2, angleFactor := twoBodyDecay(st.momentum[idx], s, st.s[d1], st.s[d2], src, t.Branch[brIdx].Grid)
	st.momentum[d1] = m1
	st.momentum[d2] = m2
	st.branchings = append(st.branchings, brIdx)
	pStar := twoBodyMomentum(s, st.s[d1], st.s[d2])
	st.weight *= pStar / (8 * math.Pi * math.Pi * sqrtS) * angleFactor
	return nil
}

// choose performs the multichannel particle-channel selection, then a
// uniform choice among that channel's candidate branchings (spec §4.6
// step 1).
func (t *Tree) choose(src randsrc.Source, particleIdx []int) (pcIdx, brIdx int, err error) {
	if len(particleIdx) == 0 {
		return 0, 0, ErrNoChannels
	}
	weights := make([]float64, len(particleIdx))
	for i, pc := range particleIdx {
		weights[i] = t.Particle[pc].Weight
	}
	choice, ok := randsrc.Choice(weights, src)
	if !ok {
		choice = 0
	}
	pcIdx = particleIdx[choice]
	branchings := t.Particle[pcIdx].Branchings
	if len(branchings) == 0 {
		return 0, 0, ErrNoChannels
	}
	brIdx = branchings[int(src.Float64()*float64(len(branchings)))%len(branchings)]
	return pcIdx, brIdx, nil
}

func isLeaf(mask uint64) bool { return mask&(mask-1) == 0 }

// leafMass2 returns an external leaf momentum channel's fixed invariant
// mass², from its (unique) attached particle channel.
func (t *Tree) leafMass2(idx int) float64 {
	if len(t.Momentum[idx].Particles) == 0 {
		return 0
	}
	pc := t.Particle[t.Momentum[idx].Particles[0]]
	p := t.Model.GetParticleByID(pc.Particle)
	if p == nil {
		return 0
	}
	m := p.GetMass()
	return m * m
}

// minMass2 returns a lower bound on idx's invariant mass², recursing
// through its lightest candidate branching for internal channels.
func (t *Tree) minMass2(idx int) float64 {
	if isLeaf(t.Momentum[idx].Mask) {
		return t.leafMass2(idx)
	}
	best := math.Inf(1)
	for _, pcIdx := range t.Momentum[idx].Particles {
		pc := t.Particle[pcIdx]
		for _, brIdx := range pc.Branchings {
			br := t.Branch[brIdx]
			m1 := math.Sqrt(t.minMass2(br.Outgoing[0]))
			m2 := math.Sqrt(t.minMass2(br.Outgoing[1]))
			if bound := (m1 + m2) * (m1 + m2); bound < best {
				best = bound
			}
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

func particleName(m *model.Model, id model.ID) string {
	if p := m.GetParticleByID(id); p != nil {
		return p.Name
	}
	return ""
}

func defaultExponent(exps config.Exponents, mass float64) float64 {
	if mass > 0 {
		return exps.Timelike
	}
	return exps.Spacelike
}
