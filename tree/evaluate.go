package tree

import (
	"fmt"

	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/tensor"
)

// State holds the per-evaluation scratch (momenta, amplitude tensors,
// memoization flags) for one Tree, reusable across many phase-space
// points. Internal currents' amplitude tensors are reused; external wave
// functions are rebuilt on every Evaluate call.
type State struct {
	momentum  []model.Momentum
	amplitude []*tensor.Tensor
	done      []bool
}

// NewState allocates a State sized for t, pre-building each current's
// amplitude tensor at its particle's natural shape (spec §4.1
// "make_amplitude").
func (t *Tree) NewState() *State {
	s := &State{
		momentum:  make([]model.Momentum, len(t.Currents)),
		amplitude: make([]*tensor.Tensor, len(t.Currents)),
		done:      make([]bool, len(t.Currents)),
	}
	for i, c := range t.Currents {
		amp := tensor.New()
		if p := t.Model.GetParticleByID(c.Particle); p != nil {
			p.MakeAmplitude(amp)
		}
		s.amplitude[i] = amp
	}
	return s
}

// reset clears the per-call memoization flags so a State can be reused
// for a new phase-space point.
func (s *State) reset() {
	for i := range s.done {
		s.done[i] = false
	}
}

// Evaluate walks the tree for the given external momenta and
// helicities, one entry per external leg in process order, returning
// the scalar amplitude (spec §4.4 steps 1-3). Momenta must satisfy
// overall four-momentum conservation; Evaluate does not check this.
func (t *Tree) Evaluate(s *State, momenta []model.Momentum, helicities []int) (complex128, error) {
	if len(momenta) != t.nLegs || len(helicities) != t.nLegs {
		return 0, fmt.Errorf("tree: expected %d momenta/helicities, got %d/%d", t.nLegs, len(momenta), len(helicities))
	}
	s.reset()

	for i := 0; i < t.nLegs; i++ {
		if i == t.sinkLeg {
			continue
		}
		idx := t.external[i]
		p := t.Model.GetParticleByID(t.Currents[idx].Particle)
		outgoing := t.Process.Legs[i].Direction == process.Outgoing
		s.momentum[idx] = momenta[i]
		s.amplitude[idx] = p.WaveFunction(momenta[i], helicities[i], outgoing)
		s.done[idx] = true
	}

	sinkParticle := t.Model.GetParticleByID(t.Process.Legs[t.sinkLeg].Internal)
	sinkOutgoing := t.Process.Legs[t.sinkLeg].Direction == process.Outgoing
	sinkWave := sinkParticle.WaveFunction(momenta[t.sinkLeg], helicities[t.sinkLeg], sinkOutgoing)

	var total complex128
	for _, topIdx := range t.top {
		amp, err := t.evalCurrent(s, topIdx, momenta)
		if err != nil {
			return 0, err
		}
		total += sinkParticle.Contraction(sinkWave, amp)
	}
	return total, nil
}

// evalCurrent returns current idx's amplitude tensor, computing it (and
// every ancestor it depends on) on first visit and memoizing in s (spec
// §4.4 "current tree evaluated bottom-up with memoization").
func (t *Tree) evalCurrent(s *State, idx int, extMomenta []model.Momentum) (*tensor.Tensor, error) {
	if s.done[idx] {
		return s.amplitude[idx], nil
	}
	c := t.Currents[idx]
	particle := t.Model.GetParticleByID(c.Particle)
	if particle == nil {
		return nil, fmt.Errorf("tree: current %d references unknown flavour %d", idx, c.Particle)
	}
	acc := s.amplitude[idx]
	acc.Zero()

	var momentum model.Momentum
	haveMomentum := false

	for _, interIdx := range c.In {
		inter := t.Interactions[interIdx]
		if !inter.Vertex.Coupled() || !particle.Coupled() {
			continue
		}

		factorAmps := make([]*tensor.Tensor, len(inter.Factors))
		vertexMomenta := make([]model.Momentum, len(inter.Vertex.Legs))
		factorPos := 0
		var sum model.Momentum
		for legIdx := range inter.Vertex.Legs {
			if legIdx == inter.ProducedLeg {
				continue
			}
			fidx := inter.Factors[factorPos]
			famp, err := t.evalCurrent(s, fidx, extMomenta)
			if err != nil {
				return nil, err
			}
			factorAmps[factorPos] = famp
			vertexMomenta[legIdx] = s.momentum[fidx]
			sum = sum.Add(s.momentum[fidx])
			factorPos++
		}
		vertexMomenta[inter.ProducedLeg] = sum
		if !haveMomentum {
			momentum = sum
			haveMomentum = true
		}

		iters := make([]tensor.Iterator, len(inter.Vertex.Legs))
		// legOutgoing records, for each non-produced vertex leg, whether
		// the fermion line feeding that leg originated from an outgoing
		// external leg (Current.FermionFlowOutgoing) — the bit
		// DispatchFeynmanRule needs to pick the correct Majorana
		// charge-conjugation variant.
		legOutgoing := make([]bool, len(inter.Vertex.Legs))
		factorPos = 0
		for legIdx := range inter.Vertex.Legs {
			if legIdx == inter.ProducedLeg {
				continue
			}
			fidx := inter.Factors[factorPos]
			iters[legIdx] = factorAmps[factorPos].Begin()
			legOutgoing[legIdx] = t.Currents[fidx].FermionFlowOutgoing
			factorPos++
		}
		iters[inter.ProducedLeg] = acc.Begin()

		rule, swap := inter.Vertex.DispatchFeynmanRule(legOutgoing, inter.ProducedLeg)
		if rule == nil {
			continue
		}
		if swap && len(iters) >= 3 {
			iters[1], iters[2] = iters[2], iters[1]
		}
		rule(complex(float64(inter.FermiSign), 0), inter.Vertex.Couplings, iters, vertexMomenta)
	}

	if haveMomentum {
		s.momentum[idx] = momentum
		// Top currents are contracted directly against the sink's wave
		// function, so they carry no propagator.
		if c.Mask != t.universe {
			particle.Propagate(acc, momentum)
			denom := particle.RefreshPropagator(momentum)
			tensor.ScaleInto(acc, denom)
		}
	}
	s.done[idx] = true
	return acc, nil
}
