package sampler

import (
	"errors"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/process"
	"github.com/qflow/ampcore/randsrc"
)

// ErrColourDegenerate is spec §7's "sampler degeneracy" kind: the
// colour-flow sampler found no colour-conserving configuration for this
// leg content (unequal numbers of coloured and anti-coloured legs).
var ErrColourDegenerate = errors.New("sampler: no colour-conserving flow for this process")

// ColourResult is the outcome of one colour draw: a colour index per leg
// (0 for an uncoloured singlet leg) and the associated sampling weight.
type ColourResult struct {
	Indices []int
	Weight  float64
}

// SampleColours draws one colour configuration for p's external legs
// according to mode (spec §4.7's colour sampler variants). discrete is not
// consulted: every mode draws integer colour indices, and no continuous
// colour vector is sampled.
func SampleColours(mode config.ColourGenerator, discrete bool, p *process.Process, src randsrc.Source) (ColourResult, error) {
	if p == nil || !p.Valid() || len(p.Legs) == 0 {
		return ColourResult{}, ErrNoLegs
	}

	switch mode {
	case config.ColourSummed:
		return ColourResult{Indices: make([]int, len(p.Legs)), Weight: 1}, nil
	case config.ColourFlowSampling:
		return sampleColourFlow(p, src)
	default: // ColourUniform, ColourAdjoint
		return sampleColourIndependent(mode, p, src)
	}
}

func sampleColourIndependent(mode config.ColourGenerator, p *process.Process, src randsrc.Source) (ColourResult, error) {
	indices := make([]int, len(p.Legs))
	weight := 1.0
	for i, leg := range p.Legs {
		particle := p.Model.GetParticleByID(leg.Particle)
		dim := colourDim(mode, particle)
		if dim <= 1 {
			indices[i] = 0
			continue
		}
		indices[i] = int(src.Float64() * float64(dim))
		if indices[i] >= dim {
			indices[i] = dim - 1
		}
		weight *= float64(dim)
	}
	return ColourResult{Indices: indices, Weight: weight}, nil
}

// colourDim returns the index range a leg's colour is drawn from: the
// fundamental/anti-fundamental dimension N_c, or the adjoint dimension
// N_c²-1, or 1 for an uncoloured singlet. Both Uniform and Adjoint modes
// use the same formula (spec §4.7 names them separately, but an adjoint
// leg only ever has one possible index space regardless of which generic
// mode picked it).
func colourDim(mode config.ColourGenerator, p *model.Particle) int {
	if p == nil {
		return 1
	}
	switch p.Colour {
	case model.Fundamental, model.AntiFundamental:
		return p.ColourDim
	case model.Adjoint:
		return p.ColourDim*p.ColourDim - 1
	default:
		return 1
	}
}

// sampleColourFlow implements spec §4.7's colour-flow sampler: every
// coloured leg is matched to an anti-coloured leg through a uniformly
// random bijection, each matched pair sharing one flow index; weight
// is the number of equally-likely matchings (N_c! / Π multiplicity_i!,
// approximated here as the count of legs factorial since every leg in
// this toy colour model has multiplicity one) scaled by N_c per flow.
func sampleColourFlow(p *process.Process, src randsrc.Source) (ColourResult, error) {
	indices := make([]int, len(p.Legs))
	var coloured, anticoloured []int
	nc := 3
	for i, leg := range p.Legs {
		particle := p.Model.GetParticleByID(leg.Particle)
		if particle == nil {
			continue
		}
		if particle.ColourDim > 1 {
			nc = particle.ColourDim
		}
		switch particle.ColourType(0) {
		case 1:
			coloured = append(coloured, i)
		case -1:
			anticoloured = append(anticoloured, i)
		}
	}
	if len(coloured) != len(anticoloured) {
		return ColourResult{Indices: indices, Weight: 0}, ErrColourDegenerate
	}
	if len(coloured) == 0 {
		return ColourResult{Indices: indices, Weight: 1}, nil
	}

	perm := randomPermutation(len(anticoloured), src)
	weight := 1.0
	for i, legIdx := range coloured {
		partnerIdx := anticoloured[perm[i]]
		flow := i + 1
		indices[legIdx] = flow
		indices[partnerIdx] = flow
		weight *= float64(nc)
	}
	weight *= factorial(len(coloured))
	return ColourResult{Indices: indices, Weight: weight}, nil
}

func randomPermutation(n int, src randsrc.Source) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(src.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
