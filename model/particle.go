package model

import "github.com/qflow/ampcore/tensor"

// ID is the internal flavour index assigned in order of model construction
// (spec §6 "Particle identification").
type ID int

// ColourRep identifies how a particle transforms under the gauge group's
// colour sub-group (spec glossary "Colour representation").
type ColourRep int

const (
	Singlet ColourRep = iota
	Fundamental
	AntiFundamental
	Adjoint
)

// Particle is the static descriptor of spec §3's Particle entity: name,
// spin, mass/width, PDG id, fermion number, colour representation, and the
// function-pointer table for wave-function/propagator/contraction.
type Particle struct {
	Name          string
	id            ID
	PDG           int
	Spin          int // twice-integer: 0 scalar, 1 fermion, 2 vector
	FermionNumber int // -1, 0, +1
	Majorana      bool
	Colour        ColourRep
	ColourDim     int // N_c for Fundamental/AntiFundamental/Adjoint, 1 for Singlet

	mass  *float64
	width *float64

	antiParticle ID
	coupled      bool

	WaveFunction WaveFunctionFunc
	Propagator   PropagatorDenomFunc
	Numerator    PropagatorNumeratorFunc
	Contraction  ContractionFunc
}

// NewParticle constructs a Particle with the given static properties. The
// wave-function/propagator/numerator/contraction function pointers default
// to the scalar implementations and can be overridden by assigning the
// exported WaveFunction, Propagator, Numerator and Contraction fields
// before the particle is inserted into a Model.
func NewParticle(name string, pdg, spin, fermionNumber int, colour ColourRep, colourDim int) *Particle {
	return &Particle{
		Name:          name,
		PDG:           pdg,
		Spin:          spin,
		FermionNumber: fermionNumber,
		Colour:        colour,
		ColourDim:     colourDim,
		coupled:       true,
		WaveFunction:  ScalarWaveFunction,
		Propagator:    ScalarPropagatorDenominator,
		Numerator:     IdentityNumerator,
		Contraction:   DefaultContraction,
	}
}

// ID returns the particle's internal flavour index.
func (p *Particle) ID() ID { return p.id }

// AntiParticle returns the flavour index of the conjugate particle (itself
// for self-conjugate species, spec §6).
func (p *Particle) AntiParticle() ID { return p.antiParticle }

// Coupled reports whether the particle currently participates in
// evaluation (spec §4.2's "coupled flag").
func (p *Particle) Coupled() bool { return p.coupled }

// GetMass dereferences the mass pointer, returning 0 when unset (spec §4.2
// "get_mass()").
func (p *Particle) GetMass() float64 {
	if p.mass == nil {
		return 0
	}
	return *p.mass
}

// GetWidth dereferences the width pointer, returning 0 when unset.
func (p *Particle) GetWidth() float64 {
	if p.width == nil {
		return 0
	}
	return *p.width
}

// SetMass binds the particle's mass pointer. Used only between model
// construction and first amplitude evaluation (spec §4.2).
func (p *Particle) SetMass(m *float64) { p.mass = m }

// SetWidth binds the particle's width pointer.
func (p *Particle) SetWidth(w *float64) { p.width = w }

// MakeAmplitude resizes t to the particle's index-range vector. Index
// ranges follow the shape invariant of spec §3: Lorentz, then Dirac, then
// colour indices.
func (p *Particle) MakeAmplitude(t *tensor.Tensor) {
	t.Resize(p.indexRanges()...)
}

func (p *Particle) indexRanges() []int {
	var ranges []int
	switch p.Spin {
	case 0:
		// scalar: no Lorentz/Dirac index
	case 1:
		ranges = append(ranges, 4) // Dirac index
	case 2:
		ranges = append(ranges, 4) // Lorentz index
	}
	switch p.Colour {
	case Fundamental, AntiFundamental:
		ranges = append(ranges, p.ColourDim)
	case Adjoint:
		ranges = append(ranges, p.ColourDim*p.ColourDim-1)
	}
	return ranges
}

// RefreshPropagator invokes the propagator-denominator function (spec
// §4.2 "refresh_propagator"), returning 0 if the particle is uncoupled.
func (p *Particle) RefreshPropagator(mom Momentum) complex128 {
	if !p.coupled {
		return 0
	}
	return p.Propagator(mom, p.GetMass(), p.GetWidth())
}

// Propagate invokes the propagator-numerator function on t in place (spec
// §4.2 "propagate(iter, iter_end)").
func (p *Particle) Propagate(t *tensor.Tensor, mom Momentum) {
	if !p.coupled {
		return
	}
	p.Numerator(t, mom, p.GetMass())
}

// ColourType returns +1/-1/0 for the i-th colour index indicating
// colour/anti-colour/singlet (spec §4.2 "colour_type", used for
// colour-flow matching).
func (p *Particle) ColourType(int) int {
	switch p.Colour {
	case Fundamental:
		return 1
	case AntiFundamental:
		return -1
	default:
		return 0
	}
}

// Decouple marks the particle as not participating in evaluation (spec
// §4.3 "decouple_particle").
func (p *Particle) Decouple() { p.coupled = false }

// Couple re-enables the particle.
func (p *Particle) Couple() { p.coupled = true }

// SpinDOF returns the number of physical helicity states: 1 for a scalar,
// 2 for a massless spin-1/2 or spin-1 leg, 3 for a massive spin-1 leg.
func (p *Particle) SpinDOF() int {
	switch p.Spin {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		if p.GetMass() > 0 {
			return 3
		}
		return 2
	default:
		return 1
	}
}

// Helicities returns the physical helicity values in the table's order,
// e.g. {-1,+1} for a massless vector, {-1,0,+1} for a massive one.
func (p *Particle) Helicities() []int {
	switch p.SpinDOF() {
	case 1:
		return []int{0}
	case 2:
		return []int{-1, 1}
	case 3:
		return []int{-1, 0, 1}
	default:
		return []int{0}
	}
}
