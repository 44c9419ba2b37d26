// Package config collects every configuration knob of spec §6's
// "Configuration surface" into one validated struct, mirroring the
// teacher's DefaultParameters/TestParameters pair (parameters.go) and its
// Valid() error convention.
package config

import "errors"

// HelicityGenerator selects how external helicities are sampled.
type HelicityGenerator int

const (
	// HelicityUniform draws one helicity per leg from its physical range.
	HelicityUniform HelicityGenerator = iota
	// HelicitySpinorSum fills wave functions for explicit summation.
	HelicitySpinorSum
	// HelicityContinuous draws one discrete helicity per leg at weight 1;
	// no point on the unit spinor sphere is sampled.
	HelicityContinuous
)

// ColourGenerator selects how external colours are sampled.
type ColourGenerator int

const (
	// ColourFlowSampling generates only colour-conserving flow configurations.
	ColourFlowSampling ColourGenerator = iota
	// ColourAdjoint samples fundamental/adjoint indices uniformly.
	ColourAdjoint
	// ColourUniform samples every colour index uniformly, ignoring conservation.
	ColourUniform
	// ColourSummed sums over all colour indices explicitly.
	ColourSummed
)

// InitialState selects the incoming beam configuration.
type InitialState int

const (
	// Partonic fixes both incoming momenta from the configured beam energies.
	Partonic InitialState = iota
	// EPlusEMinus is a partonic initial state with e+e- beam particles.
	EPlusEMinus
	// ProtonProton draws momentum fractions from a PDF set per event.
	ProtonProton
)

// PhaseSpaceGenerator selects the momentum-generation strategy.
type PhaseSpaceGenerator int

const (
	// Uniform is RAMBO-style uniform massless/massive phase space.
	Uniform PhaseSpaceGenerator = iota
	// Recursive decomposes phase space via the channel tree, externals first.
	Recursive
	// RecursiveBackwardS is accepted as a setting; generator.New builds the
	// same channel-tree momentum generator for it as for Recursive.
	RecursiveBackwardS
	// RecursiveBackwardSHat is accepted as a setting; generator.New builds
	// the same channel-tree momentum generator for it as for Recursive.
	RecursiveBackwardSHat
)

// GridMode selects the PARNI bin-scoring criterion (spec §4.5).
type GridMode int

const (
	// SumWeights scores bins by the running sum of the integrand.
	SumWeights GridMode = iota
	// VarianceWeights scores bins by the running sum of integrand^2.
	VarianceWeights
	// MaximumWeights scores bins by the maximum observed integrand.
	MaximumWeights
	// CumulantWeights scores bins by a running cumulant estimate.
	CumulantWeights
)

// BatchIterations is a (count, batch-size) pair used for the channel/grid
// initialisation schedule (spec §4.8 "Initialisation").
type BatchIterations struct {
	Count int
	Batch int
}

// Exponents holds the sampling exponents ν for invariant-mass generation
// (spec §4.6 step 2), with optional per-particle overrides.
type Exponents struct {
	SHat          float64 // ν_τ, overall hard-process invariant
	Timelike      float64 // ν_s, resonant/massive propagators
	Spacelike     float64 // ν_t, massless t-channel propagators
	Auxiliary     float64 // ν_u, auxiliary (non-Feynman) channels
	PerParticle   map[string]float64
}

// Parameters is the full configuration surface of spec §6.
type Parameters struct {
	Helicity    HelicityGenerator
	Colour      ColourGenerator
	ColourDiscrete bool // passed to sampler.SampleColours, which always draws discrete indices
	Initial     InitialState

	PhaseSpace PhaseSpaceGenerator

	BeamEnergy [2]float64

	ChannelInit BatchIterations
	GridInit    BatchIterations

	AutoAdaptChannelBatch    int
	AutoAdaptGridBatch       int
	AutoAdaptSubprocessBatch int

	AdaptiveS     bool
	AdaptiveT     bool
	AdaptiveAngle bool

	GridBinCap int
	GridMode   GridMode

	PDFSetName   string
	PDFSetNumber int

	MultichannelThreshold float64
	SubprocessThreshold   float64
	ChannelAdaptivity     float64
	GridAdaptivity        float64

	Exponents Exponents

	// DiscardedHighWeightFraction is ε in [0,1): unweighted generation
	// accepts an event with probability weight/((1-ε)·max_weight), where
	// max_weight is the largest weight seen so far and is raised on every
	// event; events above (1-ε)·max_weight are always accepted.
	DiscardedHighWeightFraction float64

	WeightHistogramBins int

	// NewtonRaphsonIterations bounds massive-RAMBO's momentum rescaling
	// iteration (spec §6).
	NewtonRaphsonIterations int
}

var (
	ErrInvalidBeamEnergy       = errors.New("config: beam energies must be positive")
	ErrInvalidGridBinCap       = errors.New("config: grid bin cap must be positive")
	ErrInvalidEpsilon          = errors.New("config: discarded high-weight fraction must be in [0,1)")
	ErrInvalidThreshold        = errors.New("config: thresholds must be in [0,1]")
	ErrInvalidNewtonIterations = errors.New("config: Newton-Raphson iteration count must be positive")
	ErrInvalidHistogramBins    = errors.New("config: weight histogram bin count must be positive")
)

// Valid reports whether p is internally consistent.
func (p *Parameters) Valid() error {
	switch {
	case p.BeamEnergy[0] <= 0 || p.BeamEnergy[1] <= 0:
		return ErrInvalidBeamEnergy
	case p.GridBinCap <= 0:
		return ErrInvalidGridBinCap
	case p.DiscardedHighWeightFraction < 0 || p.DiscardedHighWeightFraction >= 1:
		return ErrInvalidEpsilon
	case p.MultichannelThreshold < 0 || p.MultichannelThreshold > 1:
		return ErrInvalidThreshold
	case p.SubprocessThreshold < 0 || p.SubprocessThreshold > 1:
		return ErrInvalidThreshold
	case p.NewtonRaphsonIterations <= 0:
		return ErrInvalidNewtonIterations
	case p.WeightHistogramBins <= 0:
		return ErrInvalidHistogramBins
	default:
		return nil
	}
}

// DefaultParameters mirrors the teacher's DefaultParameters preset: values
// suitable for a production run.
func DefaultParameters() *Parameters {
	return &Parameters{
		Helicity:       HelicitySpinorSum,
		Colour:         ColourFlowSampling,
		ColourDiscrete: true,
		Initial:        Partonic,
		PhaseSpace:     Recursive,
		BeamEnergy:     [2]float64{50, 50},
		ChannelInit:    BatchIterations{Count: 5, Batch: 1000},
		GridInit:       BatchIterations{Count: 5, Batch: 1000},

		AutoAdaptChannelBatch:    10000,
		AutoAdaptGridBatch:       10000,
		AutoAdaptSubprocessBatch: 10000,

		AdaptiveS:     true,
		AdaptiveT:     true,
		AdaptiveAngle: true,

		GridBinCap: 100,
		GridMode:   MaximumWeights,

		MultichannelThreshold: 0.01,
		SubprocessThreshold:   0.01,
		ChannelAdaptivity:     0.5,
		GridAdaptivity:        0.5,

		Exponents: Exponents{
			SHat:      1.5,
			Timelike:  1.5,
			Spacelike: 1.5,
			Auxiliary: 1.0,
		},

		DiscardedHighWeightFraction: 0.01,
		WeightHistogramBins:         100,
		NewtonRaphsonIterations:     10,
	}
}

// TestParameters mirrors the teacher's TestParameters preset: a much
// smaller configuration suitable for fast unit tests.
func TestParameters() *Parameters {
	return &Parameters{
		Helicity:       HelicityUniform,
		Colour:         ColourUniform,
		ColourDiscrete: true,
		Initial:        Partonic,
		PhaseSpace:     Uniform,
		BeamEnergy:     [2]float64{50, 50},
		ChannelInit:    BatchIterations{Count: 1, Batch: 10},
		GridInit:       BatchIterations{Count: 1, Batch: 10},

		AutoAdaptChannelBatch:    100,
		AutoAdaptGridBatch:       100,
		AutoAdaptSubprocessBatch: 100,

		GridBinCap: 16,
		GridMode:   SumWeights,

		MultichannelThreshold: 0,
		SubprocessThreshold:   0,
		ChannelAdaptivity:     1,
		GridAdaptivity:        1,

		Exponents: Exponents{SHat: 1, Timelike: 1, Spacelike: 1, Auxiliary: 1},

		DiscardedHighWeightFraction: 0,
		WeightHistogramBins:         10,
		NewtonRaphsonIterations:     5,
	}
}

// ExponentFor returns the per-particle override for name if present,
// otherwise the supplied default.
func (e Exponents) ExponentFor(name string, fallback float64) float64 {
	if e.PerParticle == nil {
		return fallback
	}
	if v, ok := e.PerParticle[name]; ok {
		return v
	}
	return fallback
}
