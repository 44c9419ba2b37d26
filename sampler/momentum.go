package sampler

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/qflow/ampcore/config"
	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/phasespace"
	"github.com/qflow/ampcore/randsrc"
)

// ErrRAMBONotConverged is returned when the massive-RAMBO Newton-Raphson
// rescaling fails to converge within the configured iteration count.
var ErrRAMBONotConverged = errors.New("sampler: RAMBO mass rescaling did not converge")

// MomentumResult is the outcome of one momentum draw: four-momenta and
// the phase-space weight. RAMBOGenerator fills the outgoing legs only;
// RecursiveMomentumGenerator returns one momentum per external leg.
type MomentumResult struct {
	Momenta []model.Momentum
	Weight  float64
}

// RAMBOGenerator is spec glossary's "uniform massless n-body phase-space
// generator extended by Newton iteration to handle massive outgoing
// particles" (spec §4.8, §6 "phase space generator: uniform (RAMBO-
// like)"), grounded on the classical Kleiss-Stirling-Ellis algorithm.
type RAMBOGenerator struct {
	Masses     []float64
	Iterations int
}

// NewRAMBO constructs a generator for len(masses) outgoing particles.
func NewRAMBO(masses []float64, newtonIterations int) *RAMBOGenerator {
	return &RAMBOGenerator{Masses: masses, Iterations: newtonIterations}
}

// Generate draws n massless isotropic four-momenta summing to a
// CM-frame total of (cmEnergy, 0, 0, 0), then rescales them to satisfy
// the configured outgoing masses via Newton-Raphson (spec §6 "Newton-
// Raphson iterations in massive RAMBO").
func (r *RAMBOGenerator) Generate(src randsrc.Source, cmEnergy float64) (MomentumResult, error) {
	n := len(r.Masses)
	if n < 2 {
		return MomentumResult{}, ErrNoLegs
	}

	q := make([]model.Momentum, n)
	var sum model.Momentum
	for i := range q {
		c := 2*src.Float64() - 1
		phi := 2 * math.Pi * src.Float64()
		q0 := -math.Log(src.Float64() * src.Float64())
		sinTheta := math.Sqrt(1 - c*c)
		q[i] = model.Momentum{q0, q0 * sinTheta * math.Cos(phi), q0 * sinTheta * math.Sin(phi), q0 * c}
		sum = sum.Add(q[i])
	}

	mTot := sum.Mass()
	if mTot <= 0 {
		return MomentumResult{}, ErrRAMBONotConverged
	}
	bx, by, bz := -sum[1]/mTot, -sum[2]/mTot, -sum[3]/mTot
	gamma := sum[0] / mTot
	a := 1 / (1 + gamma)
	x := cmEnergy / mTot

	p := make([]model.Momentum, n)
	for i, qi := range q {
		bq := bx*qi[1] + by*qi[2] + bz*qi[3]
		p[i] = model.Momentum{
			x * (gamma*qi[0] + bq),
			x * (qi[1] + bx*(qi[0]+a*bq)),
			x * (qi[2] + by*(qi[0]+a*bq)),
			x * (qi[3] + bz*(qi[0]+a*bq)),
		}
	}

	weight := masslessRAMBOWeight(n, cmEnergy)

	allMassless := floats.Count(func(m float64) bool { return m != 0 }, r.Masses) == 0
	if allMassless {
		return MomentumResult{Momenta: p, Weight: weight}, nil
	}

	k, jacobian, err := r.rescaleMassive(p, cmEnergy)
	if err != nil {
		return MomentumResult{}, err
	}
	return MomentumResult{Momenta: k, Weight: weight * jacobian}, nil
}

func masslessRAMBOWeight(n int, cmEnergy float64) float64 {
	return math.Pow(math.Pi/2, float64(n-1)) *
		math.Pow(cmEnergy, float64(2*n-4)) /
		(factorial(n-1) * factorial(n-2))
}

// rescaleMassive finds ξ solving Σᵢ sqrt(mᵢ²+ξ²|pᵢ|²) = cmEnergy by
// Newton-Raphson, rescales each massless momentum's spatial part by ξ, and
// returns the associated Jacobian weight correction.
func (r *RAMBOGenerator) rescaleMassive(p []model.Momentum, cmEnergy float64) ([]model.Momentum, float64, error) {
	n := len(p)
	xi := 1.0
	iterations := r.Iterations
	if iterations <= 0 {
		iterations = 10
	}
	for iter := 0; iter < iterations; iter++ {
		var f, fp float64
		for i, m := range r.Masses {
			mag := p[i][0] // |p_i| for a massless momentum equals its energy
			e := math.Sqrt(m*m + xi*xi*mag*mag)
			f += e
			fp += xi * mag * mag / e
		}
		f -= cmEnergy
		if fp == 0 {
			break
		}
		delta := f / fp
		xi -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	if math.IsNaN(xi) || math.IsInf(xi, 0) || xi <= 0 {
		return nil, 0, ErrRAMBONotConverged
	}

	k := make([]model.Momentum, n)
	prodRatio := 1.0
	var sumK, sumK2OverE float64
	for i, m := range r.Masses {
		mag := p[i][0]
		e := math.Sqrt(m*m + xi*xi*mag*mag)
		k[i] = model.Momentum{e, xi * p[i][1], xi * p[i][2], xi * p[i][3]}
		if mag > 0 {
			prodRatio *= (xi * mag) / mag
		}
		sumK += xi * mag
		sumK2OverE += (xi * mag) * (xi * mag) / e
	}
	if sumK2OverE == 0 {
		return nil, 0, ErrRAMBONotConverged
	}
	jacobian := math.Pow(xi, float64(2*n-3)) * prodRatio * (sumK / sumK2OverE) * cmEnergy / float64(n)
	if math.IsNaN(jacobian) || math.IsInf(jacobian, 0) {
		return nil, 0, ErrRAMBONotConverged
	}
	return k, jacobian, nil
}

// RecursiveMomentumGenerator adapts a phasespace.Tree into the same
// MomentumResult shape RAMBOGenerator produces, for the "recursive"
// phase-space generator mode (spec §6).
type RecursiveMomentumGenerator struct {
	Tree *phasespace.Tree
	Exps config.Exponents
}

// Generate delegates to the channel tree's own recursive decomposition,
// also returning which particle channels were chosen so the caller can
// feed them back into AdaptChannels/RecordParticleContribution.
func (r *RecursiveMomentumGenerator) Generate(src randsrc.Source, incoming model.Momentum) (MomentumResult, []int, error) {
	momenta, weight, chosen, err := r.Tree.Generate(src, r.Exps, incoming)
	if err != nil {
		return MomentumResult{}, nil, err
	}
	return MomentumResult{Momenta: momenta, Weight: weight}, chosen, nil
}
