package model

import (
	"math"
	"math/cmplx"

	"github.com/qflow/ampcore/tensor"
)

// WaveFunctionFunc fills an external leg's wave-function tensor for the
// given momentum, helicity index, and direction (spec §3 "wave-function
// table (per helicity/direction/massless-vs-massive)").
type WaveFunctionFunc func(p Momentum, helicity int, outgoing bool) *tensor.Tensor

// PropagatorDenomFunc computes the propagator denominator, invoked by
// refresh_propagator (spec §4.2).
type PropagatorDenomFunc func(p Momentum, mass, width float64) complex128

// PropagatorNumeratorFunc applies the propagator numerator in place to an
// internal current's amplitude tensor (spec §4.2 "propagate(iter, iter_end)").
type PropagatorNumeratorFunc func(t *tensor.Tensor, p Momentum, mass float64)

// ContractionFunc contracts an external wave-function against the final
// internal current's tensor to produce the scalar amplitude (spec §4.4
// step 3).
type ContractionFunc func(wave, amp *tensor.Tensor) complex128

// ScalarWaveFunction returns the trivial rank-0 amplitude for a spin-0 leg.
func ScalarWaveFunction(Momentum, int, bool) *tensor.Tensor {
	t := tensor.New()
	t.Set(0, 1)
	return t
}

// VectorWaveFunction returns the polarization vector for a spin-1 leg.
// Massless legs get the two transverse circular polarizations (helicity
// ±1, indices 0 and 1 of the 2-valued helicity range); massive legs
// additionally get the longitudinal mode (helicity 0).
func VectorWaveFunction(p Momentum, helicity int, outgoing bool) *tensor.Tensor {
	t := tensor.New(4)
	m := p.Mass()
	var eps [4]complex128
	if m < 1e-9 {
		eps = masslessPolarization(p, helicity)
	} else {
		eps = massivePolarization(p, helicity, m)
	}
	sign := complex(1, 0)
	if outgoing {
		// outgoing polarization vectors are the complex conjugate of the
		// incoming ones in the standard convention.
		for i := range eps {
			eps[i] = cmplx.Conj(eps[i])
		}
	}
	for mu := 0; mu < 4; mu++ {
		t.SetAt(sign*eps[mu], mu)
	}
	return t
}

// masslessPolarization builds the two transverse polarization vectors for
// a massless vector boson using a fixed reference direction, the standard
// spinor-helicity construction's vector analogue.
func masslessPolarization(p Momentum, helicity int) [4]complex128 {
	// reference direction: pick an axis not parallel to the spatial momentum
	ref := [3]float64{0, 0, 1}
	px, py, pz := p[1], p[2], p[3]
	if math.Abs(pz) > 0.9*p.SpatialMag() {
		ref = [3]float64{1, 0, 0}
	}
	// e1 = ref x p̂ (normalized), e2 = p̂ x e1
	mag := p.SpatialMag()
	if mag < 1e-12 {
		mag = 1e-12
	}
	phat := [3]float64{px / mag, py / mag, pz / mag}
	e1 := cross(ref, phat)
	e1 = normalize(e1)
	e2 := cross(phat, e1)

	sign := 1.0
	if helicity < 0 {
		sign = -1.0
	}
	inv := 1.0 / math.Sqrt2
	var eps [4]complex128
	eps[0] = 0
	for i := 0; i < 3; i++ {
		eps[i+1] = complex(-inv*e1[i], -sign*inv*e2[i])
	}
	return eps
}

// massivePolarization builds the three polarization states (-1,0,+1) of a
// massive vector boson in its production frame.
func massivePolarization(p Momentum, helicity int, m float64) [4]complex128 {
	if helicity == 0 {
		mag := p.SpatialMag()
		eps := [4]complex128{
			complex(mag/m, 0),
			complex(p[0]*p[1]/(m*mag+1e-300), 0),
			complex(p[0]*p[2]/(m*mag+1e-300), 0),
			complex(p[0]*p[3]/(m*mag+1e-300), 0),
		}
		if mag < 1e-9 {
			return [4]complex128{0, 0, 0, 1}
		}
		return eps
	}
	return masslessPolarization(p, helicity)
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(a [3]float64) [3]float64 {
	n := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	if n < 1e-12 {
		return a
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}

// DiracWaveFunction returns the 4-component Dirac spinor for a spin-1/2
// leg using the massless helicity-spinor limit embedded in the four-
// component (chiral) basis, extended to massive legs by an energy-scaled
// chirality mix. This favours a single closed-form construction usable for
// any mass over an exact Dirac-equation solve.
func DiracWaveFunction(p Momentum, helicity int, outgoing bool) *tensor.Tensor {
	t := tensor.New(4)
	E := p[0]
	mag := p.SpatialMag()
	if mag < 1e-12 {
		mag = 1e-12
	}
	theta := math.Acos(clamp(p[3]/mag, -1, 1))
	phi := math.Atan2(p[2], p[1])

	cos2, sin2 := math.Cos(theta/2), math.Sin(theta/2)
	phase := cmplx.Exp(complex(0, phi))

	var xiUp, xiDown [2]complex128
	xiUp = [2]complex128{complex(cos2, 0), phase * complex(sin2, 0)}
	xiDown = [2]complex128{-phase * complex(sin2, 0), complex(cos2, 0)}

	chi := xiUp
	if helicity < 0 {
		chi = xiDown
	}

	ePlus := math.Sqrt(math.Max(E+mag, 0))
	eMinus := math.Sqrt(math.Max(E-mag, 0))

	// chiral basis: upper two components carry sqrt(E-p·σ), lower two
	// carry sqrt(E+p·σ); for the helicity eigenstate this reduces to a
	// single overall scale per half.
	if helicity > 0 {
		t.SetAt(complex(eMinus, 0)*chi[0], 0)
		t.SetAt(complex(eMinus, 0)*chi[1], 1)
		t.SetAt(complex(ePlus, 0)*chi[0], 2)
		t.SetAt(complex(ePlus, 0)*chi[1], 3)
	} else {
		t.SetAt(complex(ePlus, 0)*chi[0], 0)
		t.SetAt(complex(ePlus, 0)*chi[1], 1)
		t.SetAt(complex(eMinus, 0)*chi[0], 2)
		t.SetAt(complex(eMinus, 0)*chi[1], 3)
	}
	if outgoing {
		for i := 0; i < 4; i++ {
			v, _ := t.At(i)
			t.SetAt(cmplx.Conj(v), i)
		}
	}
	return t
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ScalarPropagatorDenominator returns 1/(p^2 - m^2 + i m Γ).
func ScalarPropagatorDenominator(p Momentum, mass, width float64) complex128 {
	denom := complex(p.Mass2()-mass*mass, mass*width)
	return 1 / denom
}

// IdentityNumerator leaves the current unchanged: the correct numerator
// for a scalar propagator.
func IdentityNumerator(*tensor.Tensor, Momentum, float64) {}

// VectorFeynmanGaugeNumerator applies -g^{μν} in the mostly-minus metric to
// a rank-1 (4-component) current, the Feynman-gauge numerator for a
// massless vector propagator (spec §4.2 "propagate").
func VectorFeynmanGaugeNumerator(t *tensor.Tensor, _ Momentum, _ float64) {
	for mu := 0; mu < 4; mu++ {
		v, _ := t.At(mu)
		sign := -1.0
		if mu == 0 {
			sign = 1.0
		}
		t.SetAt(complex(-sign, 0)*v, mu)
	}
}

// DefaultContraction sums the elementwise product of two equal-shape
// tensors — the scalar amplitude of spec §4.4 step 3.
func DefaultContraction(wave, amp *tensor.Tensor) complex128 {
	var sum complex128
	for i := 0; i < wave.Len(); i++ {
		sum += wave.Get(i) * amp.Get(i)
	}
	return sum
}
