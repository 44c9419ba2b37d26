package phasespace

import (
	"math"

	"github.com/qflow/ampcore/model"
	"github.com/qflow/ampcore/parni"
	"github.com/qflow/ampcore/randsrc"
)

// angleDomainVolume is the solid-angle measure of the (cosTheta, phi)
// rectangle [-1,1]x[0,2π] a branching's angle grid covers.
const angleDomainVolume = 2 * 2 * math.Pi

// kallen is the triangle (Källén) function λ(a,b,c), whose square root
// gives the two-body breakup momentum in the parent rest frame.
func kallen(a, b, c float64) float64 {
	return a*a + b*b + c*c - 2*a*b - 2*b*c - 2*c*a
}

// twoBodyMomentum returns the daughter momentum magnitude |p*| in the
// parent rest frame for a parent of invariant mass² s decaying to
// daughters of invariant mass² s1, s2.
func twoBodyMomentum(s, s1, s2 float64) float64 {
	lambda := kallen(s, s1, s2)
	if lambda < 0 {
		lambda = 0
	}
	return math.Sqrt(lambda) / (2 * math.Sqrt(math.Max(s, 1e-300)))
}

// sampleAngles draws a direction in (cosTheta, phi) (spec §4.6 step 3
// "uniformly or adaptively"): uniform when grid is nil, otherwise drawn
// from the branching's PARNI grid, whose returned weight (relative to
// the whole [-1,1]x[0,2π] domain) is folded into factor so a flat,
// un-adapted grid reproduces the uniform case exactly (factor == 1).
func sampleAngles(src randsrc.Source, grid *parni.Grid) (cosTheta, phi, factor float64) {
	if grid == nil {
		cosTheta = 2*src.Float64() - 1
		phi = 2 * math.Pi * src.Float64()
		return cosTheta, phi, 1
	}
	point, weight := grid.Generate(src)
	return point[0], point[1], weight / angleDomainVolume
}

// twoBodyDecay builds the two daughter four-momenta in the lab frame,
// given the parent's lab-frame momentum, its invariant mass² s, and the
// two daughters' invariant masses² s1, s2, sampling the branching angle
// (spec §4.6 steps 3-4: sample the branching angle, then boost from the
// parent rest frame to the lab frame), returning the angle sampler's
// weight-correction factor (1 for uniform sampling, grid-dependent
// otherwise).
func twoBodyDecay(parent model.Momentum, s, s1, s2 float64, src randsrc.Source, grid *parni.Grid) (model.Momentum, model.Momentum, float64) {
	pStar := twoBodyMomentum(s, s1, s2)
	cosTheta, phi, factor := sampleAngles(src, grid)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))

	e1 := math.Sqrt(s1 + pStar*pStar)
	e2 := math.Sqrt(s2 + pStar*pStar)

	rest1 := model.Momentum{
		e1,
		pStar * sinTheta * math.Cos(phi),
		pStar * sinTheta * math.Sin(phi),
		pStar * cosTheta,
	}
	rest2 := model.Momentum{e2, -rest1[1], -rest1[2], -rest1[3]}

	return boostFromRest(rest1, parent), boostFromRest(rest2, parent), factor
}

// boostFromRest boosts p, given in the rest frame of a system whose
// lab-frame four-momentum is labMomentum, into the lab frame.
func boostFromRest(p, labMomentum model.Momentum) model.Momentum {
	m := labMomentum.Mass()
	if m < 1e-12 {
		return p
	}
	beta := [3]float64{labMomentum[1] / labMomentum[0], labMomentum[2] / labMomentum[0], labMomentum[3] / labMomentum[0]}
	betaMag2 := beta[0]*beta[0] + beta[1]*beta[1] + beta[2]*beta[2]
	gamma := labMomentum[0] / m
	if betaMag2 < 1e-24 {
		return model.Momentum{gamma * p[0], p[1], p[2], p[3]}
	}
	pDotBeta := p[1]*beta[0] + p[2]*beta[1] + p[3]*beta[2]
	factor := (gamma-1)/betaMag2*pDotBeta + gamma*p[0]
	return model.Momentum{
		gamma*p[0] + gamma*pDotBeta,
		p[1] + factor*beta[0],
		p[2] + factor*beta[1],
		p[3] + factor*beta[2],
	}
}

// sampleInvariant draws s in [sLow,sHigh] via a Breit-Wigner map for a
// resonant particle (mass>0, width>0) or a power-law s^-ν map otherwise
// (spec §4.6 step 2), returning the sample and the reciprocal of its
// sampling density (the phase-space weight contribution).
func sampleInvariant(mass, width, nu, sLow, sHigh float64, src randsrc.Source) (s, weight float64) {
	if sHigh <= sLow {
		return sLow, 0
	}
	if mass > 0 && width > 0 {
		return breitWignerSample(mass, width, sLow, sHigh, src)
	}
	return powerLawSample(nu, sLow, sHigh, src)
}

// breitWignerSample samples s via the standard arctan transform that
// makes a Breit-Wigner uniform in the mapped variable.
func breitWignerSample(mass, width float64, sLow, sHigh float64, src randsrc.Source) (s, weight float64) {
	m2 := mass * mass
	mw := mass * width
	yLow := math.Atan2(sLow-m2, mw)
	yHigh := math.Atan2(sHigh-m2, mw)
	y := yLow + src.Float64()*(yHigh-yLow)
	s = m2 + mw*math.Tan(y)
	if s < sLow {
		s = sLow
	}
	if s > sHigh {
		s = sHigh
	}
	density := mw / ((yHigh - yLow) * ((s-m2)*(s-m2) + mw*mw))
	if density <= 0 {
		return s, 0
	}
	return s, 1 / density
}

// powerLawSample samples s via inverse-CDF of a density proportional to
// s^-ν over [sLow,sHigh], ν != 1 (ν==1 falls back to a log map).
func powerLawSample(nu, sLow, sHigh float64, src randsrc.Source) (s, weight float64) {
	r := src.Float64()
	span := sHigh - sLow
	if span <= 0 {
		return sLow, 0
	}
	if math.Abs(nu-1) < 1e-9 {
		s = sLow * math.Pow(sHigh/sLow, r)
		if sLow <= 0 {
			s = sLow + r*span
			return s, span
		}
		density := 1 / (s * math.Log(sHigh/sLow))
		if density <= 0 {
			return s, 0
		}
		return s, 1 / density
	}
	p := 1 - nu
	lo := math.Pow(math.Max(sLow, 1e-300), p)
	hi := math.Pow(sHigh, p)
	v := lo + r*(hi-lo)
	s = math.Pow(v, 1/p)
	density := math.Abs(p) * math.Pow(s, -nu) / math.Abs(hi-lo)
	if density <= 0 {
		return s, 0
	}
	return s, 1 / density
}
