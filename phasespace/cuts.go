package phasespace

import (
	"math"

	"github.com/qflow/ampcore/model"
)

// Event is the minimal momentum/flavour view a Cut predicate inspects
// (spec §6 "Phase-space cut predicate: a cut object exposes a single
// method pass(event)"). generator.Event does not embed it; a caller
// builds this view from an event record before applying a cut.
type Event struct {
	Incoming    []model.Momentum
	Outgoing    []model.Momentum
	OutgoingPDG []int
}

// Cut is a polymorphic predicate applied after momentum generation and
// before matrix-element evaluation; events failing a cut carry weight 0
// (spec §4.6 "Cuts").
type Cut interface {
	Pass(e Event) bool
}

// MinDimass requires the invariant mass of outgoing legs I and J to be
// at least Min.
type MinDimass struct {
	I, J int
	Min  float64
}

func (c MinDimass) Pass(e Event) bool {
	sum := e.Outgoing[c.I].Add(e.Outgoing[c.J])
	return sum.Mass() >= c.Min
}

// MinPT requires outgoing leg I's transverse momentum to be at least Min.
type MinPT struct {
	I   int
	Min float64
}

func (c MinPT) Pass(e Event) bool {
	p := e.Outgoing[c.I]
	return math.Hypot(p[1], p[2]) >= c.Min
}

// MaxRapidity requires outgoing leg I's rapidity magnitude to be at most Max.
type MaxRapidity struct {
	I   int
	Max float64
}

func (c MaxRapidity) Pass(e Event) bool {
	p := e.Outgoing[c.I]
	denom := p[0] - p[3]
	if denom <= 1e-12 {
		return false
	}
	y := 0.5 * math.Log((p[0]+p[3])/denom)
	return math.Abs(y) <= c.Max
}

// MinAngularSeparation requires the ΔR separation (pseudorapidity-
// azimuth) between outgoing legs I and J to be at least Min.
type MinAngularSeparation struct {
	I, J int
	Min  float64
}

func (c MinAngularSeparation) Pass(e Event) bool {
	pi, pj := e.Outgoing[c.I], e.Outgoing[c.J]
	dEta := pseudorapidity(pi) - pseudorapidity(pj)
	dPhi := math.Atan2(pi[2], pi[1]) - math.Atan2(pj[2], pj[1])
	for dPhi > math.Pi {
		dPhi -= 2 * math.Pi
	}
	for dPhi < -math.Pi {
		dPhi += 2 * math.Pi
	}
	return math.Hypot(dEta, dPhi) >= c.Min
}

func pseudorapidity(p model.Momentum) float64 {
	mag := p.SpatialMag()
	if mag-p[3] <= 1e-12 {
		return math.Inf(1)
	}
	return 0.5 * math.Log((mag + p[3]) / (mag - p[3] + 1e-300))
}

// All combines several cuts into one that passes only if every member
// passes, short-circuiting on the first failure.
type All []Cut

func (cs All) Pass(e Event) bool {
	for _, c := range cs {
		if !c.Pass(e) {
			return false
		}
	}
	return true
}
