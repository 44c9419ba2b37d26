package model

import "math"

// Momentum is a four-momentum (E, px, py, pz) in the mostly-minus metric
// diag(1,-1,-1,-1).
type Momentum [4]float64

// Dot returns the Minkowski inner product p·q.
func (p Momentum) Dot(q Momentum) float64 {
	return p[0]*q[0] - p[1]*q[1] - p[2]*q[2] - p[3]*q[3]
}

// Mass2 returns p·p.
func (p Momentum) Mass2() float64 { return p.Dot(p) }

// Mass returns sqrt(max(p·p, 0)).
func (p Momentum) Mass() float64 {
	m2 := p.Mass2()
	if m2 < 0 {
		return 0
	}
	return math.Sqrt(m2)
}

// Add returns p+q.
func (p Momentum) Add(q Momentum) Momentum {
	return Momentum{p[0] + q[0], p[1] + q[1], p[2] + q[2], p[3] + q[3]}
}

// Sub returns p-q.
func (p Momentum) Sub(q Momentum) Momentum {
	return Momentum{p[0] - q[0], p[1] - q[1], p[2] - q[2], p[3] - q[3]}
}

// Neg returns -p.
func (p Momentum) Neg() Momentum {
	return Momentum{-p[0], -p[1], -p[2], -p[3]}
}

// SpatialMag returns |p⃗|.
func (p Momentum) SpatialMag() float64 {
	return math.Sqrt(p[1]*p[1] + p[2]*p[2] + p[3]*p[3])
}
