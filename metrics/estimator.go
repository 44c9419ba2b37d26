package metrics

import "math"

// CrossSection is a Kahan-compensated running estimator of sum(weight) and
// sum(weight^2), from which the process generator derives the cross
// section and its standard error (spec §4.8 step 5, §8 "converges to
// integral at rate O(1/sqrt(N))"). Kahan compensation keeps the running
// sums accurate across the very large event counts Monte-Carlo integration
// typically needs.
type CrossSection struct {
	sumW, compW   float64
	sumW2, compW2 float64
	n             int64
	rejects       int64
}

// Observe records one event's weight. A zero weight still counts toward n
// (spec §7: zero-weight events from cuts/kinematic infeasibility are
// counted as rejects but otherwise don't affect the estimator).
func (c *CrossSection) Observe(weight float64) {
	c.n++
	if weight == 0 {
		c.rejects++
		return
	}
	c.sumW, c.compW = kahanAdd(c.sumW, c.compW, weight)
	c.sumW2, c.compW2 = kahanAdd(c.sumW2, c.compW2, weight*weight)
}

func kahanAdd(sum, comp, x float64) (newSum, newComp float64) {
	y := x - comp
	t := sum + y
	newComp = (t - sum) - y
	newSum = t
	return
}

// N returns the total number of observed events, including rejects.
func (c *CrossSection) N() int64 { return c.n }

// Rejects returns the number of zero-weight events observed.
func (c *CrossSection) Rejects() int64 { return c.rejects }

// Mean returns the estimated cross section: sum(weight) / N.
func (c *CrossSection) Mean() float64 {
	if c.n == 0 {
		return 0
	}
	return c.sumW / float64(c.n)
}

// Variance returns the sample variance of the per-event weight.
func (c *CrossSection) Variance() float64 {
	if c.n < 2 {
		return 0
	}
	n := float64(c.n)
	mean := c.Mean()
	meanSq := c.sumW2 / n
	v := meanSq - mean*mean
	if v < 0 {
		// guards against floating point cancellation producing a tiny
		// negative variance for near-degenerate weight distributions.
		v = 0
	}
	return v
}

// StdError returns the standard error of the mean, sqrt(Var/N).
func (c *CrossSection) StdError() float64 {
	if c.n == 0 {
		return 0
	}
	return math.Sqrt(c.Variance() / float64(c.n))
}
