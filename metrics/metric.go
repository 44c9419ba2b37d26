// Package metrics adapts the teacher's Averager/Counter/Gauge trio to the
// ampcore process generator: a running cross-section estimator, per-channel
// adaptation counters, and PARNI bin statistics all go through the same
// small interfaces so a caller can optionally back them with Prometheus.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter tracks a monotonically increasing count (e.g. events generated,
// rejects, sampler-degeneracy warnings).
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

type counter struct {
	mu        sync.RWMutex
	value     int64
	promCount prometheus.Counter
}

// NewCounter returns a Counter, optionally registered with reg. A nil
// Registerer yields an in-memory-only counter.
func NewCounter(name, help string, reg prometheus.Registerer) (Counter, error) {
	c := &counter{}
	if reg == nil {
		return c, nil
	}
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	if err := reg.Register(pc); err != nil {
		return nil, fmt.Errorf("registering counter %q: %w", name, err)
	}
	c.promCount = pc
	return c, nil
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	if c.promCount != nil {
		c.promCount.Add(float64(delta))
	}
}

func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge tracks a value that can move in either direction (e.g. the current
// max weight in unweighted generation, spec §4.8).
type Gauge interface {
	Set(value float64)
	Read() float64
}

type gauge struct {
	mu        sync.RWMutex
	value     float64
	promGauge prometheus.Gauge
}

// NewGauge returns a Gauge, optionally registered with reg.
func NewGauge(name, help string, reg prometheus.Registerer) (Gauge, error) {
	g := &gauge{}
	if reg == nil {
		return g, nil
	}
	pg := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := reg.Register(pg); err != nil {
		return nil, fmt.Errorf("registering gauge %q: %w", name, err)
	}
	g.promGauge = pg
	return g, nil
}

func (g *gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
	if g.promGauge != nil {
		g.promGauge.Set(value)
	}
}

func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Averager tracks a running average, used for quantities like the mean
// per-bin sample count in a PARNI grid.
type Averager interface {
	Observe(value float64)
	Read() float64
}

type averager struct {
	mu    sync.RWMutex
	sum   float64
	count float64

	promCount prometheus.Counter
	promSum   prometheus.Gauge
}

// NewAverager returns an Averager, optionally registered with reg.
func NewAverager(name, help string, reg prometheus.Registerer) (Averager, error) {
	a := &averager{}
	if reg == nil {
		return a, nil
	}
	count := prometheus.NewCounter(prometheus.CounterOpts{Name: name + "_count", Help: "count of " + help})
	sum := prometheus.NewGauge(prometheus.GaugeOpts{Name: name + "_sum", Help: "sum of " + help})
	if err := reg.Register(count); err != nil {
		return nil, fmt.Errorf("registering averager count %q: %w", name, err)
	}
	if err := reg.Register(sum); err != nil {
		return nil, fmt.Errorf("registering averager sum %q: %w", name, err)
	}
	a.promCount, a.promSum = count, sum
	return a, nil
}

func (a *averager) Observe(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum += value
	a.count++
	if a.promCount != nil {
		a.promCount.Inc()
	}
	if a.promSum != nil {
		a.promSum.Add(value)
	}
}

func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.count == 0 {
		return 0
	}
	return a.sum / a.count
}
