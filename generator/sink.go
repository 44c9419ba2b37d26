package generator

import (
	"go.uber.org/zap"

	"github.com/qflow/ampcore/log"
)

// Sink is the caller-supplied destination for event records and
// cross-section summaries (spec §6 "Persisted state layout": "emitted to
// a caller-supplied sink").
type Sink interface {
	OnEvent(Event)
	OnCrossSection(mean, stdErr float64, n int64)
}

// LogSink adapts a log.Logger into a Sink for drivers that just want
// line-oriented output, grounded on the teacher's notifier pattern.
type LogSink struct {
	Logger log.Logger
}

func (s LogSink) OnEvent(e Event) {
	s.Logger.Debug("event",
		zap.Float64("weight", e.Weight),
		zap.Int("n_incoming", len(e.Incoming)),
		zap.Int("n_outgoing", len(e.Outgoing)),
	)
}

func (s LogSink) OnCrossSection(mean, stdErr float64, n int64) {
	s.Logger.Info("cross_section",
		zap.Float64("mean_pb", mean),
		zap.Float64("stderr_pb", stdErr),
		zap.Int64("n", n),
	)
}
