// Package log provides the structured-logging contract shared by every
// ampcore subsystem that can emit a warning or error per the core's
// propagation policy (single-event failures are logged and the event's
// weight is zeroed; registry-level failures are logged and the owning
// process is invalidated).
package log

import (
	"go.uber.org/zap"
)

// Logger is the contract every ampcore package logs through instead of
// fmt.Println or panic. Implementations must be safe to share across a
// single-threaded generator's lifetime.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)

	// With returns a Logger that prepends fields to every subsequent call,
	// used to attach e.g. the process or subprocess name once.
	With(fields ...zap.Field) Logger
}

// zapLogger adapts a *zap.Logger to the Logger contract.
type zapLogger struct {
	l *zap.Logger
}

// New wraps a *zap.Logger. Pass zap.NewNop() for tests that don't care
// about log output but still want the real control flow exercised.
func New(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewDevelopment returns a human-readable logger suitable for a CLI driver.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

// noop discards everything. It is the default when a caller doesn't
// supply a Logger, mirroring the teacher's NewNoOpLogger.
type noop struct{}

// NewNoOpLogger returns a Logger that discards all output.
func NewNoOpLogger() Logger { return noop{} }

func (noop) Debug(string, ...zap.Field) {}
func (noop) Info(string, ...zap.Field)  {}
func (noop) Warn(string, ...zap.Field)  {}
func (noop) Error(string, ...zap.Field) {}
func (noop) With(...zap.Field) Logger   { return noop{} }
