package store

import (
	"context"
	"log/slog"
	"time"
)

// Clock supplies the store's notion of time. Mutations stamp product
// updatedAt values through it so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns the function result.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the minimal structured logging surface used by the store. Args
// are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the store Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

func (s SlogLogger) Debug(msg string, args ...any) { s.L.Debug(msg, args...) }
func (s SlogLogger) Info(msg string, args ...any)  { s.L.Info(msg, args...) }
func (s SlogLogger) Warn(msg string, args ...any)  { s.L.Warn(msg, args...) }
func (s SlogLogger) Error(msg string, args ...any) { s.L.Error(msg, args...) }

// MetricsRecorder receives one observation per store operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts spans around store operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type storeOptions struct {
	clock         Clock
	logger        Logger
	metrics       MetricsRecorder
	tracer        Tracer
	newID         func() string
	coalesceDelay time.Duration
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		clock:         ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:        noopLogger{},
		metrics:       noopMetrics{},
		tracer:        noopTracer{},
		coalesceDelay: DefaultCoalesceDelay,
	}
}

// Option customises store construction.
type Option func(*storeOptions)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(o *storeOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics overrides the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *storeOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer overrides the tracer.
func WithTracer(t Tracer) Option {
	return func(o *storeOptions) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithIDGenerator overrides id generation for products and racks.
func WithIDGenerator(gen func() string) Option {
	return func(o *storeOptions) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithCoalesceDelay overrides the async write coalescing window. Zero keeps
// writes coalesced but fires them on the next timer tick; tests combine this
// with Flush for determinism.
func WithCoalesceDelay(d time.Duration) Option {
	return func(o *storeOptions) {
		if d >= 0 {
			o.coalesceDelay = d
		}
	}
}
