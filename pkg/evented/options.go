package evented

import (
	"log/slog"

	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// nodeConfig holds construction settings for a node.
type nodeConfig struct {
	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	onPanic func(*ListenerError)
}

// defaultNodeConfig returns the default node configuration: no logging,
// no-op metrics and tracing, panics propagate.
func defaultNodeConfig() nodeConfig {
	return nodeConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a node created with New.
type Option func(*nodeConfig)

// WithName sets the node name used in logs, metrics and spans.
// Default: "evented-" followed by a short random id.
func WithName(name string) Option {
	return func(c *nodeConfig) {
		c.name = name
	}
}

// WithLogger enables debug logging of dispatch and propagation.
// A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *nodeConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
//
// Example:
//
//	node := evented.New(evented.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *nodeConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used to trace each dispatch.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *nodeConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithRecover makes the node recover listener panics. Each recovered panic
// is passed to handler and dispatch continues with the next listener.
// Without it a panic unwinds out of Fire, skipping the remaining listeners
// and the parent.
func WithRecover(handler func(*ListenerError)) Option {
	return func(c *nodeConfig) {
		c.onPanic = handler
	}
}
