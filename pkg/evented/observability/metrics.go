package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records evented metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordFire records one local dispatch and how many listeners it invoked.
	RecordFire(ctx context.Context, node, eventType string, listeners int, duration time.Duration)

	// RecordPropagation records an event forwarded to a parent node.
	RecordPropagation(ctx context.Context, node, eventType string)

	// RecordListenerPanic records a recovered listener panic.
	RecordListenerPanic(ctx context.Context, node, eventType string)

	// RecordJournalAppend records a journal append with its encoded size.
	RecordJournalAppend(ctx context.Context, node string, sizeBytes int64, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	fires         metric.Int64Counter
	fireListeners metric.Int64Histogram
	fireLatency   metric.Float64Histogram
	propagations  metric.Int64Counter
	panics        metric.Int64Counter
	journalSize   metric.Int64Histogram
	journalErrors metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("evented")

	fires, err := meter.Int64Counter("evented.fire.count",
		metric.WithDescription("Number of local event dispatches"),
	)
	if err != nil {
		return nil, err
	}

	fireListeners, err := meter.Int64Histogram("evented.fire.listeners",
		metric.WithDescription("Listeners invoked per dispatch"),
	)
	if err != nil {
		return nil, err
	}

	fireLatency, err := meter.Float64Histogram("evented.fire.latency_ms",
		metric.WithDescription("Local dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	propagations, err := meter.Int64Counter("evented.propagation.count",
		metric.WithDescription("Number of events forwarded to a parent"),
	)
	if err != nil {
		return nil, err
	}

	panics, err := meter.Int64Counter("evented.listener.panics",
		metric.WithDescription("Number of recovered listener panics"),
	)
	if err != nil {
		return nil, err
	}

	journalSize, err := meter.Int64Histogram("evented.journal.record.size_bytes",
		metric.WithDescription("Encoded journal record size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	journalErrors, err := meter.Int64Counter("evented.journal.errors",
		metric.WithDescription("Number of failed journal appends"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		fires:         fires,
		fireListeners: fireListeners,
		fireLatency:   fireLatency,
		propagations:  propagations,
		panics:        panics,
		journalSize:   journalSize,
		journalErrors: journalErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordFire records a local dispatch.
func (m *otelMetrics) RecordFire(ctx context.Context, node, eventType string, listeners int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("event_type", eventType),
	)
	m.fires.Add(ctx, 1, attrs)
	m.fireListeners.Record(ctx, int64(listeners), attrs)
	m.fireLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordPropagation records a parent forward.
func (m *otelMetrics) RecordPropagation(ctx context.Context, node, eventType string) {
	m.propagations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("event_type", eventType),
	))
}

// RecordListenerPanic records a recovered panic.
func (m *otelMetrics) RecordListenerPanic(ctx context.Context, node, eventType string) {
	m.panics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("event_type", eventType),
	))
}

// RecordJournalAppend records a journal append.
func (m *otelMetrics) RecordJournalAppend(ctx context.Context, node string, sizeBytes int64, err error) {
	attrs := metric.WithAttributes(attribute.String("node", node))
	if err != nil {
		m.journalErrors.Add(ctx, 1, attrs)
		return
	}
	m.journalSize.Record(ctx, sizeBytes, attrs)
}
