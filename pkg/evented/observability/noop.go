package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordFire does nothing.
func (NoopMetrics) RecordFire(_ context.Context, _, _ string, _ int, _ time.Duration) {}

// RecordPropagation does nothing.
func (NoopMetrics) RecordPropagation(_ context.Context, _, _ string) {}

// RecordListenerPanic does nothing.
func (NoopMetrics) RecordListenerPanic(_ context.Context, _, _ string) {}

// RecordJournalAppend does nothing.
func (NoopMetrics) RecordJournalAppend(_ context.Context, _ string, _ int64, _ error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartFireSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFireSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
