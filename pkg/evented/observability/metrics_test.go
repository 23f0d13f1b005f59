package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the counter value for the datapoint whose attribute key equals value.
func sumFor(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordFire(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordFire(ctx, "map", "move", 2, time.Millisecond)
	m.RecordFire(ctx, "map", "move", 0, time.Millisecond)

	rm := collectMetrics(t, reader)

	count := findMetric(rm, "evented.fire.count")
	require.NotNil(t, count)
	assert.Equal(t, int64(2), sumFor(t, count, "event_type", "move"))

	listeners := findMetric(rm, "evented.fire.listeners")
	require.NotNil(t, listeners)
	hist, ok := listeners.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "Expected Histogram[int64] type")
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, int64(2), hist.DataPoints[0].Sum)

	assert.NotNil(t, findMetric(rm, "evented.fire.latency_ms"))
}

func TestRecordPropagationAndPanics(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordPropagation(ctx, "child", "move")
	m.RecordListenerPanic(ctx, "child", "move")
	m.RecordListenerPanic(ctx, "child", "move")

	rm := collectMetrics(t, reader)

	prop := findMetric(rm, "evented.propagation.count")
	require.NotNil(t, prop)
	assert.Equal(t, int64(1), sumFor(t, prop, "node", "child"))

	panics := findMetric(rm, "evented.listener.panics")
	require.NotNil(t, panics)
	assert.Equal(t, int64(2), sumFor(t, panics, "node", "child"))
}

func TestRecordJournalAppend(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordJournalAppend(ctx, "map", 128, nil)
	m.RecordJournalAppend(ctx, "map", 0, errors.New("closed"))

	rm := collectMetrics(t, reader)

	size := findMetric(rm, "evented.journal.record.size_bytes")
	require.NotNil(t, size)
	hist, ok := size.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, int64(128), hist.DataPoints[0].Sum)

	errs := findMetric(rm, "evented.journal.errors")
	require.NotNil(t, errs)
	assert.Equal(t, int64(1), sumFor(t, errs, "node", "map"))
}
