// Package observability provides logging, metrics, and tracing for
// evented nodes.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the node name to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "map")
//	enriched.Info("ready") // includes node
func EnrichLogger(logger *slog.Logger, node string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("node", node))
}

// LogFire logs a completed local dispatch.
func LogFire(logger *slog.Logger, eventType string, listeners int) {
	if logger == nil {
		return
	}
	logger.Debug("event fired",
		slog.String("event_type", eventType),
		slog.Int("listeners", listeners),
	)
}

// LogPropagate logs forwarding of an event to a parent node.
func LogPropagate(logger *slog.Logger, eventType, parent string) {
	if logger == nil {
		return
	}
	logger.Debug("event propagated",
		slog.String("event_type", eventType),
		slog.String("parent", parent),
	)
}

// LogListenerPanic logs a recovered listener panic.
func LogListenerPanic(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener panicked",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogJournalError logs a failed journal append (non-fatal).
func LogJournalError(logger *slog.Logger, node, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String("node", node),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
