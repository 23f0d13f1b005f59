package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCapture returns a debug-level JSON logger and its output buffer.
func newCapture() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}

// lastRecord decodes the last JSON line written to buf.
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds node", func(t *testing.T) {
		logger, buf := newCapture()

		EnrichLogger(logger, "map").Info("test message")

		record := lastRecord(t, buf)
		assert.Equal(t, "map", record["node"])
		assert.Equal(t, "test message", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "map"))
	})
}

func TestLogFire(t *testing.T) {
	logger, buf := newCapture()

	LogFire(logger, "move", 3)

	record := lastRecord(t, buf)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "event fired", record["msg"])
	assert.Equal(t, "move", record["event_type"])
	assert.Equal(t, float64(3), record["listeners"]) // JSON decodes ints as float64
}

func TestLogPropagate(t *testing.T) {
	logger, buf := newCapture()

	LogPropagate(logger, "move", "root")

	record := lastRecord(t, buf)
	assert.Equal(t, "event propagated", record["msg"])
	assert.Equal(t, "root", record["parent"])
}

func TestLogListenerPanic(t *testing.T) {
	logger, buf := newCapture()

	LogListenerPanic(logger, "move", errors.New("boom"))

	record := lastRecord(t, buf)
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "listener panicked", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestLogJournalError(t *testing.T) {
	logger, buf := newCapture()

	LogJournalError(logger, "map", "move", errors.New("disk full"))

	record := lastRecord(t, buf)
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "journal append failed", record["msg"])
	assert.Equal(t, "map", record["node"])
	assert.Equal(t, "disk full", record["error"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogFire(nil, "a", 0)
		LogPropagate(nil, "a", "p")
		LogListenerPanic(nil, "a", errors.New("x"))
		LogJournalError(nil, "n", "a", errors.New("x"))
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 5*time.Millisecond)
}
