package journal_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/evented/pkg/evented"
	"github.com/randalmurphal/evented/pkg/evented/journal"
)

func TestRecorder_AttachAndDetach(t *testing.T) {
	store := journal.NewMemoryStore()
	defer store.Close()
	rec := journal.NewRecorder(store)

	node := evented.New(evented.WithName("map"))
	rec.Attach(node, "move", "click")
	rec.Attach(node, "move")

	node.FireType("move", map[string]any{"x": 1})
	node.FireType("click", nil)
	node.FireType("zoom", nil)

	records, err := store.List("map")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "move", records[0].Type)
	assert.Equal(t, "click", records[1].Type)

	rec.Detach(node, "move")
	node.FireType("move", nil)
	n, err := store.Count("map")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, node.Listens("click"))
	assert.False(t, node.Listens("move"))
}

func TestRecorder_RecordsForwardedEvents(t *testing.T) {
	store := journal.NewMemoryStore()
	defer store.Close()
	rec := journal.NewRecorder(store)

	parent := evented.New(evented.WithName("map"))
	child := evented.New(evented.WithName("layer"))
	child.SetEventedParent(parent, evented.StaticData(map[string]any{"layer": "roads"}))
	rec.Attach(parent, "data")

	child.FireType("data", map[string]any{"tiles": 4})

	records, err := store.List("map")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "layer", records[0].Target)

	fields, err := records[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tiles": float64(4), "layer": "roads"}, fields)
}

func TestRecorder_AppendFailureIsContained(t *testing.T) {
	store := journal.NewMemoryStore()
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := journal.NewRecorder(store, journal.WithRecorderLogger(logger))

	node := evented.New(evented.WithName("map"))
	rec.Attach(node, "move")
	after := 0
	node.On("move", evented.NewListener(func(evented.Data) { after++ }))

	assert.NotPanics(t, func() {
		node.FireType("move", nil)
	})
	assert.Equal(t, 1, after)
	assert.Equal(t, int64(1), rec.Errors())
	assert.Contains(t, buf.String(), "journal append failed")
}

func TestRecorder_DetachUnknownNode(t *testing.T) {
	rec := journal.NewRecorder(journal.NewMemoryStore())
	assert.NotPanics(t, func() {
		rec.Detach(evented.New(), "move")
	})
}
