package evented_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/evented/pkg/evented"
)

func TestNewEvent(t *testing.T) {
	t.Run("copies payload", func(t *testing.T) {
		payload := map[string]any{"foo": "bar"}
		ev := evented.NewEvent("a", payload)
		payload["foo"] = "changed"

		assert.Equal(t, "a", ev.Type())
		assert.Equal(t, "bar", ev.Get("foo"))
	})

	t.Run("nil payload", func(t *testing.T) {
		ev := evented.NewEvent("a", nil)

		assert.Nil(t, ev.Get("foo"))
		assert.Empty(t, ev.Payload())
		assert.Nil(t, ev.Target())
	})

	t.Run("payload accessor returns a copy", func(t *testing.T) {
		ev := evented.NewEvent("a", map[string]any{"foo": "bar"})
		ev.Payload()["foo"] = "changed"

		assert.Equal(t, "bar", ev.Get("foo"))
	})
}

func TestData_FieldsAreACopy(t *testing.T) {
	node := evented.New()
	var second evented.Data
	node.On("a", evented.NewListener(func(d evented.Data) {
		d.Fields()["foo"] = "changed"
	}))
	node.On("a", evented.NewListener(func(d evented.Data) { second = d }))

	node.Fire(evented.NewEvent("a", map[string]any{"foo": "bar"}))

	assert.Equal(t, "bar", second.Get("foo"))
	assert.Equal(t, "a", second.Event().Type())
	assert.Same(t, node, second.Event().Target())
}

func TestStaticData_SnapshotsMap(t *testing.T) {
	m := map[string]any{"layer": "roads"}
	data := evented.StaticData(m)
	m["layer"] = "water"

	assert.Equal(t, "roads", data()["layer"])
}
