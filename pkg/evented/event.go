package evented

import (
	"context"
	"maps"
)

// Event is a named notification with a payload.
// Events are immutable once created - dispatch never rewrites an Event,
// it builds a new one when the payload or target has to change.
type Event struct {
	typ     string
	payload map[string]any
	target  *Evented
}

// NewEvent creates an event of the given type.
// The payload is copied shallowly; a nil payload is treated as empty.
func NewEvent(typ string, payload map[string]any) *Event {
	return &Event{
		typ:     typ,
		payload: maps.Clone(payload),
	}
}

// Type returns the event type.
func (e *Event) Type() string {
	return e.typ
}

// Target returns the node the event was originally fired on.
// It is nil for events that have not been dispatched.
func (e *Event) Target() *Evented {
	return e.target
}

// Get returns the payload value for key, or nil if absent.
func (e *Event) Get(key string) any {
	return e.payload[key]
}

// Payload returns a copy of the payload fields.
func (e *Event) Payload() map[string]any {
	out := make(map[string]any, len(e.payload))
	maps.Copy(out, e.payload)
	return out
}

// withTarget returns a copy of the event bound to target.
func (e *Event) withTarget(target *Evented) *Event {
	return &Event{
		typ:     e.typ,
		payload: e.payload,
		target:  target,
	}
}

// derive builds the event forwarded to a parent: same type and target,
// payload overlaid with extra.
func (e *Event) derive(extra map[string]any) *Event {
	if len(extra) == 0 {
		return e
	}
	payload := make(map[string]any, len(e.payload)+len(extra))
	maps.Copy(payload, e.payload)
	maps.Copy(payload, extra)
	return &Event{
		typ:     e.typ,
		payload: payload,
		target:  e.target,
	}
}

// Data is what a listener receives: the event's payload fields together
// with its type and original target.
type Data struct {
	ctx   context.Context
	event *Event
}

// Type returns the type of the fired event.
func (d Data) Type() string {
	return d.event.typ
}

// Target returns the node Fire was originally called on. For events
// forwarded from a child this is the child, not the receiving node.
func (d Data) Target() *Evented {
	return d.event.target
}

// Get returns the field value for key, or nil if absent.
func (d Data) Get(key string) any {
	return d.event.payload[key]
}

// Lookup returns the field value for key and whether it exists.
func (d Data) Lookup(key string) (any, bool) {
	v, ok := d.event.payload[key]
	return v, ok
}

// Fields returns a copy of all payload fields, including parent data
// merged during propagation.
func (d Data) Fields() map[string]any {
	return d.event.Payload()
}

// Event returns the dispatched event.
func (d Data) Event() *Event {
	return d.event
}

// Context returns the context passed to FireContext, or context.Background.
func (d Data) Context() context.Context {
	if d.ctx == nil {
		return context.Background()
	}
	return d.ctx
}
