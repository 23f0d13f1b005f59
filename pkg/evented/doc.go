// Package evented provides a synchronous, in-process publish/subscribe
// primitive.
//
// # Overview
//
// An Evented node keeps listeners keyed by event type. Fire invokes the
// listeners registered for the event's type, in registration order, on the
// calling goroutine, then forwards the event to the node's parent if one is
// attached.
//
//	node := evented.New()
//	onMove := evented.NewListener(func(d evented.Data) {
//	    fmt.Println(d.Type(), d.Get("x"))
//	})
//	node.On("move", onMove)
//	node.Fire(evented.NewEvent("move", map[string]any{"x": 10}))
//	node.Off("move", onMove)
//
// # Listener Identity
//
// Listeners are compared by pointer. On is idempotent for a given
// *Listener and type; Once registrations are kept separately and are removed
// before they run. Off removes both kinds.
//
// # Re-entrancy
//
// Fire takes a snapshot of the registrations before invoking any listener.
// Listeners added during a fire, including Once listeners added from inside
// another Once listener, run on the next fire, not the current one.
//
// # Parents
//
// SetEventedParent links a node to a parent. Every fire on the child is
// followed by a fire of a derived event on the parent: the same type, the
// same target (the node Fire was first called on) and the payload overlaid
// with the parent data.
//
//	child.SetEventedParent(parent, evented.StaticData(map[string]any{"layer": "roads"}))
//
//	// Or computed on every fire
//	child.SetEventedParent(parent, func() map[string]any {
//	    return map[string]any{"zoom": view.Zoom()}
//	})
//
// Listens reports listeners on the node or anywhere up its parent chain.
//
// # Panics
//
// By default a panicking listener unwinds out of Fire. Nodes created with
// WithRecover recover each listener separately and report a *ListenerError.
package evented
