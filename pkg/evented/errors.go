package evented

import "fmt"

// ListenerError describes a listener panic recovered by a node created
// with WithRecover.
type ListenerError struct {
	Node  string // Name of the dispatching node
	Type  string // Event type being dispatched
	Value any    // Value passed to panic
}

// Error implements error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("evented %s: listener for %q panicked: %v", e.Node, e.Type, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
