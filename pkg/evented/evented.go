package evented

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// Listener is a registered callback. Registration and removal match
// listeners by pointer identity, so keep the *Listener to call Off later.
type Listener struct {
	fn func(Data)
}

// NewListener wraps fn as a Listener.
func NewListener(fn func(Data)) *Listener {
	return &Listener{fn: fn}
}

// ParentData produces extra payload fields merged into events forwarded
// to a parent. It is called once per fire.
type ParentData func() map[string]any

// StaticData returns a ParentData that always yields the fields of m as
// they were when StaticData was called.
func StaticData(m map[string]any) ParentData {
	fixed := maps.Clone(m)
	return func() map[string]any {
		return fixed
	}
}

// entry is one registration of a listener under a type.
type entry struct {
	listener *Listener
	once     bool
}

// Evented is a registry of listeners keyed by event type, optionally
// linked to a parent node that receives every event fired here.
//
// Delivery is synchronous on the goroutine calling Fire. The registry lock
// is never held while a listener runs, so listeners may call On, Once, Off,
// Fire and SetEventedParent on any node.
type Evented struct {
	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	onPanic func(*ListenerError)

	mu         sync.Mutex
	listeners  map[string][]*entry
	parent     *Evented
	parentData ParentData
}

// New creates an empty node with no listeners and no parent.
func New(opts ...Option) *Evented {
	cfg := defaultNodeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = fmt.Sprintf("evented-%s", uuid.New().String()[:8])
	}

	return &Evented{
		name:      cfg.name,
		logger:    observability.EnrichLogger(cfg.logger, cfg.name),
		metrics:   cfg.metrics,
		spans:     cfg.spans,
		onPanic:   cfg.onPanic,
		listeners: make(map[string][]*entry),
	}
}

// Name returns the node name used in logs, metrics and spans.
func (e *Evented) Name() string {
	return e.name
}

// On registers l for typ. Registering the same listener twice is a no-op.
func (e *Evented) On(typ string, l *Listener) *Evented {
	if l == nil {
		return e
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	exists := slices.ContainsFunc(e.listeners[typ], func(en *entry) bool {
		return en.listener == l && !en.once
	})
	if !exists {
		e.listeners[typ] = append(e.listeners[typ], &entry{listener: l})
	}
	return e
}

// Once registers l for typ to be invoked at most once. It is removed from
// the registry before it is invoked.
func (e *Evented) Once(typ string, l *Listener) *Evented {
	if l == nil {
		return e
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners[typ] = append(e.listeners[typ], &entry{listener: l, once: true})
	return e
}

// Off removes every registration of l for typ, one-shot or not.
func (e *Evented) Off(typ string, l *Listener) *Evented {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, ok := e.listeners[typ]
	if !ok {
		return e
	}
	list = slices.DeleteFunc(list, func(en *entry) bool {
		return en.listener == l
	})
	if len(list) == 0 {
		delete(e.listeners, typ)
	} else {
		e.listeners[typ] = list
	}
	return e
}

// Listens reports whether typ has a listener on this node or on any
// node up the parent chain.
func (e *Evented) Listens(typ string) bool {
	e.mu.Lock()
	local := len(e.listeners[typ]) > 0
	parent := e.parent
	e.mu.Unlock()

	if local {
		return true
	}
	return parent != nil && parent.Listens(typ)
}

// ListenerCount returns the number of local registrations for typ.
func (e *Evented) ListenerCount(typ string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[typ])
}

// Types returns the event types with at least one local registration,
// sorted.
func (e *Evented) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	types := make([]string, 0, len(e.listeners))
	for typ := range e.listeners {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

// SetEventedParent links the node to parent, replacing any previous link
// and its data. A nil parent clears both. data may be nil.
func (e *Evented) SetEventedParent(parent *Evented, data ParentData) *Evented {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.parent = parent
	if parent == nil {
		e.parentData = nil
	} else {
		e.parentData = data
	}
	return e
}

// Parent returns the current parent, or nil.
func (e *Evented) Parent() *Evented {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent
}

// Fire dispatches ev to the listeners for its type and then to the parent
// chain. The caller's event is not modified.
func (e *Evented) Fire(ev *Event) *Evented {
	return e.FireContext(context.Background(), ev)
}

// FireType is shorthand for Fire(NewEvent(typ, payload)).
func (e *Evented) FireType(typ string, payload map[string]any) *Evented {
	return e.FireContext(context.Background(), NewEvent(typ, payload))
}

// FireContext is Fire with a context that listeners can read through
// Data.Context and that parents trace spans.
func (e *Evented) FireContext(ctx context.Context, ev *Event) *Evented {
	if ev == nil {
		return e
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.dispatch(ctx, ev.withTarget(e))
	return e
}

// dispatch delivers an event whose target is already bound. Parents
// receive it through dispatch too, so the target never changes.
func (e *Evented) dispatch(ctx context.Context, ev *Event) {
	ctx, span := e.spans.StartFireSpan(ctx, e.name, ev.typ)
	defer e.spans.EndSpanWithError(span, nil)

	e.mu.Lock()
	snapshot := slices.Clone(e.listeners[ev.typ])
	e.mu.Unlock()

	done := observability.TimedOperation()
	data := Data{ctx: ctx, event: ev}
	invoked := 0
	for _, en := range snapshot {
		if en.once && !e.consume(ev.typ, en) {
			continue
		}
		e.invoke(en.listener, data)
		invoked++
	}
	e.metrics.RecordFire(ctx, e.name, ev.typ, invoked, done())
	observability.LogFire(e.logger, ev.typ, invoked)

	e.mu.Lock()
	parent, parentData := e.parent, e.parentData
	e.mu.Unlock()
	if parent == nil {
		return
	}

	var extra map[string]any
	if parentData != nil {
		extra = parentData()
	}
	e.metrics.RecordPropagation(ctx, e.name, ev.typ)
	observability.LogPropagate(e.logger, ev.typ, parent.name)
	parent.dispatch(ctx, ev.derive(extra))
}

// consume removes a one-shot entry from the live registry. It returns false
// if the entry was already gone, either consumed by a re-entrant fire or
// removed with Off.
func (e *Evented) consume(typ string, target *entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.listeners[typ]
	i := slices.Index(list, target)
	if i < 0 {
		return false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(e.listeners, typ)
	} else {
		e.listeners[typ] = list
	}
	return true
}

func (e *Evented) invoke(l *Listener, data Data) {
	if e.onPanic == nil {
		l.fn(data)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			err := &ListenerError{Node: e.name, Type: data.Type(), Value: r}
			e.metrics.RecordListenerPanic(data.Context(), e.name, data.Type())
			e.spans.AddSpanEvent(data.Context(), "listener.panic")
			observability.LogListenerPanic(e.logger, data.Type(), err)
			e.onPanic(err)
		}
	}()
	l.fn(data)
}
