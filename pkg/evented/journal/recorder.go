package journal

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/evented/pkg/evented"
	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// Recorder appends every event of the attached types to a Store.
// Append failures are logged and counted; they never reach the code
// that fired the event.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics observability.MetricsRecorder

	mu        sync.Mutex
	listeners map[*evented.Evented]*evented.Listener

	errors atomic.Int64
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for append failures.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithRecorderMetrics sets the metrics recorder for appends.
func WithRecorderMetrics(m observability.MetricsRecorder) RecorderOption {
	return func(r *Recorder) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:     store,
		metrics:   observability.NoopMetrics{},
		listeners: make(map[*evented.Evented]*evented.Listener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach records events of the given types dispatched on node, including
// events forwarded to node from its children. Attaching a type twice
// records it once.
func (r *Recorder) Attach(node *evented.Evented, types ...string) {
	l := r.listenerFor(node)
	for _, typ := range types {
		node.On(typ, l)
	}
}

// Detach stops recording the given types on node.
func (r *Recorder) Detach(node *evented.Evented, types ...string) {
	r.mu.Lock()
	l, ok := r.listeners[node]
	r.mu.Unlock()
	if !ok {
		return
	}
	for _, typ := range types {
		node.Off(typ, l)
	}
}

// Errors returns the number of failed appends.
func (r *Recorder) Errors() int64 {
	return r.errors.Load()
}

func (r *Recorder) listenerFor(node *evented.Evented) *evented.Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.listeners[node]; ok {
		return l
	}
	name := node.Name()
	l := evented.NewListener(func(d evented.Data) {
		r.record(name, d)
	})
	r.listeners[node] = l
	return l
}

func (r *Recorder) record(node string, d evented.Data) {
	target := ""
	if t := d.Target(); t != nil {
		target = t.Name()
	}

	rec, err := NewRecord(node, target, d.Type(), d.Fields())
	if err == nil {
		err = r.store.Append(rec)
	}
	if err != nil {
		r.errors.Add(1)
		r.metrics.RecordJournalAppend(d.Context(), node, 0, err)
		observability.LogJournalError(r.logger, node, d.Type(), err)
		return
	}
	r.metrics.RecordJournalAppend(d.Context(), node, int64(len(rec.Fields)), nil)
}
