package journal

import (
	"slices"
	"sync"
)

// MemoryStore is an in-memory journal store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	byNode map[string][]*Record
	closed bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byNode: make(map[string][]*Record),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	rec.Sequence = len(m.byNode[rec.Node]) + 1
	m.byNode[rec.Node] = append(m.byNode[rec.Node], clone(rec))
	return nil
}

// List implements Store.
func (m *MemoryStore) List(node string) ([]*Record, error) {
	return m.filter(node, func(*Record) bool { return true })
}

// ListByType implements Store.
func (m *MemoryStore) ListByType(node, eventType string) ([]*Record, error) {
	return m.filter(node, func(r *Record) bool { return r.Type == eventType })
}

func (m *MemoryStore) filter(node string, keep func(*Record) bool) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	records := make([]*Record, 0, len(m.byNode[node]))
	for _, r := range m.byNode[node] {
		if keep(r) {
			records = append(records, clone(r))
		}
	}
	return records, nil
}

// Count implements Store.
func (m *MemoryStore) Count(node string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.byNode[node]), nil
}

// DeleteNode implements Store.
func (m *MemoryStore) DeleteNode(node string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.byNode, node)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.byNode = nil
	return nil
}

// Len returns the total number of records across all nodes.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, records := range m.byNode {
		count += len(records)
	}
	return count
}

// clone copies a record so callers cannot modify stored data.
func clone(r *Record) *Record {
	c := *r
	c.Fields = slices.Clone(r.Fields)
	return &c
}
