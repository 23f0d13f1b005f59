// Package journal records events fired on evented nodes into a store.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists event records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record and assigns its Sequence, which counts up from
	// 1 per node.
	Append(rec *Record) error

	// List returns all records for a node, ordered by sequence.
	// Returns empty slice (not error) if the node has no records.
	List(node string) ([]*Record, error)

	// ListByType returns the records for a node with the given event type,
	// ordered by sequence.
	ListByType(node, eventType string) ([]*Record, error)

	// Count returns the number of records for a node.
	Count(node string) (int, error)

	// DeleteNode removes all records for a node.
	// Returns nil if the node has no records.
	DeleteNode(node string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one event as seen by one node.
type Record struct {
	ID        string
	Node      string // Node the event was dispatched on
	Target    string // Node the event was originally fired on
	Type      string
	Sequence  int
	Fields    []byte // JSON-encoded payload fields
	Timestamp time.Time
}

// NewRecord builds a record with a fresh ID and the fields JSON-encoded.
func NewRecord(node, target, eventType string, fields map[string]any) (*Record, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return &Record{
		ID:        uuid.New().String(),
		Node:      node,
		Target:    target,
		Type:      eventType,
		Fields:    data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode returns the record's payload fields.
func (r *Record) Decode() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.Fields, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")

	// ErrInvalidRecord indicates a record without a node or type.
	ErrInvalidRecord = errors.New("journal record requires node and type")
)

// prepare checks a record before it is stored. Records without fields
// are stored with an empty JSON object.
func prepare(rec *Record) error {
	if rec == nil || rec.Node == "" || rec.Type == "" {
		return ErrInvalidRecord
	}
	if rec.Fields == nil {
		rec.Fields = []byte("{}")
	}
	return nil
}
