package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists event records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS event_records (
			id TEXT PRIMARY KEY,
			node TEXT NOT NULL,
			target TEXT NOT NULL,
			type TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			fields BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_event_records_node_sequence
		ON event_records(node, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Sequence is max + 1 for this node
	err := s.db.QueryRow(`
		INSERT INTO event_records (id, node, target, type, sequence, timestamp, fields)
		VALUES (?, ?, ?, ?,
			COALESCE((SELECT MAX(sequence) FROM event_records WHERE node = ?), 0) + 1,
			?, ?)
		RETURNING sequence
	`, rec.ID, rec.Node, rec.Target, rec.Type, rec.Node,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Fields).Scan(&rec.Sequence)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(node string) ([]*Record, error) {
	return s.query(`
		SELECT id, node, target, type, sequence, timestamp, fields
		FROM event_records
		WHERE node = ?
		ORDER BY sequence
	`, node)
}

// ListByType implements Store.
func (s *SQLiteStore) ListByType(node, eventType string) ([]*Record, error) {
	return s.query(`
		SELECT id, node, target, type, sequence, timestamp, fields
		FROM event_records
		WHERE node = ? AND type = ?
		ORDER BY sequence
	`, node, eventType)
}

func (s *SQLiteStore) query(q string, args ...any) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		var rec Record
		var timestamp string
		if err := rows.Scan(&rec.ID, &rec.Node, &rec.Target, &rec.Type, &rec.Sequence, &timestamp, &rec.Fields); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(node string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM event_records WHERE node = ?`, node).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// DeleteNode implements Store.
func (s *SQLiteStore) DeleteNode(node string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM event_records WHERE node = ?`, node); err != nil {
		return fmt.Errorf("delete node records: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
