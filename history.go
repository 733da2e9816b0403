package airride

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed db/schema.sql
var historySchemaSQL string

// HistoryStore is an append-only audit trail of service lifecycle events,
// backed by the pure-Go sqlite driver (grounded on the teacher's Boxer,
// boxer.go: go:embed schema + sqlDB.Exec(schemaSQL) applied idempotently on
// open, no migration engine). It is optional: Config.HistoryDB empty means
// Record is a no-op and db stays nil, so callers never need a separate
// enabled check.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistoryStore opens (creating if absent) the sqlite file at path and
// applies the embedded schema. An empty path yields a disabled, nil-safe
// store.
func OpenHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		return &HistoryStore{}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(historySchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Record appends one lifecycle event. A disabled store silently discards.
func (h *HistoryStore) Record(service, kind, detail string) {
	if h == nil || h.db == nil {
		return
	}
	_, _ = h.db.Exec(
		`INSERT INTO events (service, kind, detail, occurred_at) VALUES (?, ?, ?, ?)`,
		service, kind, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
}

// HistoryEvent is one row as returned to a `history` control request.
type HistoryEvent struct {
	Service    string
	Kind       string
	Detail     string
	OccurredAt string
}

// Recent returns the last limit events for a service, most recent first.
// An empty service returns events across all services.
func (h *HistoryStore) Recent(service string, limit int) ([]HistoryEvent, error) {
	if h == nil || h.db == nil {
		return nil, nil
	}
	var rows *sql.Rows
	var err error
	if service == "" {
		rows, err = h.db.Query(
			`SELECT service, kind, detail, occurred_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	} else {
		rows, err = h.db.Query(
			`SELECT service, kind, detail, occurred_at FROM events WHERE service = ? ORDER BY id DESC LIMIT ?`,
			service, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []HistoryEvent
	for rows.Next() {
		var e HistoryEvent
		if err := rows.Scan(&e.Service, &e.Kind, &e.Detail, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle, if any.
func (h *HistoryStore) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
