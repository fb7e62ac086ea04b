package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seantiz/vigil/internal/model"

	_ "modernc.org/sqlite"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS actor_events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    actor_id   TEXT NOT NULL,
    actor_name TEXT NOT NULL,
    kind       TEXT NOT NULL,
    detail     TEXT NOT NULL,
    created_at DATETIME NOT NULL
)`

const createEventsActorIndex = `
CREATE INDEX IF NOT EXISTS idx_actor_events_actor_id ON actor_events (actor_id)`

const createCheckpointsTable = `
CREATE TABLE IF NOT EXISTS checkpoints (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    pending    INTEGER NOT NULL,
    tracked    INTEGER NOT NULL,
    created_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each pooled connection to ":memory:" would otherwise be its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range []string{createEventsTable, createEventsActorIndex, createCheckpointsTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertEvent appends a lifecycle event and sets e.ID.
func (s *SQLiteStore) InsertEvent(ctx context.Context, e *model.Event) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO actor_events (actor_id, actor_name, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ActorID, e.ActorName, e.Kind, e.Detail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	e.ID = id
	return nil
}

// ListEvents returns a page of events, newest first, along with the total
// number of events.
func (s *SQLiteStore) ListEvents(ctx context.Context, limit, offset int) ([]*model.Event, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM actor_events").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, actor_id, actor_name, kind, detail, created_at
		FROM actor_events ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListActorEvents returns every event recorded for one actor in insertion
// order.
func (s *SQLiteStore) ListActorEvents(ctx context.Context, actorID string) ([]*model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor_id, actor_name, kind, detail, created_at
		FROM actor_events WHERE actor_id = ? ORDER BY id ASC`, actorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list actor events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e := &model.Event{}
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// SaveCheckpoint records a pending-count checkpoint and sets cp.ID.
func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, cp *model.Checkpoint) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO checkpoints (pending, tracked, created_at) VALUES (?, ?, ?)",
		cp.Pending, cp.Tracked, cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkpoint: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("checkpoint id: %w", err)
	}
	cp.ID = id
	return nil
}

// LatestCheckpoint returns the most recently saved checkpoint, or
// ErrNotFound if none exists.
func (s *SQLiteStore) LatestCheckpoint(ctx context.Context) (*model.Checkpoint, error) {
	cp := &model.Checkpoint{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, pending, tracked, created_at FROM checkpoints ORDER BY id DESC LIMIT 1",
	).Scan(&cp.ID, &cp.Pending, &cp.Tracked, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest checkpoint: %w", err)
	}
	return cp, nil
}
