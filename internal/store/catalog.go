package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown shape.
var ErrNotFound = errors.New("statement not found")

// Entry is one catalogued statement shape.
type Entry struct {
	ShapeID    uuid.UUID `json:"shape_id"`
	Model      string    `json:"model"`
	Kind       string    `json:"kind"`
	Keyspace   string    `json:"keyspace"`
	Table      string    `json:"table"`
	Query      string    `json:"query"`
	Params     int       `json:"params"`
	Idempotent bool      `json:"idempotent"`
	IsCounter  bool      `json:"is_counter"`
}

const upsertEntry = `
	INSERT INTO statements
	(shape_id, model, kind, keyspace, tbl, query, params, idempotent, is_counter)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(shape_id) DO UPDATE SET
		model = excluded.model,
		kind = excluded.kind,
		keyspace = excluded.keyspace,
		tbl = excluded.tbl,
		query = excluded.query,
		params = excluded.params,
		idempotent = excluded.idempotent,
		is_counter = excluded.is_counter
`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Put inserts or replaces the entry for e.ShapeID.
func (s *Store) Put(ctx context.Context, e Entry) error {
	if err := putEntry(ctx, s.db, e); err != nil {
		return fmt.Errorf("put statement: %w", err)
	}
	return nil
}

// PutAll stores entries in one transaction.
func (s *Store) PutAll(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := putEntry(ctx, tx, e); err != nil {
			return fmt.Errorf("put statement %s: %w", e.ShapeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func putEntry(ctx context.Context, db execer, e Entry) error {
	_, err := db.ExecContext(ctx, upsertEntry,
		e.ShapeID.String(),
		e.Model,
		e.Kind,
		e.Keyspace,
		e.Table,
		e.Query,
		e.Params,
		e.Idempotent,
		e.IsCounter,
	)
	return err
}

const selectEntry = `
	SELECT shape_id, model, kind, keyspace, tbl, query, params, idempotent, is_counter
	FROM statements
`

// Get returns the entry for shapeID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, shapeID uuid.UUID) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+"WHERE shape_id = ?", shapeID.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get statement %s: %w", shapeID, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get statement %s: %w", shapeID, err)
	}
	return e, nil
}

// List returns all entries ordered by keyspace, table, kind, then query.
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+`
		ORDER BY keyspace COLLATE BINARY ASC, tbl COLLATE BINARY ASC,
		         kind COLLATE BINARY ASC, query COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		shapeID string
	)
	err := row.Scan(&shapeID, &e.Model, &e.Kind, &e.Keyspace, &e.Table, &e.Query, &e.Params, &e.Idempotent, &e.IsCounter)
	if err != nil {
		return Entry{}, err
	}
	e.ShapeID, err = uuid.Parse(shapeID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse shape id %q: %w", shapeID, err)
	}
	return e, nil
}
