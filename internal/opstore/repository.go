// Package opstore persists lifecycle operations (start, stop, restart,
// scale, deploy) so an interrupted wait can be resumed with
// `xervo operations --resume`.
//
// Storage is the shared SQLite file opened by package database.
package opstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"onmodulus/xervo/internal/database"
)

// Repository is the persistence interface for operations.
type Repository interface {
	// Save inserts op when op.ID is zero, assigning ID and Ref, and
	// updates it otherwise.
	Save(ctx context.Context, op *Operation) error

	// Get returns the operation with the given id, or nil if none.
	Get(ctx context.Context, id int64) (*Operation, error)

	// ListPending returns pending operations, newest first.
	ListPending(ctx context.Context) ([]Operation, error)

	// ListRecent returns the n most recent operations, newest first.
	ListRecent(ctx context.Context, n int) ([]Operation, error)

	// DeleteOlderThan removes finished operations not updated within d.
	DeleteOlderThan(ctx context.Context, d time.Duration) (int64, error)

	Close() error
}

const schema = `
	CREATE TABLE IF NOT EXISTS operations (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		ref           TEXT    NOT NULL,
		command       TEXT    NOT NULL DEFAULT '',
		kind          TEXT    NOT NULL,
		resource_id   TEXT    NOT NULL,
		resource_name TEXT    NOT NULL DEFAULT '',
		target_status TEXT    NOT NULL DEFAULT '',
		state         TEXT    NOT NULL DEFAULT 'pending',
		last_status   TEXT    NOT NULL DEFAULT '',
		error_message TEXT    NOT NULL DEFAULT '',
		created_at    TEXT    NOT NULL,
		updated_at    TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_operations_state ON operations(state);
`

const selectColumns = `
	SELECT id, ref, command, kind, resource_id, resource_name, target_status,
	       state, last_status, error_message, created_at, updated_at
	FROM operations`

// SQLiteRepository implements Repository.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the repository at database.DefaultPath.
func Open(ctx context.Context) (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(ctx, path)
}

// OpenAt opens the repository in the SQLite file at path.
func OpenAt(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := database.Open(ctx, path, schema)
	if err != nil {
		return nil, fmt.Errorf("operations: %w", err)
	}
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, op *Operation) error {
	op.UpdatedAt = r.now()
	if op.State == "" {
		op.State = StatePending
	}

	if op.ID == 0 {
		if op.CreatedAt.IsZero() {
			op.CreatedAt = op.UpdatedAt
		}
		if op.Ref == "" {
			op.Ref = uuid.NewString()[:8]
		}
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO operations (ref, command, kind, resource_id, resource_name, target_status,
			                        state, last_status, error_message, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			op.Ref, op.Command, op.Kind, op.ResourceID, op.ResourceName, op.TargetStatus,
			op.State, op.LastStatus, op.ErrorMessage, formatTime(op.CreatedAt), formatTime(op.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("operations: insert failed: %w", err)
		}
		if op.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("operations: reading inserted id: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE operations SET command=?, kind=?, resource_id=?, resource_name=?, target_status=?,
		       state=?, last_status=?, error_message=?, updated_at=?
		WHERE id=?`,
		op.Command, op.Kind, op.ResourceID, op.ResourceName, op.TargetStatus,
		op.State, op.LastStatus, op.ErrorMessage, formatTime(op.UpdatedAt), op.ID,
	)
	if err != nil {
		return fmt.Errorf("operations: update failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("operations: operation %d not found", op.ID)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Operation, error) {
	op, err := scan(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("operations: query failed: %w", err)
	}
	return op, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]Operation, error) {
	return r.list(ctx, selectColumns+` WHERE state = ? ORDER BY created_at DESC, id DESC`, StatePending)
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, n int) ([]Operation, error) {
	return r.list(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, n)
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, d time.Duration) (int64, error) {
	cutoff := formatTime(r.now().Add(-d))
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM operations WHERE state != ? AND updated_at < ?`, StatePending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("operations: delete failed: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Operation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("operations: query failed: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("operations: scan failed: %w", err)
		}
		ops = append(ops, *op)
	}
	return ops, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*Operation, error) {
	var op Operation
	var created, updated string
	err := s.Scan(
		&op.ID, &op.Ref, &op.Command, &op.Kind, &op.ResourceID, &op.ResourceName, &op.TargetStatus,
		&op.State, &op.LastStatus, &op.ErrorMessage, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	op.CreatedAt, _ = time.Parse(timeLayout, created)
	op.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &op, nil
}

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
