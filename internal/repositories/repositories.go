// package repositories provides persistence layer implementations for the resolution cache.
//
// Each repository handles one aggregate (artists with their accepted names, tracks with their two artist slots).
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// queryer is satisfied by both [sql.DB] and [sql.Tx], so helpers can run inside or outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
//
// fn must only use tx: an in-memory database has a single connection and would deadlock.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
