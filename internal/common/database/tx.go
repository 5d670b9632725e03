// internal/common/database/tx.go
// Explicit unit-of-work helpers. Services receive a TxRunner instead of
// reaching for ambient transaction state.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner executes a function inside a database transaction. The function's
// error aborts the transaction; all effects commit or none do.
type TxRunner interface {
	// RunSerializable runs fn at SERIALIZABLE isolation. Required wherever a
	// derived aggregate (a summed balance) gates a write in the same unit.
	RunSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	// Run runs fn at the default isolation level.
	Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type sqlTxRunner struct {
	db *sqlx.DB
}

// NewTxRunner wraps a *sqlx.DB as a TxRunner.
func NewTxRunner(db *sqlx.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunSerializable(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (r *sqlTxRunner) Run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.run(ctx, nil, fn)
}

func (r *sqlTxRunner) run(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		// Rollback error is secondary to the original failure.
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
