package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Transact runs fn inside a single database transaction. Any error from fn
// rolls everything back, so a pipeline that fails partway through persists
// nothing. The transaction is begun with ctx: cancellation before commit
// also leaves no partial state.
func Transact(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
