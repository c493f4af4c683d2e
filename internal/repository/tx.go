package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// withTx runs fn inside a single transaction: rollback on any error, commit
// on success. Every write operation in this package goes through it so a
// connection is held for exactly the duration of one operation and is
// released on every exit path.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
