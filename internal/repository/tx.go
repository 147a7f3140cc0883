package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/webshop/internal/database"
)

// withTx runs fn inside a transaction.  fn reports the step that failed
// alongside its error.  On any failure the transaction is rolled back before
// the *TxFailedError is returned; a rollback error is attached, never
// substituted for the original.
func withTx(ctx context.Context, db database.Handle, fn func(tx *sql.Tx) (string, error)) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &TxFailedError{Op: "begin", Err: err}
	}
	if op, err := fn(tx); err != nil {
		return &TxFailedError{Op: op, Err: err, RollbackErr: rollback(tx)}
	}
	if err := tx.Commit(); err != nil {
		return &TxFailedError{Op: "commit", Err: err, RollbackErr: rollback(tx)}
	}
	return nil
}

// rollback ignores sql.ErrTxDone, which only means the driver already ended
// the transaction.
func rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}
