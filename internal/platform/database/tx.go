package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultTxTimeout bounds a transaction whose caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// RunInTx runs fn in a transaction and commits when it returns nil. Without a
// deadline on ctx the transaction is bounded by timeout (DefaultTxTimeout when
// zero) so a stuck row lock cannot pin a connection forever.
func RunInTx(ctx context.Context, db *sql.DB, timeout time.Duration, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
