package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// TxBeginner is satisfied by *sql.DB and *sql.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TimeOperation executes an operation and logs its execution time
func TimeOperation(ctx context.Context, log *slog.Logger, name string, operation func() error) error {
	start := time.Now()
	err := operation()
	log.Log(ctx, slog.LevelDebug, fmt.Sprintf("Operation %s took %s", name, time.Since(start)))
	return err
}

// WithTransaction runs operation inside a read-committed transaction on db.
// The transaction is rolled back when operation returns an error or panics.
func WithTransaction(ctx context.Context, db TxBeginner, operation func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Log(ctx, slog.LevelError, "Error while rolling back transaction", "error", rbErr)
			}
		} else {
			err = tx.Commit()
		}
	}()

	err = operation(tx)
	return err
}
