package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("should commit when the operation succeeds", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE channels").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := WithTransaction(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE channels SET name = 'x'")
			return err
		})

		req.NoError(err)
	})

	t.Run("should roll back and return the operation error", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMockDB(t)
		failed := errors.New("constraint violated")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := WithTransaction(ctx, db, func(*sql.Tx) error { return failed })

		req.ErrorIs(err, failed)
	})

	t.Run("should roll back before re-raising a panic", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		req.PanicsWithValue("boom", func() {
			_ = WithTransaction(ctx, db, func(*sql.Tx) error { panic("boom") })
		})
	})

	t.Run("should report a failed commit", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := WithTransaction(ctx, db, func(*sql.Tx) error { return nil })

		req.ErrorContains(err, "serialization failure")
	})

	t.Run("should fail when no transaction can be started", func(t *testing.T) {
		req := require.New(t)
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err := WithTransaction(ctx, db, func(*sql.Tx) error {
			called = true
			return nil
		})

		req.ErrorContains(err, "failed to start transaction")
		req.False(called)
	})
}
