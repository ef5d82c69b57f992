package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/command-gateway/models"
	"github.com/upb/command-gateway/repositories"
	"go.uber.org/zap"
)

func TestInTransaction_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
		called = true

		// The unit's transaction travels in the context.
		fromCtx, ok := GetTransactionFromContext(txCtx)
		assert.True(t, ok)
		assert.Same(t, tx, fromCtx)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTransaction_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	unitErr := errors.New("unit failed")
	err := tm.InTransaction(context.Background(), func(txCtx context.Context, tx repositories.Transaction) error {
		return unitErr
	})

	assert.ErrorIs(t, err, unitErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTransaction_RepositoriesUseTheTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())
	accounts := NewAccountRepository(db, zap.NewNop())
	audit := NewAuditRepository(db, zap.NewNop())

	accountID := uuid.New()
	entry := models.NewAuditLog(accountID, "ls", models.ActionAutoAccept, models.StatusExecuted)

	// Both statements run between Begin and Commit on the same tx.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND credits >= $2")).
		WithArgs(accountID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(99))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnRows(sqlmock.NewRows([]string{"timestamp"}).AddRow(entry.Timestamp))
	mock.ExpectCommit()

	err := tm.InTransaction(context.Background(), func(txCtx context.Context, _ repositories.Transaction) error {
		balance, err := accounts.Debit(txCtx, accountID, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, 99, balance)
		return audit.Insert(txCtx, entry)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTransaction_RollbackDiscardsEarlierStatements(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())
	accounts := NewAccountRepository(db, zap.NewNop())

	accountID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND credits >= $2")).
		WithArgs(accountID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"credits"}).AddRow(99))
	mock.ExpectRollback()

	insertErr := errors.New("audit insert failed")
	err := tm.InTransaction(context.Background(), func(txCtx context.Context, _ repositories.Transaction) error {
		if _, err := accounts.Debit(txCtx, accountID, 1); err != nil {
			return err
		}
		return insertErr
	})

	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollbackAfterCommitIsSilent(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// sql.ErrTxDone is swallowed so deferred rollbacks are safe.
	assert.NoError(t, tx.Rollback())
}

func TestGetExecutor_FallsBackToPool(t *testing.T) {
	db, _ := newMockDB(t)

	executor := GetExecutor(context.Background(), db)

	assert.Same(t, db.DB, executor)
}
