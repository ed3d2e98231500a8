package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/backend"
)

func TestExecuteScansEveryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM nodes").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	ids, err := backend.Execute(context.Background(), backend.NewTxBeginner(db), "SELECT id FROM nodes", nil,
		func(r backend.Rows) (string, error) {
			var id string
			if err := r.Scan(&id); err != nil {
				return "", err
			}
			return id, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE nodes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := backend.Transaction(context.Background(), backend.NewTxBeginner(db), func(ctx context.Context, tx backend.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx, "UPDATE nodes SET deleted_at = now()")
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE nodes").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err = backend.Transaction(context.Background(), backend.NewTxBeginner(db), func(ctx context.Context, tx backend.Tx) (int64, error) {
		_, err := tx.ExecContext(ctx, "UPDATE nodes SET deleted_at = now()")
		return 0, err
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
