package backend

import (
	"context"
	"database/sql"

	// Registers the "postgres" database/sql driver, per spec.md §6's
	// PostgreSQL backend. Grounded on the teacher's own dialect.Postgres
	// support in dialect/sql/driver.go, which opens through
	// database/sql.Open with this same driver name.
	_ "github.com/lib/pq"
	// Registers the "sqlite" database/sql driver for the embedded/test
	// backend, the teacher's dialect.SQLite counterpart.
	_ "modernc.org/sqlite"
)

// Open opens a *sql.DB for driverName ("postgres" or "sqlite") and
// source, the same two-argument shape as the teacher's
// dialect/sql.Open wrapper around database/sql.Open.
func Open(driverName, source string) (*sql.DB, error) {
	return sql.Open(driverName, source)
}

// sqlQueryer adapts *sql.DB/*sql.Tx to this package's Queryer
// interface so Execute and Transaction never depend on database/sql
// directly.
type sqlQueryer struct {
	db interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	}
}

func (q sqlQueryer) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q sqlQueryer) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	return q.db.ExecContext(ctx, query, args...)
}

// sqlTxBeginner adapts a *sql.DB into this package's TxBeginner.
type sqlTxBeginner struct {
	sqlQueryer
	db *sql.DB
}

// NewTxBeginner wraps db as a TxBeginner usable with the Transaction
// helper.
func NewTxBeginner(db *sql.DB) TxBeginner {
	return sqlTxBeginner{sqlQueryer: sqlQueryer{db: db}, db: db}
}

func (b sqlTxBeginner) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{sqlQueryer: sqlQueryer{db: tx}, tx: tx}, nil
}

// sqlTx adapts a *sql.Tx into this package's Tx.
type sqlTx struct {
	sqlQueryer
	tx *sql.Tx
}

func (t sqlTx) Commit() error   { return t.tx.Commit() }
func (t sqlTx) Rollback() error { return t.tx.Rollback() }
