// Package backend declares the storage contract spec.md §6 describes
// as an external collaborator: the compiled-SQL query pipeline and the
// Schema Manager depend only on these interfaces, never on a concrete
// driver. Grounded on the teacher's own `dialect.Driver`/`dialect.Tx`
// split in `dialect/sql/driver.go` — a thin interface in front of
// `database/sql`, generalized here from ent's generated per-entity
// CRUD methods to this module's single node/edge row shape.
//
// No implementation lives in this package: wiring a concrete
// PostgreSQL or SQLite backend means implementing NodeStore, EdgeStore,
// and schema.VersionStore over database/sql, registering the
// github.com/lib/pq or modernc.org/sqlite driver as a side effect of
// importing it (see driver.go in this package).
package backend

import (
	"context"
	"time"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/schema"
)

// Filters is an opaque, backend-specific filter description produced
// by the compiled predicate for a FindBy/Count call that a store
// cannot satisfy through the SQL compiler directly (e.g. a
// backend-level soft-delete/tenant scope applied ahead of it).
type Filters map[string]any

// FindOptions carries the pagination and ordering a FindBy call needs
// beyond its filters.
type FindOptions struct {
	Limit  int
	Offset int
	Cursor string
	Sort   []string
}

// NodePatch is a partial update to a node or edge row: a nil field
// means "leave this column unchanged". ValidTo and DeletedAt are
// themselves pointers in NodeRow, so **time.Time lets a patch also
// express "clear this column" (a non-nil outer pointer wrapping a nil
// inner one) distinctly from "leave unchanged" (nil outer pointer).
type NodePatch struct {
	Props     []byte
	ValidTo   **time.Time
	DeletedAt **time.Time
}

// NodeInsertParams is the payload insert/insertBatch accepts for a new
// node row.
type NodeInsertParams struct {
	GraphID string
	ID      string
	Kind    string
	Props   []byte
}

// EdgeInsertParams is the payload insert/insertBatch accepts for a new
// edge row.
type EdgeInsertParams struct {
	NodeInsertParams
	FromID   string
	FromKind string
	ToID     string
	ToKind   string
}

// NodeStore is the node half of spec.md §6's backend contract:
// `insert`, `insertNoReturn`, `insertBatch`, `getById`, `getByIds`
// (optional; DefaultGetByIDs below is the N-getById fallback),
// `update`, `softDelete`, `findBy`, `count`.
type NodeStore interface {
	Insert(ctx context.Context, params NodeInsertParams) (*typegraph.NodeRow, error)
	InsertNoReturn(ctx context.Context, params NodeInsertParams) error
	InsertBatch(ctx context.Context, params []NodeInsertParams) error
	GetByID(ctx context.Context, graphID, kind, id string) (*typegraph.NodeRow, error)
	GetByIDs(ctx context.Context, graphID, kind string, ids []string) ([]*typegraph.NodeRow, error)
	Update(ctx context.Context, graphID, id string, patch NodePatch) (*typegraph.NodeRow, error)
	SoftDelete(ctx context.Context, graphID, id string) error
	FindBy(ctx context.Context, filters Filters, opts FindOptions) ([]*typegraph.NodeRow, error)
	Count(ctx context.Context, filters Filters) (int64, error)
}

// EdgeStore is the edge half of the same contract, over EdgeRow.
type EdgeStore interface {
	Insert(ctx context.Context, params EdgeInsertParams) (*typegraph.EdgeRow, error)
	InsertNoReturn(ctx context.Context, params EdgeInsertParams) error
	InsertBatch(ctx context.Context, params []EdgeInsertParams) error
	GetByID(ctx context.Context, graphID, kind, id string) (*typegraph.EdgeRow, error)
	GetByIDs(ctx context.Context, graphID, kind string, ids []string) ([]*typegraph.EdgeRow, error)
	Update(ctx context.Context, graphID, id string, patch NodePatch) (*typegraph.EdgeRow, error)
	SoftDelete(ctx context.Context, graphID, id string) error
	FindBy(ctx context.Context, filters Filters, opts FindOptions) ([]*typegraph.EdgeRow, error)
	Count(ctx context.Context, filters Filters) (int64, error)
}

// DefaultGetByIDs is the N-getById fallback spec.md §6 allows a store
// to use when it has no batched lookup of its own.
func DefaultGetByIDs(ctx context.Context, graphID, kind string, ids []string, getByID func(context.Context, string, string, string) (*typegraph.NodeRow, error)) ([]*typegraph.NodeRow, error) {
	out := make([]*typegraph.NodeRow, 0, len(ids))
	for _, id := range ids {
		row, err := getByID(ctx, graphID, kind, id)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Queryer is the minimal subset of *sql.DB / *sql.Tx the Execute and
// Transaction helpers need, so they work identically inside or outside
// an open transaction.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
}

// Rows is the subset of *sql.Rows the Execute helper consumes.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Result is the subset of sql.Result callers of ExecContext need.
type Result interface {
	RowsAffected() (int64, error)
}

// TxBeginner starts a transaction over a Queryer, per spec.md §6's
// `transaction<T>(fn, options) → T`.
type TxBeginner interface {
	Queryer
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is an in-flight transaction: a Queryer that must be committed or
// rolled back.
type Tx interface {
	Queryer
	Commit() error
	Rollback() error
}

// Execute runs query against db and scans every resulting row with
// scan, implementing spec.md §6's `execute<T>(sql) → T[]`. Go methods
// cannot themselves be generic, so this is a free function rather than
// a Queryer method, the same shape the teacher's generated `sqlAll`
// helpers take (one per entity) collapsed here into one generic helper
// since this module has a single row shape per store.
func Execute[T any](ctx context.Context, db Queryer, query string, args []any, scan func(Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Transaction runs fn inside a transaction begun on db, implementing
// spec.md §6's `transaction<T>(fn, options) → T`: fn's return value is
// propagated on commit, and any error from fn or from Commit triggers a
// Rollback.
func Transaction[T any](ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return zero, err
	}

	result, err := fn(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return zero, err
	}
	return result, nil
}

// Backend is the full storage contract of spec.md §6: node and edge
// CRUD plus the schema-versions sub-interface
// (`{getActiveSchema, getSchemaVersion, insertSchemaVersion,
// setActiveSchema}`), defined in package schema as VersionStore so the
// Schema Manager can depend on it without importing this package.
type Backend interface {
	Nodes() NodeStore
	Edges() EdgeStore
	SchemaVersions() schema.VersionStore
}
