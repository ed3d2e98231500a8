// Package dialect implements the Dialect Adapter (spec.md §4.G): a
// stateless value object exposing capability flags and SQL-fragment
// factories so the emitters never branch on a dialect name string.
package dialect

import "fmt"

// Name identifies a supported SQL dialect.
type Name string

const (
	SQLite   Name = "sqlite"
	Postgres Name = "postgres"
)

// SetOperationStrategy selects how the set-operation emitter composes
// leaf queries for a dialect. SQLite forbids parenthesized CTEs inside a
// compound SELECT, so it needs the lifted-CTE strategy; PostgreSQL
// supports parenthesized leaves directly.
type SetOperationStrategy string

const (
	StandardParenthesized SetOperationStrategy = "standard_parenthesized"
	SQLiteCompound        SetOperationStrategy = "sqlite_compound"
)

// VectorMetric mirrors ast.VectorMetric to avoid a dialect -> ast import;
// the two enums are kept in lockstep by the compiler package.
type VectorMetric string

const (
	MetricCosine       VectorMetric = "cosine"
	MetricL2           VectorMetric = "l2"
	MetricInnerProduct VectorMetric = "inner_product"
)

// Adapter is the capability+fragment-factory contract every dialect
// implements. It holds no mutable state and is safe to share across
// goroutines and compile calls.
type Adapter interface {
	Name() Name
	SetOperationStrategy() SetOperationStrategy

	// QuoteIdentifier quotes a table/column/alias identifier per the
	// dialect's quoting rules.
	QuoteIdentifier(name string) string

	// Placeholder returns the bind-parameter placeholder for the 1-based
	// position n (SQLite/most drivers use "?"; PostgreSQL uses "$n").
	Placeholder(n int) string

	// JSONExtractText returns a SQL expression extracting pointer from
	// column as text.
	JSONExtractText(column, pointer string) string
	// JSONExtractNumber returns a SQL expression extracting pointer from
	// column as a number.
	JSONExtractNumber(column, pointer string) string
	// JSONExtractBoolean returns a SQL expression extracting pointer from
	// column as a boolean.
	JSONExtractBoolean(column, pointer string) string
	// JSONArrayLength returns a SQL expression for the length of the JSON
	// array at pointer within column.
	JSONArrayLength(column, pointer string) string
	// JSONEach returns a SQL table-valued expression iterating the JSON
	// array or object at pointer within column — used to compile
	// containsAny/containsAll/array membership predicates.
	JSONEach(column, pointer string) string
	// JSONType returns a SQL expression for the JSON type name of the
	// value at pointer within column.
	JSONType(column, pointer string) string

	// VectorDistance returns a SQL expression computing the distance (or
	// similarity, depending on metric) between column and a bound
	// parameter placeholder holding the query embedding.
	VectorDistance(column string, embeddingPlaceholder string, metric VectorMetric) string

	// CurrentTimestamp returns a SQL expression for "now" in UTC.
	CurrentTimestamp() string

	// CaseInsensitiveEquals returns a SQL boolean expression comparing
	// left and right case-insensitively. SQLite wraps both sides in
	// LOWER(); PostgreSQL uses no wrapping here because ILIKE is used
	// directly by StringPredicate compilation instead.
	CaseInsensitiveEquals(left, right string) string

	// ILike returns a SQL boolean expression for a case-insensitive LIKE
	// of column against a bound pattern placeholder.
	ILike(column, patternPlaceholder string) string

	// RecursiveCycleGuard returns the step-clause boolean expression that
	// prevents revisiting an id already in path: SQLite checks a string
	// path with INSTR; PostgreSQL checks an ARRAY path with != ALL.
	RecursiveCycleGuard(idColumn, pathColumn string) string

	// RecursivePathAppend returns the SQL expression appending idColumn to
	// pathColumn for the next recursive step.
	RecursivePathAppend(idColumn, pathColumn string) string

	// RecursivePathInit returns the SQL expression for the base case's
	// initial path value, seeded with idColumn.
	RecursivePathInit(idColumn string) string
}

// For must return an Adapter for name, or an error if name is not a
// supported dialect.
func For(name Name) (Adapter, error) {
	switch name {
	case SQLite:
		return sqliteAdapter{}, nil
	case Postgres:
		return postgresAdapter{}, nil
	default:
		return nil, fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}
