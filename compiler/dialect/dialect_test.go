package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

func TestForUnknownDialect(t *testing.T) {
	_, err := dialect.For("mysql")
	require.Error(t, err)
}

func TestSQLiteSetOperationStrategy(t *testing.T) {
	a, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLiteCompound, a.SetOperationStrategy())
	assert.Equal(t, "?", a.Placeholder(1))
	assert.Equal(t, "?", a.Placeholder(2))
}

func TestPostgresSetOperationStrategy(t *testing.T) {
	a, err := dialect.For(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, dialect.StandardParenthesized, a.SetOperationStrategy())
	assert.Equal(t, "$1", a.Placeholder(1))
	assert.Equal(t, "$2", a.Placeholder(2))
}

func TestJSONExtractTextDiffersByDialect(t *testing.T) {
	sqlite, _ := dialect.For(dialect.SQLite)
	pg, _ := dialect.For(dialect.Postgres)

	assert.Contains(t, sqlite.JSONExtractText("props", "/name"), "json_extract(props, '$.name')")
	assert.Contains(t, pg.JSONExtractText("props", "/name"), "props #>> '{name}'")
}

func TestJSONExtractTextArrayIndex(t *testing.T) {
	sqlite, _ := dialect.For(dialect.SQLite)
	assert.Contains(t, sqlite.JSONExtractText("props", "/items/2"), "$.items[2]")
}

func TestRecursiveCycleGuardDialectSpecific(t *testing.T) {
	sqlite, _ := dialect.For(dialect.SQLite)
	pg, _ := dialect.For(dialect.Postgres)

	assert.Contains(t, sqlite.RecursiveCycleGuard("id", "path"), "INSTR(path, id) = 0")
	assert.Contains(t, pg.RecursiveCycleGuard("id", "path"), "id != ALL(path)")
}

func TestCaseInsensitiveComparisonDialectSpecific(t *testing.T) {
	sqlite, _ := dialect.For(dialect.SQLite)
	pg, _ := dialect.For(dialect.Postgres)

	assert.Contains(t, sqlite.ILike("name", "?"), "LOWER(name) LIKE LOWER(?)")
	assert.Contains(t, pg.ILike("name", "$1"), "name ILIKE $1")
}

func TestVectorDistanceMetrics(t *testing.T) {
	pg, _ := dialect.For(dialect.Postgres)
	assert.Contains(t, pg.VectorDistance("embedding", "$1", dialect.MetricCosine), "<=>")
	assert.Contains(t, pg.VectorDistance("embedding", "$1", dialect.MetricL2), "<->")

	sqlite, _ := dialect.For(dialect.SQLite)
	assert.Contains(t, sqlite.VectorDistance("embedding", "?", dialect.MetricCosine), "vec_distance_cosine")
}
