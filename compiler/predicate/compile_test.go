package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/predicate"
)

func sqliteCtx(t *testing.T, prefix predicate.ColumnPrefix) *predicate.Context {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)
	return &predicate.Context{Dialect: d, CTEColumnPrefix: prefix}
}

func postgresCtx(t *testing.T, prefix predicate.ColumnPrefix) *predicate.Context {
	d, err := dialect.For(dialect.Postgres)
	require.NoError(t, err)
	return &predicate.Context{Dialect: d, CTEColumnPrefix: prefix}
}

func TestCompileNilIsAlwaysTrue(t *testing.T) {
	sql, args, err := predicate.Compile(sqliteCtx(t, predicate.Bare()), nil)
	require.NoError(t, err)
	assert.Equal(t, "1=1", sql)
	assert.Empty(t, args)
}

func TestCompileComparisonUndefinedPrefix(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Undefined())
	sql, args, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "status"}, Op: ast.OpEQ, Value: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "cte_o.o_status = ?", sql)
	assert.Equal(t, []any{"active"}, args)
}

func TestCompileComparisonBarePrefix(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "status"}, Op: ast.OpEQ, Value: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "status = ?", sql)
}

func TestCompileComparisonAliasPrefix(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Alias("n"))
	sql, _, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "status"}, Op: ast.OpEQ, Value: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "n.status = ?", sql)
}

func TestCompileComparisonRejectsObjectAndArray(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	_, _, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Pointer: "/meta", ValueType: ast.ValueObject}, Op: ast.OpEQ, Value: "x",
	})
	require.Error(t, err)
}

func TestCompileInEmptyIsAlwaysFalse(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "id"}, Op: ast.OpIn, Values: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "1=0", sql)
	assert.Empty(t, args)
}

func TestCompileNotInEmptyIsAlwaysTrue(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "id"}, Op: ast.OpNotIn, Values: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "1=1", sql)
}

func TestCompileInList(t *testing.T) {
	ctx := postgresCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.Comparison{
		Field: ast.FieldRef{Alias: "o", Column: "id"}, Op: ast.OpIn, Values: []any{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "id IN ($1, $2, $3)", sql)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestCompileContainsAllEmptyIsAlwaysTrue(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.ArrayPredicate{
		Field: ast.FieldRef{Alias: "o", Pointer: "/tags"}, Op: ast.OpContainsAll, Values: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "1=1", sql)
}

func TestCompileContainsAnyEmptyIsAlwaysFalse(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.ArrayPredicate{
		Field: ast.FieldRef{Alias: "o", Pointer: "/tags"}, Op: ast.OpContainsAny, Values: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "1=0", sql)
}

func TestCompileContainsAnyNonEmpty(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.ArrayPredicate{
		Field: ast.FieldRef{Alias: "o", Pointer: "/tags"}, Op: ast.OpContainsAny, Values: []any{"a", "b"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "EXISTS (SELECT 1 FROM json_each(props, '$.tags')")
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestCompileStringContainsEscapesLikeMetacharacters(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.StringPredicate{
		Field: ast.FieldRef{Alias: "o", Column: "name"}, Op: ast.OpContains, Value: "50%_off",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "LIKE")
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func TestCompileILikeSQLiteLowersBothSides(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.StringPredicate{
		Field: ast.FieldRef{Alias: "o", Column: "name"}, Op: ast.OpILike, Value: "ACME",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "LOWER(name) LIKE")
	assert.Equal(t, []any{"acme"}, args)
}

func TestCompileILikePostgresUsesNativeOperator(t *testing.T) {
	ctx := postgresCtx(t, predicate.Bare())
	sql, args, err := predicate.Compile(ctx, &ast.StringPredicate{
		Field: ast.FieldRef{Alias: "o", Column: "name"}, Op: ast.OpILike, Value: "ACME",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "name ILIKE")
	assert.Equal(t, []any{"ACME"}, args)
}

func TestCompileAndOrNot(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.Not{Operand: &ast.And{Operands: []ast.PredicateExpr{
		&ast.NullCheck{Field: ast.FieldRef{Alias: "o", Column: "id"}, Op: ast.OpIsNotNull},
		&ast.Or{Operands: []ast.PredicateExpr{
			&ast.Comparison{Field: ast.FieldRef{Alias: "o", Column: "a"}, Op: ast.OpEQ, Value: 1},
			&ast.Comparison{Field: ast.FieldRef{Alias: "o", Column: "b"}, Op: ast.OpEQ, Value: 2},
		}},
	}}})
	require.NoError(t, err)
	assert.Contains(t, sql, "NOT (")
	assert.Contains(t, sql, " AND ")
	assert.Contains(t, sql, " OR ")
}

func TestCompileVectorSimilarityIsCompilerInvariant(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	_, _, err := predicate.Compile(ctx, &ast.VectorSimilarity{TargetAlias: "o"})
	require.Error(t, err)
}

func TestCompileSubqueryRequiresCompileQuery(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	_, _, err := predicate.Compile(ctx, &ast.SubqueryPredicate{Kind: ast.SubqueryExists, Subquery: &ast.Query{}})
	require.Error(t, err)
}

func TestCompileSubqueryExists(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	ctx.CompileQuery = func(q ast.QueryAst) (string, []any, error) {
		return "SELECT 1 FROM t WHERE t.x = ?", []any{42}, nil
	}
	sql, args, err := predicate.Compile(ctx, &ast.SubqueryPredicate{Kind: ast.SubqueryExists, Subquery: &ast.Query{}})
	require.NoError(t, err)
	assert.Equal(t, "EXISTS (SELECT 1 FROM t WHERE t.x = ?)", sql)
	assert.Equal(t, []any{42}, args)
}

func TestCompileObjectHasKey(t *testing.T) {
	ctx := sqliteCtx(t, predicate.Bare())
	sql, _, err := predicate.Compile(ctx, &ast.ObjectPredicate{
		Field: ast.FieldRef{Alias: "o", Pointer: "/meta"}, Op: ast.OpHasKey, Key: "tag",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "json_type(props, '$.meta.tag')")
}
