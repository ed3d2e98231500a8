package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

func TestCompileSimpleQuery(t *testing.T) {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)

	q := &ast.Query{
		GraphID:    "g1",
		StartAlias: "o",
		StartKind:  "Organization",
		Predicates: &ast.Comparison{
			TargetAlias: "o", Field: ast.FieldRef{Alias: "o", Column: "status", ValueType: ast.ValueString},
			Op: ast.OpEQ, Value: "active",
		},
		Projection: []ast.ProjectionField{{Alias: "id", Field: ast.FieldRef{Alias: "o", Column: "id"}}},
	}

	result, err := compiler.Compile(q, d)
	require.NoError(t, err)
	assert.Contains(t, result.SQL, `FROM nodes AS "o"`)
	assert.Equal(t, []any{"Organization", "g1", "active"}, result.Args)
}

func TestCompileRejectsNilQuery(t *testing.T) {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)

	_, err = compiler.Compile(nil, d)
	require.Error(t, err)
}

func TestCompileExistsSubqueryRoutesThroughItself(t *testing.T) {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)

	inner := &ast.Query{StartAlias: "e", StartKind: "employs"}
	outer := &ast.Query{
		GraphID:    "g1",
		StartAlias: "o",
		StartKind:  "Organization",
		Predicates: &ast.SubqueryPredicate{Kind: ast.SubqueryExists, Subquery: inner},
	}

	result, err := compiler.Compile(outer, d)
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "EXISTS")
	assert.Contains(t, result.SQL, `FROM nodes AS "e"`)
}
