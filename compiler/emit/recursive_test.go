package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

func TestEmitRecursiveSQLiteUsesInstrCycleGuard(t *testing.T) {
	d, alloc, temporal := newEmitCtx(t, dialect.SQLite)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Traversals: []ast.Traversal{
			{
				EdgeKind: "reportsTo", EdgeAlias: "r", NodeKind: "Person", NodeAlias: "m",
				VariableLength: &ast.VariableLength{MinDepth: 1, MaxDepth: 5},
			},
		},
		Projection: []ast.ProjectionField{{Alias: "id", Field: ast.FieldRef{Alias: "m", Column: "id"}}},
	}

	result := lowerAndEmit(t, d, alloc, temporal, q)
	assert.Contains(t, result.SQL, "WITH RECURSIVE recursive_cte AS")
	assert.Contains(t, result.SQL, "UNION ALL")
	assert.Contains(t, result.SQL, "INSTR(recursive_cte.path, n.id) = 0")
	assert.Contains(t, result.SQL, "depth >= ?")
	assert.Contains(t, result.SQL, "depth <= ?")
	assert.Contains(t, result.SQL, "recursive_cte.depth < ?")
}

func TestEmitRecursivePostgresUsesArrayCycleGuard(t *testing.T) {
	d, alloc, temporal := newEmitCtx(t, dialect.Postgres)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Traversals: []ast.Traversal{
			{
				EdgeKind: "reportsTo", EdgeAlias: "r", NodeKind: "Person", NodeAlias: "m",
				VariableLength: &ast.VariableLength{MaxDepth: 3},
			},
		},
	}

	result := lowerAndEmit(t, d, alloc, temporal, q)
	assert.Contains(t, result.SQL, "n.id != ALL(recursive_cte.path)")
	assert.Contains(t, result.SQL, "ARRAY[")
}

func TestEmitRecursiveUnboundedOmitsMaxDepthGuard(t *testing.T) {
	d, alloc, temporal := newEmitCtx(t, dialect.SQLite)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Traversals: []ast.Traversal{
			{EdgeKind: "reportsTo", EdgeAlias: "r", NodeKind: "Person", NodeAlias: "m", VariableLength: &ast.VariableLength{}},
		},
	}

	result := lowerAndEmit(t, d, alloc, temporal, q)
	assert.NotContains(t, result.SQL, "recursive_cte.depth <")
	require.NotContains(t, result.SQL, "depth <= ?")
}
