package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/lower"
	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
	"github.com/nicia-ai/typegraph-sub002/compiler/plan"
)

func newLowerCtx(t *testing.T) (dialect.Adapter, *plan.IDAllocator, *passes.TemporalMemo) {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)
	return d, &plan.IDAllocator{}, passes.NewTemporalMemo(d)
}

func TestLowerSimpleQueryProducesScanFilterProject(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		GraphID:    "g1",
		StartAlias: "o",
		StartKind:  "Organization",
		Projection: []ast.ProjectionField{{Alias: "id", Field: ast.FieldRef{Alias: "o", Column: "id"}}},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)

	proj, ok := node.(*plan.Project)
	require.True(t, ok)
	filter, ok := proj.Input.(*plan.Filter)
	require.True(t, ok)
	_, ok = filter.Input.(*plan.Scan)
	require.True(t, ok)
}

func TestLowerTraversalProducesJoinChain(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "o",
		StartKind:  "Organization",
		Traversals: []ast.Traversal{
			{EdgeKind: "employs", EdgeAlias: "e", NodeKind: "Person", NodeAlias: "p"},
		},
		Projection: []ast.ProjectionField{{Alias: "id", Field: ast.FieldRef{Alias: "p", Column: "id"}}},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)

	proj := node.(*plan.Project)
	assert.Equal(t, "p", proj.CollapsedTraversalAlias)
	join, ok := proj.Input.(*plan.Join)
	require.True(t, ok)
	assert.Equal(t, plan.InnerJoin, join.Kind)
}

func TestLowerOptionalTraversalIsLeftJoin(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "o",
		StartKind:  "Organization",
		Traversals: []ast.Traversal{
			{EdgeKind: "employs", EdgeAlias: "e", NodeKind: "Person", NodeAlias: "p", Optional: true},
		},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)
	proj := node.(*plan.Project)
	join := proj.Input.(*plan.Join)
	assert.Equal(t, plan.LeftJoin, join.Kind)
}

func TestLowerVariableLengthProducesRecursiveExpand(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Traversals: []ast.Traversal{
			{
				EdgeKind: "reportsTo", EdgeAlias: "r", NodeKind: "Person", NodeAlias: "m",
				VariableLength: &ast.VariableLength{MinDepth: 1, MaxDepth: 5, CollectPath: true, PathAlias: "path", DepthAlias: "depth"},
			},
		},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)
	proj := node.(*plan.Project)
	rec, ok := proj.Input.(*plan.RecursiveExpand)
	require.True(t, ok)
	assert.Equal(t, 5, rec.MaxDepth)
	assert.Equal(t, "path", rec.PathAlias)
}

func TestLowerVectorSimilarityProducesVectorKnnAndEffectiveLimit(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Predicates: &ast.VectorSimilarity{
			TargetAlias: "p", TargetType: ast.TargetNode, FieldPath: "/embedding",
			QueryEmbedding: []float32{0.1, 0.2}, Metric: ast.MetricCosine, K: 5,
		},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)
	proj := node.(*plan.Project)
	limitOffset, ok := proj.Input.(*plan.LimitOffset)
	require.True(t, ok)
	require.NotNil(t, limitOffset.Limit)
	assert.Equal(t, 5, *limitOffset.Limit)
	_, ok = limitOffset.Input.(*plan.VectorKnn)
	require.True(t, ok)
}

func TestLowerVectorSimilarityUnderOrFails(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "p",
		StartKind:  "Person",
		Predicates: &ast.Or{Operands: []ast.PredicateExpr{
			&ast.VectorSimilarity{TargetAlias: "p", FieldPath: "/embedding"},
			&ast.NullCheck{TargetAlias: "p", Field: ast.FieldRef{Alias: "p", Column: "id"}, Op: ast.OpIsNotNull},
		}},
	}

	_, err := lower.Lower(q, d, alloc, temporal)
	require.Error(t, err)
}

func TestLowerAggregationProducesAggregateNode(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	q := &ast.Query{
		StartAlias: "o",
		StartKind:  "Organization",
		GroupBy:    []ast.FieldRef{{Alias: "o", Column: "status"}},
		Projection: []ast.ProjectionField{
			{Alias: "n", Field: ast.FieldRef{Alias: "o", Column: "id"}, Aggregate: ast.AggregateCount},
		},
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)
	proj := node.(*plan.Project)
	_, ok := proj.Input.(*plan.Aggregate)
	require.True(t, ok)
}

func TestLowerSortAndLimitOffsetOrdering(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)
	limit := 10
	offset := 5

	q := &ast.Query{
		StartAlias: "o",
		StartKind:  "Organization",
		OrderBy:    []ast.OrderByTerm{{Field: ast.FieldRef{Alias: "o", Column: "id"}}},
		Limit:      &limit,
		Offset:     &offset,
	}

	node, err := lower.Lower(q, d, alloc, temporal)
	require.NoError(t, err)
	proj := node.(*plan.Project)
	lo, ok := proj.Input.(*plan.LimitOffset)
	require.True(t, ok)
	_, ok = lo.Input.(*plan.Sort)
	require.True(t, ok)
}

func TestLowerSetOperationWrapsLeftAndRight(t *testing.T) {
	d, alloc, temporal := newLowerCtx(t)

	left := &ast.Query{StartAlias: "o", StartKind: "Organization"}
	right := &ast.Query{StartAlias: "p", StartKind: "Person"}
	limit := 20

	setOp := &ast.SetOperation{
		Operator: ast.Union,
		Left:     left,
		Right:    right,
		Limit:    &limit,
	}

	node, err := lower.Lower(setOp, d, alloc, temporal)
	require.NoError(t, err)
	lo, ok := node.(*plan.LimitOffset)
	require.True(t, ok)
	_, ok = lo.Input.(*plan.SetOp)
	require.True(t, ok)
}
