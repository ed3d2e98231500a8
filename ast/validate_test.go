package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/ast"
)

func simpleQuery() *ast.Query {
	return &ast.Query{
		GraphID:    "g1",
		StartAlias: "p",
		StartKind:  "Person",
		Projection: []ast.ProjectionField{{Field: ast.FieldRef{Alias: "p", Column: "id"}}},
	}
}

func TestValidateAcceptsSimpleQuery(t *testing.T) {
	require.NoError(t, ast.Validate(simpleQuery()))
}

func TestValidateRejectsUnknownAlias(t *testing.T) {
	q := simpleQuery()
	q.Predicates = &ast.Comparison{TargetAlias: "ghost", TargetType: ast.TargetNode, Field: ast.FieldRef{Column: "name"}, Op: ast.OpEQ, Value: "x"}
	err := ast.Validate(q)
	require.Error(t, err)
	assert.True(t, typegraph.IsValidationError(err))
}

func TestValidateRejectsSameEdgeNodeAlias(t *testing.T) {
	q := simpleQuery()
	q.Traversals = []ast.Traversal{{EdgeKind: "worksAt", EdgeAlias: "e", NodeKind: "Organization", NodeAlias: "e"}}
	err := ast.Validate(q)
	require.Error(t, err)
}

func TestValidateAcceptsTraversalAliases(t *testing.T) {
	q := simpleQuery()
	q.Traversals = []ast.Traversal{{EdgeKind: "worksAt", EdgeAlias: "e", NodeKind: "Organization", NodeAlias: "o"}}
	q.Predicates = &ast.Comparison{TargetAlias: "o", TargetType: ast.TargetNode, Field: ast.FieldRef{Column: "name"}, Op: ast.OpEQ, Value: "Acme"}
	require.NoError(t, ast.Validate(q))
}

func TestValidateInHeterogeneousRejected(t *testing.T) {
	q := simpleQuery()
	q.Predicates = &ast.Comparison{
		TargetAlias: "p", TargetType: ast.TargetNode,
		Field: ast.FieldRef{Column: "age"}, Op: ast.OpIn,
		Values: []any{1, "two"},
	}
	err := ast.Validate(q)
	require.Error(t, err)
	assert.True(t, typegraph.IsValidationError(err))
}

func TestValidateInHomogeneousAccepted(t *testing.T) {
	q := simpleQuery()
	q.Predicates = &ast.Comparison{
		TargetAlias: "p", TargetType: ast.TargetNode,
		Field: ast.FieldRef{Column: "age"}, Op: ast.OpIn,
		Values: []any{1, 2, 3},
	}
	require.NoError(t, ast.Validate(q))
}

func TestValidateSubqueryRequiresGraphID(t *testing.T) {
	sub := &ast.Query{StartAlias: "x", StartKind: "Person"}
	q := simpleQuery()
	q.Predicates = &ast.SubqueryPredicate{Kind: ast.SubqueryExists, Subquery: sub}
	err := ast.Validate(q)
	require.Error(t, err)
}

func TestValidateInSubqueryRequiresSingleScalarColumn(t *testing.T) {
	sub := &ast.Query{
		GraphID:    "g1",
		StartAlias: "x",
		StartKind:  "Person",
		Projection: []ast.ProjectionField{
			{Field: ast.FieldRef{Alias: "x", Column: "id"}},
			{Field: ast.FieldRef{Alias: "x", Column: "name"}},
		},
	}
	q := simpleQuery()
	q.Predicates = &ast.SubqueryPredicate{
		Kind:     ast.SubqueryIn,
		Field:    ast.FieldRef{Alias: "p", Column: "id"},
		Subquery: sub,
	}
	err := ast.Validate(q)
	require.Error(t, err)
}

func TestValidateInSubqueryRejectsObjectColumn(t *testing.T) {
	sub := &ast.Query{
		GraphID:    "g1",
		StartAlias: "x",
		StartKind:  "Person",
		Projection: []ast.ProjectionField{
			{Field: ast.FieldRef{Alias: "x", Pointer: "/meta", ValueType: ast.ValueObject}},
		},
	}
	q := simpleQuery()
	q.Predicates = &ast.SubqueryPredicate{Kind: ast.SubqueryIn, Field: ast.FieldRef{Column: "id"}, Subquery: sub}
	err := ast.Validate(q)
	require.Error(t, err)
}

func TestValidateSetOperationOrderByMustReferenceLeftmostProjection(t *testing.T) {
	left := &ast.Query{GraphID: "g1", StartAlias: "p", StartKind: "Person",
		Projection: []ast.ProjectionField{{Alias: "name", Field: ast.FieldRef{Alias: "p", Column: "name"}}}}
	right := &ast.Query{GraphID: "g1", StartAlias: "p", StartKind: "Person",
		Projection: []ast.ProjectionField{{Alias: "name", Field: ast.FieldRef{Alias: "p", Column: "name"}}}}

	setOp := &ast.SetOperation{
		Operator: ast.Union,
		Left:     left,
		Right:    right,
		OrderBy:  []ast.OrderByTerm{{Field: ast.FieldRef{Column: "not_projected"}, Direction: ast.Ascending}},
	}
	err := ast.Validate(setOp)
	require.Error(t, err)
	assert.True(t, typegraph.IsUnsupportedPredicate(err))
}

func TestValidateSetOperationOrderByAccepted(t *testing.T) {
	left := &ast.Query{GraphID: "g1", StartAlias: "p", StartKind: "Person",
		Projection: []ast.ProjectionField{{Alias: "name", Field: ast.FieldRef{Alias: "p", Column: "name"}}}}
	right := &ast.Query{GraphID: "g1", StartAlias: "p", StartKind: "Person",
		Projection: []ast.ProjectionField{{Alias: "name", Field: ast.FieldRef{Alias: "p", Column: "name"}}}}

	setOp := &ast.SetOperation{
		Operator: ast.Union,
		Left:     left,
		Right:    right,
		OrderBy:  []ast.OrderByTerm{{Field: ast.FieldRef{Column: "name"}, Direction: ast.Ascending}},
	}
	require.NoError(t, ast.Validate(setOp))
}

func TestLeftmostLeaf(t *testing.T) {
	inner := simpleQuery()
	outer := &ast.SetOperation{Operator: ast.Union, Left: inner, Right: simpleQuery()}
	nested := &ast.SetOperation{Operator: ast.Except, Left: outer, Right: simpleQuery()}
	assert.Same(t, inner, ast.LeftmostLeaf(nested))
}
