package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
)

func TestAnalyzeRequiredColumnsCollectsPredicateAndProjection(t *testing.T) {
	q := &ast.Query{
		StartAlias: "o",
		Predicates: &ast.And{Operands: []ast.PredicateExpr{
			&ast.Comparison{TargetAlias: "o", Field: ast.FieldRef{Alias: "o", Column: "status"}, Op: ast.OpEQ, Value: "active"},
			&ast.ObjectPredicate{TargetAlias: "o", Field: ast.FieldRef{Alias: "o", Pointer: "/meta"}, Op: ast.OpHasKey, Key: "tag"},
		}},
		Projection: []ast.ProjectionField{
			{Alias: "id", Field: ast.FieldRef{Alias: "o", Column: "id"}},
		},
		OrderBy: []ast.OrderByTerm{
			{Field: ast.FieldRef{Alias: "o", Column: "created_at"}},
		},
	}

	r := passes.AnalyzeRequiredColumns(q)

	assert.True(t, r.Columns["o"]["status"])
	assert.True(t, r.Columns["o"]["id"])
	assert.True(t, r.Columns["o"]["created_at"])
	assert.True(t, r.Pointers["o"]["/meta"])
}

func TestAnalyzeRequiredColumnsCollectsVectorFieldPath(t *testing.T) {
	q := &ast.Query{
		StartAlias: "o",
		Predicates: &ast.VectorSimilarity{TargetAlias: "o", FieldPath: "/embedding"},
	}
	r := passes.AnalyzeRequiredColumns(q)
	assert.True(t, r.Pointers["o"]["/embedding"])
}
