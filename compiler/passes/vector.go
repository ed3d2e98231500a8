package passes

import (
	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/ast"
)

// ExtractVectorSimilarity implements spec.md §4.E.2: it walks predicate
// for a single top-level (AND-conjunction position) VectorSimilarity
// conjunct, removes it, and returns the remaining predicate alongside
// the extracted node. A VectorSimilarity found under Or or Not fails
// compilation with an UnsupportedPredicateError. More than one
// top-level VectorSimilarity is likewise unsupported.
func ExtractVectorSimilarity(predicate ast.PredicateExpr) (ast.PredicateExpr, *ast.VectorSimilarity, error) {
	if err := rejectNestedVector(predicate, false); err != nil {
		return nil, nil, err
	}

	var found []*ast.VectorSimilarity
	remaining := stripTopLevelVector(predicate, &found)
	if len(found) > 1 {
		return nil, nil, typegraph.NewUnsupportedPredicateError(
			"at most one vector_similarity predicate is supported per query",
			"vector_similarity",
		)
	}
	if len(found) == 0 {
		return predicate, nil, nil
	}
	return remaining, found[0], nil
}

// rejectNestedVector walks predicate, failing if a VectorSimilarity
// appears while underOrNot is true (i.e. beneath an Or or Not node).
func rejectNestedVector(predicate ast.PredicateExpr, underOrNot bool) error {
	switch p := predicate.(type) {
	case nil:
		return nil
	case *ast.VectorSimilarity:
		if underOrNot {
			return typegraph.NewUnsupportedPredicateError(
				"vector_similarity may not appear under or/not",
				"vector_similarity",
			)
		}
		return nil
	case *ast.And:
		for _, operand := range p.Operands {
			if err := rejectNestedVector(operand, underOrNot); err != nil {
				return err
			}
		}
		return nil
	case *ast.Or:
		for _, operand := range p.Operands {
			if err := rejectNestedVector(operand, true); err != nil {
				return err
			}
		}
		return nil
	case *ast.Not:
		return rejectNestedVector(p.Operand, true)
	default:
		return nil
	}
}

// stripTopLevelVector removes VectorSimilarity nodes reachable through a
// chain of top-level And conjunctions, appending each to found and
// returning the predicate tree with those nodes removed.
func stripTopLevelVector(predicate ast.PredicateExpr, found *[]*ast.VectorSimilarity) ast.PredicateExpr {
	switch p := predicate.(type) {
	case nil:
		return nil
	case *ast.VectorSimilarity:
		*found = append(*found, p)
		return nil
	case *ast.And:
		var remaining []ast.PredicateExpr
		for _, operand := range p.Operands {
			if r := stripTopLevelVector(operand, found); r != nil {
				remaining = append(remaining, r)
			}
		}
		switch len(remaining) {
		case 0:
			return nil
		case 1:
			return remaining[0]
		default:
			return &ast.And{Operands: remaining}
		}
	default:
		return predicate
	}
}
