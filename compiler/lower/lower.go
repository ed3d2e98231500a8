// Package lower implements the pure AST -> LogicalPlan lowering step of
// spec.md §4.F. Lowering never touches a database or dialect driver; it
// only consults the dialect.Adapter for capability-neutral fragments
// (the temporal "now" expression) needed to build Filter nodes.
package lower

import (
	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
	"github.com/nicia-ai/typegraph-sub002/compiler/plan"
)

// Lower lowers any QueryAst — a leaf Query or a SetOperation — into a
// LogicalPlan, per spec.md §4.F.
func Lower(q ast.QueryAst, d dialect.Adapter, alloc *plan.IDAllocator, temporal *passes.TemporalMemo) (plan.Node, error) {
	switch v := q.(type) {
	case *ast.Query:
		return lowerQuery(v, d, alloc, temporal)
	case *ast.SetOperation:
		return lowerSetOperation(v, d, alloc, temporal)
	default:
		return nil, nil
	}
}

// lowerSetOperation recursively lowers Left and Right, wraps them in a
// SetOp, and optionally adds Sort/LimitOffset, per spec.md §4.F's
// "Lowering for set operations".
func lowerSetOperation(s *ast.SetOperation, d dialect.Adapter, alloc *plan.IDAllocator, temporal *passes.TemporalMemo) (plan.Node, error) {
	left, err := Lower(s.Left, d, alloc, temporal)
	if err != nil {
		return nil, err
	}
	right, err := Lower(s.Right, d, alloc, temporal)
	if err != nil {
		return nil, err
	}

	var node plan.Node = plan.NewSetOp(alloc, s.Operator, left, right)
	if len(s.OrderBy) > 0 {
		node = plan.NewSort(alloc, node, s.OrderBy)
	}
	if s.Limit != nil || s.Offset != nil {
		node = plan.NewLimitOffset(alloc, node, s.Limit, s.Offset)
	}
	return node, nil
}

// lowerQuery implements the 8-step ordering of spec.md §4.F for a
// standard leaf query, substituting a RecursiveExpand for the join
// chain when a traversal carries VariableLength.
func lowerQuery(q *ast.Query, d dialect.Adapter, alloc *plan.IDAllocator, temporal *passes.TemporalMemo) (plan.Node, error) {
	nonVector, vector, err := passes.ExtractVectorSimilarity(q.Predicates)
	if err != nil {
		return nil, err
	}
	byAlias := partitionByAlias(nonVector)

	recursiveIdx, err := passes.SelectRecursiveTraversal(q.Traversals)
	if err != nil {
		return nil, err
	}

	var node plan.Node = plan.NewScan(alloc, q.StartAlias, []string{q.StartKind}, q.GraphID, q.IncludeSubClasses)

	startFragment, err := temporal.Fragment(q.StartAlias, q.TemporalMode)
	if err != nil {
		return nil, err
	}
	node = plan.NewFilter(alloc, node, byAlias[q.StartAlias], startFragment, q.StartAlias)

	if recursiveIdx >= 0 {
		node = plan.NewRecursiveExpand(alloc, node, q.Traversals[recursiveIdx])
		// Filters for the recursive traversal's aliases still apply to
		// the expanded rows, appended after the expansion.
		t := q.Traversals[recursiveIdx]
		if pred, ok := byAlias[t.EdgeAlias]; ok {
			frag, ferr := temporal.Fragment(t.EdgeAlias, q.TemporalMode)
			if ferr != nil {
				return nil, ferr
			}
			node = plan.NewFilter(alloc, node, pred, frag, t.EdgeAlias)
		}
		if pred, ok := byAlias[t.NodeAlias]; ok {
			frag, ferr := temporal.Fragment(t.NodeAlias, q.TemporalMode)
			if ferr != nil {
				return nil, ferr
			}
			node = plan.NewFilter(alloc, node, pred, frag, t.NodeAlias)
		}
	} else {
		for _, t := range q.Traversals {
			kind := plan.InnerJoin
			if t.Optional {
				kind = plan.LeftJoin
			}
			node = plan.NewJoin(alloc, node, kind, t.EdgeKind, t.EdgeAlias, t.NodeKind, t.NodeAlias, t.IncludeSubClasses)

			if pred, ok := byAlias[t.EdgeAlias]; ok {
				frag, ferr := temporal.Fragment(t.EdgeAlias, q.TemporalMode)
				if ferr != nil {
					return nil, ferr
				}
				node = plan.NewFilter(alloc, node, pred, frag, t.EdgeAlias)
			}
			if pred, ok := byAlias[t.NodeAlias]; ok {
				frag, ferr := temporal.Fragment(t.NodeAlias, q.TemporalMode)
				if ferr != nil {
					return nil, ferr
				}
				node = plan.NewFilter(alloc, node, pred, frag, t.NodeAlias)
			}
		}
	}

	if vector != nil {
		node = plan.NewVectorKnn(alloc, node, vector)
	}

	if len(q.GroupBy) > 0 || q.Having != nil || hasAggregateProjection(q.Projection) {
		node = plan.NewAggregate(alloc, node, q.GroupBy, q.Having)
	}

	if len(q.OrderBy) > 0 {
		node = plan.NewSort(alloc, node, q.OrderBy)
	}

	effectiveLimit := passes.EffectiveLimit(q.Limit, vector)
	if effectiveLimit != nil || q.Offset != nil {
		node = plan.NewLimitOffset(alloc, node, effectiveLimit, q.Offset)
	}

	collapsed := ""
	if len(q.Traversals) == 1 && recursiveIdx == -1 {
		collapsed = q.Traversals[0].NodeAlias
	}
	node = plan.NewProject(alloc, node, q.Projection, collapsed)

	return node, nil
}

// partitionByAlias splits q's top-level AND conjuncts by the TargetAlias
// each predicate leaf carries, so step (2)/(3) of §4.F can attach a
// per-alias Filter. Predicates already containing a VectorSimilarity
// are excluded here since extraction runs separately against the
// unsplit tree.
func partitionByAlias(predicate ast.PredicateExpr) map[string]ast.PredicateExpr {
	result := make(map[string]ast.PredicateExpr)
	var conjuncts []ast.PredicateExpr
	flattenAnd(predicate, &conjuncts)

	for _, c := range conjuncts {
		alias := targetAliasOf(c)
		if alias == "" {
			continue
		}
		if existing, ok := result[alias]; ok {
			result[alias] = &ast.And{Operands: []ast.PredicateExpr{existing, c}}
		} else {
			result[alias] = c
		}
	}
	return result
}

func flattenAnd(p ast.PredicateExpr, out *[]ast.PredicateExpr) {
	switch v := p.(type) {
	case nil:
		return
	case *ast.And:
		for _, operand := range v.Operands {
			flattenAnd(operand, out)
		}
	default:
		*out = append(*out, p)
	}
}

func targetAliasOf(p ast.PredicateExpr) string {
	switch v := p.(type) {
	case *ast.Comparison:
		return v.TargetAlias
	case *ast.StringPredicate:
		return v.TargetAlias
	case *ast.NullCheck:
		return v.TargetAlias
	case *ast.Between:
		return v.TargetAlias
	case *ast.ArrayPredicate:
		return v.TargetAlias
	case *ast.ObjectPredicate:
		return v.TargetAlias
	case *ast.VectorSimilarity:
		return v.TargetAlias
	default:
		return ""
	}
}

func hasAggregateProjection(fields []ast.ProjectionField) bool {
	for _, f := range fields {
		if f.Aggregate != ast.AggregateNone {
			return true
		}
	}
	return false
}
