package ast

import (
	"fmt"

	"github.com/nicia-ai/typegraph-sub002"
)

// Validate checks the static invariants and constraints spec.md §3 and
// §4.D place on a QueryAst before it may be compiled. It does not check
// dialect- or plan-shape-specific constraints (e.g. vector predicates
// under OR/NOT, or SQLite set-op leaf restrictions) — those are the
// compiler passes' and emitters' responsibility, since they depend on
// the chosen dialect.
func Validate(q QueryAst) error {
	switch v := q.(type) {
	case *Query:
		return validateQuery(v)
	case *SetOperation:
		if err := Validate(v.Left); err != nil {
			return err
		}
		if err := Validate(v.Right); err != nil {
			return err
		}
		return validateSetOperationOrderBy(v)
	default:
		return typegraph.NewCompilerInvariantError("ast.Validate", fmt.Sprintf("unknown QueryAst type %T", q))
	}
}

func validateQuery(q *Query) error {
	aliases := map[string]bool{q.StartAlias: true}
	for _, tr := range q.Traversals {
		if tr.EdgeAlias == tr.NodeAlias {
			return typegraph.NewValidationError("traversal", fmt.Sprintf("edge alias and node alias must differ, both are %q", tr.EdgeAlias))
		}
		aliases[tr.EdgeAlias] = true
		aliases[tr.NodeAlias] = true
	}

	if q.Predicates != nil {
		if err := validatePredicateAliases(q.Predicates, aliases); err != nil {
			return err
		}
		if err := validatePredicateConstraints(q.Predicates); err != nil {
			return err
		}
	}
	if q.Having != nil {
		if err := validatePredicateConstraints(q.Having); err != nil {
			return err
		}
	}
	for _, p := range q.Projection {
		if p.Field.Alias != "" && !aliases[p.Field.Alias] {
			return typegraph.NewValidationError("projection", fmt.Sprintf("alias %q is not introduced by start or a traversal", p.Field.Alias))
		}
	}
	return nil
}

func validatePredicateAliases(p PredicateExpr, aliases map[string]bool) error {
	targetAlias := func(alias string) error {
		if alias != "" && !aliases[alias] {
			return typegraph.NewValidationError("predicate", fmt.Sprintf("alias %q is not introduced by start or a traversal", alias))
		}
		return nil
	}

	switch v := p.(type) {
	case *Comparison:
		return targetAlias(v.TargetAlias)
	case *StringPredicate:
		return targetAlias(v.TargetAlias)
	case *NullCheck:
		return targetAlias(v.TargetAlias)
	case *Between:
		return targetAlias(v.TargetAlias)
	case *ArrayPredicate:
		return targetAlias(v.TargetAlias)
	case *ObjectPredicate:
		return targetAlias(v.TargetAlias)
	case *VectorSimilarity:
		return targetAlias(v.TargetAlias)
	case *AggregateComparison:
		return nil
	case *SubqueryPredicate:
		return nil
	case *And:
		for _, op := range v.Operands {
			if err := validatePredicateAliases(op, aliases); err != nil {
				return err
			}
		}
		return nil
	case *Or:
		for _, op := range v.Operands {
			if err := validatePredicateAliases(op, aliases); err != nil {
				return err
			}
		}
		return nil
	case *Not:
		return validatePredicateAliases(v.Operand, aliases)
	default:
		return typegraph.NewCompilerInvariantError("ast.Validate", fmt.Sprintf("unknown predicate type %T", p))
	}
}

// validatePredicateConstraints enforces the §4.D constraints that do not
// depend on alias scoping: in/notIn homogeneity, subquery shape, and
// EXISTS/IN graphId presence.
func validatePredicateConstraints(p PredicateExpr) error {
	switch v := p.(type) {
	case *Comparison:
		if v.Op == OpIn || v.Op == OpNotIn {
			return validateHomogeneous(v.Values)
		}
		return nil
	case *SubqueryPredicate:
		return validateSubqueryPredicate(v)
	case *And:
		for _, op := range v.Operands {
			if err := validatePredicateConstraints(op); err != nil {
				return err
			}
		}
		return nil
	case *Or:
		for _, op := range v.Operands {
			if err := validatePredicateConstraints(op); err != nil {
				return err
			}
		}
		return nil
	case *Not:
		return validatePredicateConstraints(v.Operand)
	default:
		return nil
	}
}

func validateHomogeneous(values []any) error {
	if len(values) == 0 {
		return nil
	}
	first := valueTypeOf(values[0])
	for _, v := range values[1:] {
		if valueTypeOf(v) != first {
			return typegraph.NewValidationError("in/notIn", "right-hand array must be homogeneous in valueType")
		}
	}
	return nil
}

func valueTypeOf(v any) ValueType {
	switch v.(type) {
	case string:
		return ValueString
	case bool:
		return ValueBoolean
	case int, int32, int64, float32, float64:
		return ValueNumber
	case []any:
		return ValueArray
	case map[string]any:
		return ValueObject
	default:
		return ValueString
	}
}

func validateSubqueryPredicate(v *SubqueryPredicate) error {
	graphID := subqueryGraphID(v.Subquery)
	if graphID == "" {
		return typegraph.NewValidationError("subquery", "EXISTS/IN subqueries must carry a graphId")
	}

	if v.Kind == SubqueryIn || v.Kind == SubqueryNotIn {
		leaf := LeftmostLeaf(v.Subquery)
		if leaf == nil {
			return typegraph.NewCompilerInvariantError("ast.Validate", "in/notIn subquery has no leaf query")
		}
		if len(leaf.Projection) != 1 {
			return typegraph.NewValidationError("subquery", "in/notIn subquery must project exactly one scalar column")
		}
		vt := leaf.Projection[0].Field.ValueType
		switch vt {
		case ValueObject, ValueArray:
			return typegraph.NewValidationError("subquery", fmt.Sprintf("in/notIn subquery column must be scalar, got %s", vt))
		}
		if vt != "" && v.Field.ValueType != "" && vt != v.Field.ValueType {
			return typegraph.NewValidationError("subquery", fmt.Sprintf("in/notIn subquery column type %s is incompatible with field type %s", vt, v.Field.ValueType))
		}
	}
	return nil
}

func subqueryGraphID(q QueryAst) string {
	switch v := q.(type) {
	case *Query:
		return v.GraphID
	case *SetOperation:
		return subqueryGraphID(v.Left)
	default:
		return ""
	}
}

// validateSetOperationOrderBy checks that every ORDER BY field on a set
// operation references an output name produced by the leftmost leaf's
// projection (spec.md §3 invariant iv, §4.H).
func validateSetOperationOrderBy(op *SetOperation) error {
	leaf := LeftmostLeaf(op.Left)
	if leaf == nil {
		return typegraph.NewCompilerInvariantError("ast.Validate", "set operation has no leftmost leaf")
	}
	names := make(map[string]bool, len(leaf.Projection))
	for _, p := range leaf.Projection {
		names[outputName(p)] = true
	}
	for _, term := range op.OrderBy {
		name := term.Field.Column
		if name == "" {
			name = term.Field.Alias
		}
		if !names[name] {
			available := make([]string, 0, len(names))
			for n := range names {
				available = append(available, n)
			}
			return typegraph.NewUnsupportedPredicateError(
				fmt.Sprintf("order by %q does not reference the leftmost leaf's projection", name),
				available...,
			)
		}
	}
	return nil
}

func outputName(p ProjectionField) string {
	if p.Alias != "" {
		return p.Alias
	}
	if p.Field.Column != "" {
		return p.Field.Column
	}
	return p.Field.Pointer
}
