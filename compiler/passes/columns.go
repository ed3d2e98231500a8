package passes

import "github.com/nicia-ai/typegraph-sub002/ast"

// RequiredColumns implements spec.md §4.E.5: for each alias, the set of
// physical columns and JSON pointers actually referenced by predicates,
// projection, or order-by, so CTE SELECT lists can project only what is
// needed rather than every column of every aliased row. This pass is
// advisory — lowering and emission remain correct if a caller ignores
// its result and projects everything.
type RequiredColumns struct {
	// Columns maps alias -> physical column name -> present.
	Columns map[string]map[string]bool
	// Pointers maps alias -> JSON pointer -> present.
	Pointers map[string]map[string]bool
}

func newRequiredColumns() *RequiredColumns {
	return &RequiredColumns{
		Columns:  make(map[string]map[string]bool),
		Pointers: make(map[string]map[string]bool),
	}
}

func (r *RequiredColumns) addField(f ast.FieldRef) {
	if f.Pointer != "" {
		m, ok := r.Pointers[f.Alias]
		if !ok {
			m = make(map[string]bool)
			r.Pointers[f.Alias] = m
		}
		m[f.Pointer] = true
		return
	}
	if f.Column != "" {
		m, ok := r.Columns[f.Alias]
		if !ok {
			m = make(map[string]bool)
			r.Columns[f.Alias] = m
		}
		m[f.Column] = true
	}
}

// AnalyzeRequiredColumns walks q's predicates, projection, group-by,
// having, and order-by clauses and returns the per-alias column/pointer
// set they reference.
func AnalyzeRequiredColumns(q *ast.Query) *RequiredColumns {
	r := newRequiredColumns()

	r.walkPredicate(q.Predicates)
	r.walkPredicate(q.Having)

	for _, f := range q.Projection {
		r.addField(f.Field)
	}
	for _, f := range q.SelectiveFields {
		r.addField(f)
	}
	for _, f := range q.GroupBy {
		r.addField(f)
	}
	for _, t := range q.OrderBy {
		r.addField(t.Field)
	}

	return r
}

func (r *RequiredColumns) walkPredicate(p ast.PredicateExpr) {
	switch v := p.(type) {
	case nil:
		return
	case *ast.Comparison:
		r.addField(v.Field)
	case *ast.StringPredicate:
		r.addField(v.Field)
	case *ast.NullCheck:
		r.addField(v.Field)
	case *ast.Between:
		r.addField(v.Field)
	case *ast.ArrayPredicate:
		r.addField(v.Field)
	case *ast.ObjectPredicate:
		r.addField(v.Field)
	case *ast.AggregateComparison:
		r.addField(v.Field)
	case *ast.SubqueryPredicate:
		r.addField(v.Field)
	case *ast.VectorSimilarity:
		m, ok := r.Pointers[v.TargetAlias]
		if !ok {
			m = make(map[string]bool)
			r.Pointers[v.TargetAlias] = m
		}
		m[v.FieldPath] = true
	case *ast.And:
		for _, operand := range v.Operands {
			r.walkPredicate(operand)
		}
	case *ast.Or:
		for _, operand := range v.Operands {
			r.walkPredicate(operand)
		}
	case *ast.Not:
		r.walkPredicate(v.Operand)
	}
}
