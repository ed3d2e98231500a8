package emit

import (
	"fmt"
	"strings"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/plan"
	"github.com/nicia-ai/typegraph-sub002/compiler/predicate"
)

func operatorKeyword(op ast.SetOperator) string {
	switch op {
	case ast.Union:
		return "UNION"
	case ast.UnionAll:
		return "UNION ALL"
	case ast.Intersect:
		return "INTERSECT"
	case ast.Except:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

// flattenLeaves returns, in left-to-right order, every non-SetOp operand
// reachable from root, plus the operator that joins each one to its
// predecessor.
func flattenLeaves(root plan.Node) ([]plan.Node, []ast.SetOperator) {
	var leaves []plan.Node
	var operators []ast.SetOperator
	var walk func(n plan.Node, opWithPrev ast.SetOperator, hasPrev bool)
	walk = func(n plan.Node, opWithPrev ast.SetOperator, hasPrev bool) {
		if so, ok := n.(*plan.SetOp); ok {
			walk(so.Left, opWithPrev, hasPrev)
			walk(so.Right, so.Operator, true)
			return
		}
		leaves = append(leaves, n)
		if hasPrev {
			operators = append(operators, opWithPrev)
		}
	}
	walk(root, "", false)
	return leaves, operators
}

// emitSetOperation implements the Set-operation emitter of spec.md §4.H.
// PostgreSQL composes parenthesized leaves directly; SQLite forbids a
// parenthesized SELECT as a compound-select arm, so its leaves are first
// lifted into uniquely named CTEs and each arm becomes a plain
// "SELECT * FROM cte_qN" referencing one.
func emitSetOperation(d dialect.Adapter, root plan.Node, compileQuery predicate.CompileQueryFunc) (*Result, error) {
	var sort *plan.Sort
	var limitOffset *plan.LimitOffset
	n := root
	if lo, ok := n.(*plan.LimitOffset); ok {
		limitOffset = lo
		n = lo.Input
	}
	if s, ok := n.(*plan.Sort); ok {
		sort = s
		n = s.Input
	}
	setOp, ok := n.(*plan.SetOp)
	if !ok {
		return nil, typegraph.NewCompilerInvariantError("emit", "set-operation emitter requires a set_op node")
	}

	leaves, operators := flattenLeaves(setOp)
	if len(leaves) < 2 {
		return nil, typegraph.NewCompilerInvariantError("emit", "set operation requires at least two leaves")
	}

	// A set operation's ORDER BY addresses the compound result's own output
	// column (spec.md §3 invariant iv, resolved to the leftmost leaf's
	// projection names at AST-build time), so the field's own Column name
	// is already the right identifier to quote.
	outputAddr := func(f ast.FieldRef) string {
		return d.QuoteIdentifier(f.Column)
	}

	b := &builder{d: d}

	if d.SetOperationStrategy() == dialect.SQLiteCompound {
		return emitSQLiteCompound(d, b, leaves, operators, sort, limitOffset, outputAddr, compileQuery)
	}
	return emitParenthesized(d, b, leaves, operators, sort, limitOffset, outputAddr, compileQuery)
}

func emitParenthesized(
	d dialect.Adapter, b *builder, leaves []plan.Node, operators []ast.SetOperator,
	sort *plan.Sort, limitOffset *plan.LimitOffset,
	outputAddr func(ast.FieldRef) string, compileQuery predicate.CompileQueryFunc,
) (*Result, error) {
	var parts []string
	for i, leafNode := range leaves {
		res, err := Emit(d, leafNode, compileQuery)
		if err != nil {
			return nil, err
		}
		sql := b.appendCompiled(res.SQL, res.Args)
		if i > 0 {
			parts = append(parts, operatorKeyword(operators[i-1]))
		}
		parts = append(parts, "("+sql+")")
	}

	stmt := strings.Join(parts, " ")
	if sort != nil && len(sort.Terms) > 0 {
		stmt += " " + orderByClause(sort.Terms, outputAddr)
	}
	if limitOffset != nil {
		if clause := limitOffsetClause(b, limitOffset.Limit, limitOffset.Offset); clause != "" {
			stmt += " " + clause
		}
	}
	return &Result{SQL: stmt, Args: b.args}, nil
}

// emitSQLiteCompound lifts each leaf into its own CTE, named cte_q<index>,
// then composes a compound SELECT over plain "SELECT * FROM cte_qN" arms.
// Per spec.md §4.H, SQLite leaves may not themselves contain a traversal,
// a subquery predicate, vector similarity, GROUP BY/HAVING, or a per-leaf
// ORDER BY/LIMIT/OFFSET — those constructs are rejected here rather than
// silently dropped.
func emitSQLiteCompound(
	d dialect.Adapter, b *builder, leaves []plan.Node, operators []ast.SetOperator,
	sort *plan.Sort, limitOffset *plan.LimitOffset,
	outputAddr func(ast.FieldRef) string, compileQuery predicate.CompileQueryFunc,
) (*Result, error) {
	cteDefs := make([]string, 0, len(leaves))
	selectArms := make([]string, 0, len(leaves))

	for i, leafNode := range leaves {
		chain, err := flattenStandard(leafNode)
		if err != nil {
			return nil, err
		}
		if violations := sqliteLeafViolations(chain); len(violations) > 0 {
			return nil, typegraph.NewUnsupportedPredicateError(
				"sqlite set-operation leaves cannot use these constructs", violations...)
		}

		res, err := emitStandard(d, leafNode, compileQuery)
		if err != nil {
			return nil, err
		}
		cteName := fmt.Sprintf("cte_q%d", i)
		sql := b.appendCompiled(res.SQL, res.Args)
		cteDefs = append(cteDefs, fmt.Sprintf("%s AS (%s)", d.QuoteIdentifier(cteName), sql))

		if i > 0 {
			selectArms = append(selectArms, operatorKeyword(operators[i-1]))
		}
		selectArms = append(selectArms, fmt.Sprintf("SELECT * FROM %s", d.QuoteIdentifier(cteName)))
	}

	stmt := "WITH " + strings.Join(cteDefs, ", ") + " " + strings.Join(selectArms, " ")
	if sort != nil && len(sort.Terms) > 0 {
		stmt += " " + orderByClause(sort.Terms, outputAddr)
	}
	if limitOffset != nil {
		if clause := limitOffsetClause(b, limitOffset.Limit, limitOffset.Offset); clause != "" {
			stmt += " " + clause
		}
	}
	return &Result{SQL: stmt, Args: b.args}, nil
}

func sqliteLeafViolations(c *chain) []string {
	var violations []string
	if len(c.joins) > 0 {
		violations = append(violations, "traversal")
	}
	if c.vectorKnn != nil {
		violations = append(violations, "vectorSimilarity")
	}
	if c.aggregate != nil {
		violations = append(violations, "groupByOrHaving")
	}
	if c.sort != nil {
		violations = append(violations, "perLeafOrderBy")
	}
	if c.limitOffset != nil {
		violations = append(violations, "perLeafLimitOffset")
	}
	for _, f := range c.filters {
		if f.Predicate != nil && containsSubquery(f.Predicate) {
			violations = append(violations, "subqueryPredicate")
			break
		}
	}
	return violations
}

func containsSubquery(expr ast.PredicateExpr) bool {
	switch p := expr.(type) {
	case nil:
		return false
	case *ast.SubqueryPredicate:
		return true
	case *ast.And:
		for _, op := range p.Operands {
			if containsSubquery(op) {
				return true
			}
		}
		return false
	case *ast.Or:
		for _, op := range p.Operands {
			if containsSubquery(op) {
				return true
			}
		}
		return false
	case *ast.Not:
		return containsSubquery(p.Operand)
	default:
		return false
	}
}
