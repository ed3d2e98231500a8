// Package emit implements the SQL Emitters of spec.md §4.H: three
// plan-shape-gated renderers turning a LogicalPlan into a SQL string
// and bind parameters. Rather than the literal CTE-per-alias layering
// spec.md sketches, each alias in a standard or recursive plan renders
// as a directly joined table reference (nodes/edges AS <alias>), the
// same single-statement builder style the root package's own ancestor
// dialect/sql.Selector uses — CTEs are reserved for the cases that
// structurally require them: recursive expansion and SQLite's
// compound-select leaf lifting.
package emit

import (
	"fmt"
	"strings"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/plan"
	"github.com/nicia-ai/typegraph-sub002/compiler/predicate"
)

// Result is a compiled statement ready for a driver's QueryContext.
type Result struct {
	SQL  string
	Args []any
}

// Emit dispatches on the plan's shape to the matching emitter, per
// spec.md §4.H.
func Emit(d dialect.Adapter, root plan.Node, compileQuery predicate.CompileQueryFunc) (*Result, error) {
	shape := plan.Inspect(root)

	switch {
	case shape.HasSetOp:
		return emitSetOperation(d, root, compileQuery)
	case shape.HasRecursiveExpand:
		return emitRecursive(d, root, compileQuery)
	default:
		return emitStandard(d, root, compileQuery)
	}
}

// builder accumulates bind parameters across an emit call, renumbering
// placeholders from each predicate.Compile call into the statement's
// single sequential parameter list.
type builder struct {
	d    dialect.Adapter
	args []any
}

func (b *builder) appendCompiled(sql string, args []any) string {
	offset := len(b.args)
	b.args = append(b.args, args...)
	if offset == 0 {
		return sql
	}
	return renumberPlaceholders(b.d, sql, offset)
}

// renumberPlaceholders rewrites a fragment's own 1-based "$n" or "?"
// placeholders (produced in isolation by predicate.Compile) to their
// position in the statement's combined parameter list. SQLite's "?" is
// positional and needs no rewriting; PostgreSQL's "$n" does.
func renumberPlaceholders(d dialect.Adapter, sql string, offset int) string {
	if d.Name() != dialect.Postgres {
		return sql
	}
	var out strings.Builder
	i := 0
	for i < len(sql) {
		if sql[i] == '$' {
			j := i + 1
			for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
				j++
			}
			if j > i+1 {
				n := 0
				fmt.Sscanf(sql[i+1:j], "%d", &n)
				out.WriteString(fmt.Sprintf("$%d", n+offset))
				i = j
				continue
			}
		}
		out.WriteByte(sql[i])
		i++
	}
	return out.String()
}

func (b *builder) compilePredicate(expr ast.PredicateExpr, tableAlias string) (string, error) {
	ctx := &predicate.Context{Dialect: b.d, CTEColumnPrefix: predicate.Alias(tableAlias)}
	sql, args, err := predicate.Compile(ctx, expr)
	if err != nil {
		return "", err
	}
	return b.appendCompiled(sql, args), nil
}

// compilePredicatePerField compiles expr with each field addressed by
// its own FieldRef.Alias, for clauses (HAVING) that may reference
// several aliases in one expression.
func (b *builder) compilePredicatePerField(expr ast.PredicateExpr, compileQuery predicate.CompileQueryFunc) (string, error) {
	ctx := &predicate.Context{Dialect: b.d, CTEColumnPrefix: predicate.PerField(), CompileQuery: compileQuery}
	sql, args, err := predicate.Compile(ctx, expr)
	if err != nil {
		return "", err
	}
	return b.appendCompiled(sql, args), nil
}

// quoted returns d's quoted form of name, for table/column identifiers
// that are never user input (aliases, physical column names).
func quoted(d dialect.Adapter, name string) string { return d.QuoteIdentifier(name) }

func rowTableFor(kind rowKind) string {
	if kind == rowKindEdge {
		return "edges"
	}
	return "nodes"
}

type rowKind int

const (
	rowKindNode rowKind = iota
	rowKindEdge
)

// orderByClause renders ORDER BY terms using the uniform NULL-ordering
// emulation of spec.md §4.H: (col IS NULL) ASC/DESC, col DIR, with
// ASC -> NULLS LAST and DESC -> NULLS FIRST achieved by flipping the
// null-flag's own direction. addr resolves each term's column
// expression — callers pass predicate.FieldSQL for a plain per-alias
// field, or a lookup into the leftmost leaf's output names for a
// set-operation's suffix ORDER BY.
func orderByClause(terms []ast.OrderByTerm, addr func(ast.FieldRef) string) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		col := addr(t.Field)
		dir := "ASC"
		nullDir := "ASC" // ASC -> NULLS LAST means null-flag sorts ASC (false=0 before true=1)
		if t.Direction == ast.Descending {
			dir = "DESC"
			nullDir = "DESC" // DESC -> NULLS FIRST means null-flag sorts DESC (true=1 before false=0)
		}
		parts = append(parts, fmt.Sprintf("(%s IS NULL) %s, %s %s", col, nullDir, col, dir))
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func limitOffsetClause(b *builder, limit, offset *int) string {
	var parts []string
	if limit != nil {
		parts = append(parts, "LIMIT "+b.bindLiteral(*limit))
	}
	if offset != nil {
		parts = append(parts, "OFFSET "+b.bindLiteral(*offset))
	}
	return strings.Join(parts, " ")
}

func (b *builder) bindLiteral(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}
