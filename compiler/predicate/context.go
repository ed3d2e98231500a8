// Package predicate implements the Predicate Compiler of spec.md §4.I:
// translating an ast.PredicateExpr into a SQL boolean expression and a
// matching ordered list of bind parameters.
package predicate

import (
	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

// CompileQueryFunc compiles a nested QueryAst (used by EXISTS/IN
// subquery predicates) into a SQL string and its bind parameters. The
// top-level compiler package supplies this so predicate never imports
// the orchestration layer that would otherwise create an import cycle.
type CompileQueryFunc func(q ast.QueryAst) (sql string, args []any, err error)

// ColumnPrefix selects one of four field-addressing modes: the three
// spec.md §4.I defines (Undefined, Bare, Alias) plus PerField. The zero
// value is Undefined.
type ColumnPrefix struct {
	defined  bool
	value    string
	perField bool
}

// Undefined selects the post-CTE addressing mode:
// cte_<alias>.<alias>_<col>.
func Undefined() ColumnPrefix { return ColumnPrefix{} }

// Bare selects the in-CTE addressing mode: the raw column/expression
// with no table qualifier.
func Bare() ColumnPrefix { return ColumnPrefix{defined: true, value: ""} }

// Alias selects the table-alias-qualified addressing mode used inside
// traversal join clauses: <alias>.<col>.
func Alias(tableAlias string) ColumnPrefix { return ColumnPrefix{defined: true, value: tableAlias} }

// PerField selects table-alias-qualified addressing where the table
// alias is each field's own FieldRef.Alias rather than one fixed alias
// for the whole compile call — used by the emit package's direct-join
// statement builder, where AST aliases and SQL table aliases coincide
// and a single predicate tree or clause list may span several of them.
func PerField() ColumnPrefix { return ColumnPrefix{defined: true, perField: true} }

// Context carries everything predicate compilation needs beyond the
// expression tree itself, per spec.md §4.I's PredicateCompilerContext.
type Context struct {
	Dialect dialect.Adapter
	// Schema resolves a FieldRef's declared ValueType before compilation
	// reaches this package; predicate itself only ever reads the
	// ValueType already carried on the FieldRef.
	Schema          any
	CompileQuery    CompileQueryFunc
	CTEColumnPrefix ColumnPrefix
}
