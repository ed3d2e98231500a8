package predicate

import (
	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

// FieldSQL renders a single FieldRef's read expression under the
// PerField addressing mode: <f.Alias>.<col> for a physical column, or
// the dialect's typed JSON extraction of <f.Alias>.props for a
// pointer field. It is the addressing helper projection/group-by/
// order-by clauses use, since those clauses commonly mix fields from
// several aliases in one list.
func FieldSQL(d dialect.Adapter, f ast.FieldRef) string {
	ctx := &Context{Dialect: d, CTEColumnPrefix: PerField()}
	return ctx.valueExpr(f)
}
