package predicate

import (
	"strings"

	"github.com/nicia-ai/typegraph-sub002/ast"
)

// columnName returns the short name a FieldRef's output column is known
// by: its physical column name, or for a JSON-pointer field, a name
// synthesized by sanitizing the pointer into an identifier-safe suffix.
func columnName(f ast.FieldRef) string {
	if f.Column != "" {
		return f.Column
	}
	name := strings.TrimPrefix(f.Pointer, "/")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}

// valueExpr returns the SQL expression reading f's value, honoring
// ctx.CTEColumnPrefix's addressing mode and, for JSON-pointer fields,
// the dialect's typed extraction for f.ValueType.
func (c *Context) valueExpr(f ast.FieldRef) string {
	if f.Pointer == "" {
		return c.physicalColumnExpr(f)
	}
	return c.jsonExtractExpr(f)
}

func (c *Context) physicalColumnExpr(f ast.FieldRef) string {
	if !c.CTEColumnPrefix.defined {
		return "cte_" + f.Alias + "." + f.Alias + "_" + columnName(f)
	}
	if c.CTEColumnPrefix.perField {
		return f.Alias + "." + columnName(f)
	}
	if c.CTEColumnPrefix.value == "" {
		return columnName(f)
	}
	return c.CTEColumnPrefix.value + "." + columnName(f)
}

// jsonColumnRef returns the "props" column reference a JSON pointer
// extracts from, under the current addressing mode.
func (c *Context) jsonColumnRef(alias string) string {
	if !c.CTEColumnPrefix.defined {
		return "cte_" + alias + "." + alias + "_props"
	}
	if c.CTEColumnPrefix.perField {
		return alias + ".props"
	}
	if c.CTEColumnPrefix.value == "" {
		return "props"
	}
	return c.CTEColumnPrefix.value + ".props"
}

func (c *Context) jsonExtractExpr(f ast.FieldRef) string {
	column := c.jsonColumnRef(f.Alias)
	switch f.ValueType {
	case ast.ValueNumber:
		return c.Dialect.JSONExtractNumber(column, f.Pointer)
	case ast.ValueBoolean:
		return c.Dialect.JSONExtractBoolean(column, f.Pointer)
	default:
		// strings, dates, and unknown types fall back to text extraction,
		// per spec.md §4.I.
		return c.Dialect.JSONExtractText(column, f.Pointer)
	}
}
