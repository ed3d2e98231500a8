package predicate

import (
	"fmt"
	"strings"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002"
	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// builder accumulates bind parameters while a predicate tree is walked,
// assigning each one the dialect's placeholder for its eventual
// 1-based position.
type builder struct {
	ctx  *Context
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.ctx.Dialect.Placeholder(len(b.args))
}

// Compile translates predicate into a SQL boolean expression and its
// ordered bind parameters, per spec.md §4.I. A nil predicate compiles
// to the literal "1=1".
func Compile(ctx *Context, expr ast.PredicateExpr) (string, []any, error) {
	b := &builder{ctx: ctx}
	sql, err := b.compile(expr)
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}

func (b *builder) compile(expr ast.PredicateExpr) (string, error) {
	switch p := expr.(type) {
	case nil:
		return "1=1", nil
	case *ast.Comparison:
		return b.compileComparison(p)
	case *ast.StringPredicate:
		return b.compileString(p)
	case *ast.NullCheck:
		return b.compileNullCheck(p)
	case *ast.Between:
		return b.compileBetween(p)
	case *ast.ArrayPredicate:
		return b.compileArray(p)
	case *ast.ObjectPredicate:
		return b.compileObject(p)
	case *ast.AggregateComparison:
		return b.compileAggregateComparison(p)
	case *ast.SubqueryPredicate:
		return b.compileSubquery(p)
	case *ast.VectorSimilarity:
		return "", typegraph.NewCompilerInvariantError("predicate",
			"vector_similarity must be extracted into a VectorKnn plan node before predicate compilation")
	case *ast.And:
		return b.compileConnective(p.Operands, "AND")
	case *ast.Or:
		return b.compileConnective(p.Operands, "OR")
	case *ast.Not:
		inner, err := b.compile(p.Operand)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown predicate type %T", expr))
	}
}

func (b *builder) compileConnective(operands []ast.PredicateExpr, op string) (string, error) {
	if len(operands) == 0 {
		if op == "AND" {
			return "1=1", nil
		}
		return "1=0", nil
	}
	parts := make([]string, 0, len(operands))
	for _, o := range operands {
		s, err := b.compile(o)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}
	return strings.Join(parts, " "+op+" "), nil
}

func (b *builder) compileComparison(p *ast.Comparison) (string, error) {
	if p.Field.ValueType == ast.ValueObject || p.Field.ValueType == ast.ValueArray {
		return "", typegraph.NewUnsupportedPredicateError(
			"comparisons against JSON object/array fields are not supported", "comparison")
	}
	col := b.ctx.valueExpr(p.Field)

	switch p.Op {
	case ast.OpIn:
		return b.compileInList(col, p.Values, false)
	case ast.OpNotIn:
		return b.compileInList(col, p.Values, true)
	default:
		return col + " " + comparisonOperator(p.Op) + " " + b.bind(p.Value), nil
	}
}

func comparisonOperator(op ast.ComparisonOp) string {
	switch op {
	case ast.OpEQ:
		return "="
	case ast.OpNEQ:
		return "<>"
	case ast.OpGT:
		return ">"
	case ast.OpGTE:
		return ">="
	case ast.OpLT:
		return "<"
	case ast.OpLTE:
		return "<="
	default:
		return "="
	}
}

// compileInList implements spec.md §4.I's empty-array short-circuits:
// "in []" compiles to 1=0, "notIn []" to 1=1.
func (b *builder) compileInList(col string, values []any, negate bool) (string, error) {
	if len(values) == 0 {
		if negate {
			return "1=1", nil
		}
		return "1=0", nil
	}
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		placeholders = append(placeholders, b.bind(v))
	}
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	return col + " " + op + " (" + strings.Join(placeholders, ", ") + ")", nil
}

func (b *builder) compileString(p *ast.StringPredicate) (string, error) {
	col := b.ctx.valueExpr(p.Field)

	switch p.Op {
	case ast.OpLike:
		return col + " LIKE " + b.bind(p.Value), nil
	case ast.OpILike:
		return b.compileILike(col, p.Value), nil
	case ast.OpContains:
		return col + " LIKE " + b.bind("%"+escapeLike(p.Value)+"%") + " ESCAPE '\\'", nil
	case ast.OpStartsWith:
		return col + " LIKE " + b.bind(escapeLike(p.Value)+"%") + " ESCAPE '\\'", nil
	case ast.OpEndsWith:
		return col + " LIKE " + b.bind("%"+escapeLike(p.Value)) + " ESCAPE '\\'", nil
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown string op %q", p.Op))
	}
}

// compileILike implements spec.md §4.I's dialect split: SQLite has no
// native ILIKE, so the column is wrapped in LOWER() and the pattern is
// case-folded with golang.org/x/text/cases before it is bound, while
// PostgreSQL's adapter returns ILIKE directly.
func (b *builder) compileILike(col, pattern string) string {
	if b.ctx.Dialect.Name() == "sqlite" {
		folded := foldCaser.String(pattern)
		placeholder := b.bind(folded)
		return "LOWER(" + col + ") LIKE " + placeholder
	}
	placeholder := b.bind(pattern)
	return b.ctx.Dialect.ILike(col, placeholder)
}

// escapeLike escapes LIKE metacharacters % and _ with a backslash, per
// spec.md §4.I.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (b *builder) compileNullCheck(p *ast.NullCheck) (string, error) {
	col := b.ctx.valueExpr(p.Field)
	if p.Op == ast.OpIsNull {
		return col + " IS NULL", nil
	}
	return col + " IS NOT NULL", nil
}

func (b *builder) compileBetween(p *ast.Between) (string, error) {
	col := b.ctx.valueExpr(p.Field)
	low := b.bind(p.Low)
	high := b.bind(p.High)
	return col + " BETWEEN " + low + " AND " + high, nil
}

func (b *builder) compileArray(p *ast.ArrayPredicate) (string, error) {
	col := b.ctx.valueExpr(p.Field)
	lengthExpr := b.ctx.Dialect.JSONArrayLength(b.ctx.jsonColumnRef(p.Field.Alias), p.Field.Pointer)

	switch p.Op {
	case ast.OpIsEmpty:
		return lengthExpr + " = 0", nil
	case ast.OpIsNotEmpty:
		return lengthExpr + " > 0", nil
	case ast.OpLengthEq:
		return lengthExpr + " = " + b.bind(p.Length), nil
	case ast.OpLengthGt:
		return lengthExpr + " > " + b.bind(p.Length), nil
	case ast.OpLengthGte:
		return lengthExpr + " >= " + b.bind(p.Length), nil
	case ast.OpLengthLt:
		return lengthExpr + " < " + b.bind(p.Length), nil
	case ast.OpLengthLte:
		return lengthExpr + " <= " + b.bind(p.Length), nil
	case ast.OpArrayContains:
		return b.compileArrayContainsAny(p, col, p.Values)
	case ast.OpContainsAll:
		return b.compileContainsAll(p, col)
	case ast.OpContainsAny:
		return b.compileArrayContainsAny(p, col, p.Values)
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown array op %q", p.Op))
	}
}

// compileArrayContainsAny implements contains/containsAny, both of
// which succeed when at least one of Values appears in the array. Per
// spec.md §4.I, no values compiles to 1=0.
func (b *builder) compileArrayContainsAny(p *ast.ArrayPredicate, col string, values []any) (string, error) {
	if len(values) == 0 {
		return "1=0", nil
	}
	each := b.ctx.Dialect.JSONEach(b.ctx.jsonColumnRef(p.Field.Alias), p.Field.Pointer)
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, "value = "+b.bind(v))
	}
	return "EXISTS (SELECT 1 FROM " + each + " WHERE " + strings.Join(parts, " OR ") + ")", nil
}

// compileContainsAll implements containsAll, which requires every value
// to appear. Per spec.md §4.I, an empty Values list compiles to 1=1.
func (b *builder) compileContainsAll(p *ast.ArrayPredicate, col string) (string, error) {
	if len(p.Values) == 0 {
		return "1=1", nil
	}
	each := b.ctx.Dialect.JSONEach(b.ctx.jsonColumnRef(p.Field.Alias), p.Field.Pointer)
	parts := make([]string, 0, len(p.Values))
	for _, v := range p.Values {
		parts = append(parts, "EXISTS (SELECT 1 FROM "+each+" WHERE value = "+b.bind(v)+")")
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

func (b *builder) compileObject(p *ast.ObjectPredicate) (string, error) {
	nested := ast.FieldRef{Alias: p.Field.Alias, Pointer: joinPointer(p.Field.Pointer, p.Path)}

	switch p.Op {
	case ast.OpHasKey:
		keyPointer := ast.FieldRef{Alias: p.Field.Alias, Pointer: joinPointer(p.Field.Pointer, "/"+p.Key)}
		typeExpr := b.ctx.Dialect.JSONType(b.ctx.jsonColumnRef(p.Field.Alias), keyPointer.Pointer)
		return typeExpr + " IS NOT NULL", nil
	case ast.OpHasPath:
		typeExpr := b.ctx.Dialect.JSONType(b.ctx.jsonColumnRef(p.Field.Alias), nested.Pointer)
		return typeExpr + " IS NOT NULL", nil
	case ast.OpPathEquals:
		expr := b.ctx.jsonExtractExpr(nested)
		return expr + " = " + b.bind(p.Value), nil
	case ast.OpPathContains:
		expr := b.ctx.jsonExtractExpr(nested)
		return expr + " LIKE " + b.bind("%"+escapeLike(fmt.Sprint(p.Value))+"%") + " ESCAPE '\\'", nil
	case ast.OpPathIsNull:
		expr := b.ctx.jsonExtractExpr(nested)
		return expr + " IS NULL", nil
	case ast.OpPathIsNotNull:
		expr := b.ctx.jsonExtractExpr(nested)
		return expr + " IS NOT NULL", nil
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown object op %q", p.Op))
	}
}

// joinPointer concatenates a base RFC 6901 pointer and a relative
// pointer, both possibly empty.
func joinPointer(base, rel string) string {
	if base == "" {
		return rel
	}
	if rel == "" {
		return base
	}
	return base + rel
}

func (b *builder) compileAggregateComparison(p *ast.AggregateComparison) (string, error) {
	var expr string
	switch p.Aggregate {
	case ast.AggregateCount:
		expr = "COUNT(*)"
	case ast.AggregateCountDistinct:
		expr = "COUNT(DISTINCT " + b.ctx.valueExpr(p.Field) + ")"
	case ast.AggregateSum:
		expr = "SUM(" + b.ctx.valueExpr(p.Field) + ")"
	case ast.AggregateAvg:
		expr = "AVG(" + b.ctx.valueExpr(p.Field) + ")"
	case ast.AggregateMin:
		expr = "MIN(" + b.ctx.valueExpr(p.Field) + ")"
	case ast.AggregateMax:
		expr = "MAX(" + b.ctx.valueExpr(p.Field) + ")"
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown aggregate %q", p.Aggregate))
	}
	return expr + " " + comparisonOperator(p.Op) + " " + b.bind(p.Value), nil
}

func (b *builder) compileSubquery(p *ast.SubqueryPredicate) (string, error) {
	if b.ctx.CompileQuery == nil {
		return "", typegraph.NewCompilerInvariantError("predicate", "subquery predicate requires a CompileQuery callback")
	}
	sql, args, err := b.ctx.CompileQuery(p.Subquery)
	if err != nil {
		return "", err
	}
	b.args = append(b.args, args...)

	switch p.Kind {
	case ast.SubqueryExists:
		return "EXISTS (" + sql + ")", nil
	case ast.SubqueryNotExists:
		return "NOT EXISTS (" + sql + ")", nil
	case ast.SubqueryIn:
		col := b.ctx.valueExpr(p.Field)
		return col + " IN (" + sql + ")", nil
	case ast.SubqueryNotIn:
		col := b.ctx.valueExpr(p.Field)
		return col + " NOT IN (" + sql + ")", nil
	default:
		return "", typegraph.NewCompilerInvariantError("predicate", fmt.Sprintf("unknown subquery kind %q", p.Kind))
	}
}
