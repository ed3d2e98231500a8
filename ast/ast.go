// Package ast defines the typed query AST the compiler consumes: a
// tagged union over leaf queries and set operations, predicate
// expressions, traversals, projections and ordering. The fluent builder
// DSL that constructs values of these types lives outside this module;
// ast only defines the shapes and their static invariants.
package ast

// TargetType discriminates which kind of alias a predicate targets.
type TargetType string

const (
	TargetNode TargetType = "node"
	TargetEdge TargetType = "edge"
)

// ValueType is the declared type of a literal or field value used in
// type-coercion and in/notIn homogeneity checks.
type ValueType string

const (
	ValueString  ValueType = "string"
	ValueNumber  ValueType = "number"
	ValueBoolean ValueType = "boolean"
	ValueDate    ValueType = "date"
	ValueObject  ValueType = "object"
	ValueArray   ValueType = "array"
)

// QueryAst is the root of a compilable query: either a leaf Query or a
// SetOperation combining two QueryAst values.
type QueryAst interface {
	isQueryAst()
}

// Traversal extends a query from the previous alias across an edge kind
// to a new node alias. Optional traversals lower to LEFT JOIN;
// VariableLength, when set, requests a RecursiveExpand instead of a
// standard join chain (spec.md §4.F — at most one per query).
type Traversal struct {
	EdgeKind      string
	EdgeAlias     string
	NodeKind      string
	NodeAlias     string
	Optional      bool
	VariableLength *VariableLength

	// IncludeSubClasses is copied onto the lowered plan.Join. Lowering and
	// emission do not expand NodeKind by its subclass closure: the emitted
	// target-kind filter matches NodeKind alone.
	IncludeSubClasses bool
}

// VariableLength configures a recursive traversal.
type VariableLength struct {
	MinDepth    int
	MaxDepth    int // 0 means unbounded
	CollectPath bool
	PathAlias   string
	DepthAlias  string
}

// OrderDirection is the sort direction for an OrderBy term.
type OrderDirection string

const (
	Ascending  OrderDirection = "asc"
	Descending OrderDirection = "desc"
)

// FieldRef addresses a single value on a row: either a physical column
// (Pointer == "") or a JSON Pointer into props.
type FieldRef struct {
	Alias     string
	Column    string // e.g. "id", "created_at"; empty when Pointer addresses props
	Pointer   string // RFC 6901 pointer into props; empty when Column is a physical column
	ValueType ValueType
}

// OrderByTerm is one ORDER BY clause element.
type OrderByTerm struct {
	Field     FieldRef
	Direction OrderDirection
}

// ProjectionField is one output column of a query.
type ProjectionField struct {
	Alias  string // output name
	Field  FieldRef
	Aggregate AggregateFunc // empty unless this field is an aggregate
}

// AggregateFunc enumerates supported aggregate functions.
type AggregateFunc string

const (
	AggregateNone          AggregateFunc = ""
	AggregateCount         AggregateFunc = "count"
	AggregateCountDistinct AggregateFunc = "countDistinct"
	AggregateSum           AggregateFunc = "sum"
	AggregateAvg           AggregateFunc = "avg"
	AggregateMin           AggregateFunc = "min"
	AggregateMax           AggregateFunc = "max"
)

// Query is a leaf QueryAst: a start alias, zero or more traversals,
// predicates, and the clauses that shape the final projection.
type Query struct {
	GraphID         string
	StartAlias      string
	StartKind       string
	IncludeSubClasses bool

	Traversals []Traversal
	Predicates PredicateExpr // nil means no filtering beyond temporal mode

	Projection      []ProjectionField
	SelectiveFields []FieldRef // optional column-pruning hint, see RequiredColumns pass

	GroupBy []FieldRef
	Having  PredicateExpr

	OrderBy []OrderByTerm
	Limit   *int
	Offset  *int

	TemporalMode TemporalMode
}

func (*Query) isQueryAst() {}

// TemporalMode mirrors typegraph.TemporalMode but is carried on the AST
// so the compiler never needs the root package as an import for leaf
// queries built directly against this package in tests.
type TemporalMode struct {
	Kind string // "current" | "includeEnded" | "includeTombstones" | "asOf"
	AsOf string // ISO-8601 UTC, only meaningful when Kind == "asOf"
}

// SetOperator enumerates the supported set operations.
type SetOperator string

const (
	Union     SetOperator = "union"
	UnionAll  SetOperator = "unionAll"
	Intersect SetOperator = "intersect"
	Except    SetOperator = "except"
)

// SetOperation combines two QueryAst trees. Per spec.md §3 invariant
// (iv), OrderBy references the leftmost leaf's output projection names.
type SetOperation struct {
	Operator SetOperator
	Left     QueryAst
	Right    QueryAst

	OrderBy []OrderByTerm
	Limit   *int
	Offset  *int
}

func (*SetOperation) isQueryAst() {}

// LeftmostLeaf walks Left repeatedly until it finds a *Query, which is
// the leaf whose projection names govern a set operation's output
// column names (spec.md §3 invariant iv, §4.H).
func LeftmostLeaf(q QueryAst) *Query {
	for {
		switch v := q.(type) {
		case *Query:
			return v
		case *SetOperation:
			q = v.Left
		default:
			return nil
		}
	}
}
