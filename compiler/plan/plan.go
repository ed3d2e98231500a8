// Package plan defines the LogicalPlanNode tagged union (spec.md §3,
// §4.F): the intermediate representation the lowering step produces
// from an ast.QueryAst and the emitters consume to produce SQL. Node
// ids are assigned monotonically within a single lowering invocation
// and carry no meaning across invocations.
package plan

import "github.com/nicia-ai/typegraph-sub002/ast"

// Node is any logical plan node.
type Node interface {
	ID() int
	isNode()
}

// base carries the invocation-scoped id shared by every node kind.
type base struct {
	id int
}

func (b base) ID() int { return b.id }

// IDAllocator assigns monotonically increasing ids within one lowering
// invocation. The zero value is ready to use.
type IDAllocator struct {
	next int
}

// Next returns the next id, starting at 1.
func (a *IDAllocator) Next() int {
	a.next++
	return a.next
}

// Scan reads rows of the kinds in Kinds from a single graph. Lowering
// sets Kinds to the query's start kind alone; IncludeSubClasses is
// recorded on the node but does not add subclasses to Kinds.
type Scan struct {
	base
	Alias             string
	Kinds             []string
	GraphID           string
	IncludeSubClasses bool
}

func (*Scan) isNode() {}

// Filter restricts rows produced by Input using Predicate, which may be
// nil to represent a temporal-only restriction carried separately in
// TemporalFragment.
type Filter struct {
	base
	Input            Node
	Predicate        ast.PredicateExpr
	TemporalFragment string // SQL fragment from the temporal filter pass, or ""
	TargetAlias      string
}

func (*Filter) isNode() {}

// JoinKind distinguishes inner joins (required traversals) from left
// joins (optional traversals).
type JoinKind string

const (
	InnerJoin JoinKind = "inner"
	LeftJoin  JoinKind = "left"
)

// Join extends Input across an edge kind to a new node alias, per one
// ast.Traversal.
type Join struct {
	base
	Input     Node
	Kind      JoinKind
	EdgeKind  string
	EdgeAlias string
	NodeKind  string
	NodeAlias string

	IncludeSubClasses bool
}

func (*Join) isNode() {}

// RecursiveExpand replaces a Join chain when the traversal that
// produced it carries ast.VariableLength. At most one may appear in a
// plan (spec.md §4.E.3).
type RecursiveExpand struct {
	base
	Input       Node
	EdgeKind    string
	EdgeAlias   string
	NodeKind    string
	NodeAlias   string
	MinDepth    int
	MaxDepth    int // 0 means unbounded
	CollectPath bool
	PathAlias   string
	DepthAlias  string
}

func (*RecursiveExpand) isNode() {}

// VectorKnn is surfaced by the vector-predicate-extraction pass from a
// single top-level ast.VectorSimilarity conjunct (spec.md §4.E.2).
type VectorKnn struct {
	base
	Input          Node
	TargetAlias    string
	TargetType     ast.TargetType
	FieldPath      string
	QueryEmbedding []float32
	Metric         ast.VectorMetric
	K              int
}

func (*VectorKnn) isNode() {}

// Aggregate groups Input by GroupBy and optionally filters groups with
// Having, present when the query has a non-empty GroupBy, a Having
// predicate, or an aggregate projection field.
type Aggregate struct {
	base
	Input   Node
	GroupBy []ast.FieldRef
	Having  ast.PredicateExpr
}

func (*Aggregate) isNode() {}

// Sort orders Input by Terms.
type Sort struct {
	base
	Input Node
	Terms []ast.OrderByTerm
}

func (*Sort) isNode() {}

// LimitOffset bounds Input's row count and/or skips a prefix.
type LimitOffset struct {
	base
	Input  Node
	Limit  *int
	Offset *int
}

func (*LimitOffset) isNode() {}

// Project is the terminal node of a standard leaf plan, carrying the
// output projection. CollapsedTraversalAlias is set when every
// traversal in the query collapses into a single CTE rather than a
// chain, an optimization the standard emitter may apply.
type Project struct {
	base
	Input                   Node
	Fields                  []ast.ProjectionField
	CollapsedTraversalAlias string
}

func (*Project) isNode() {}

// SetOp wraps two independently lowered plans with a set operator. The
// root of a set-operation plan is a SetOp, optionally wrapped by a Sort
// and/or LimitOffset (spec.md §3).
type SetOp struct {
	base
	Operator ast.SetOperator
	Left     Node
	Right    Node
}

func (*SetOp) isNode() {}

// Root returns the outermost node of the plan containing n, which is
// always n itself here since lowering builds the tree bottom-up and
// returns its own root — Root exists so callers that only hold an
// interior node mid-construction have a uniform accessor.
func Root(n Node) Node { return n }

// Shape is the structural predicate over a plan (which node kinds are
// present) that gates which emitter may run, per spec.md's Glossary
// entry "Plan shape".
type Shape struct {
	HasSort            bool
	HasLimitOffset     bool
	HasAggregate       bool
	HasVectorKnn       bool
	HasRecursiveExpand bool
	HasSetOp           bool
}

// Inspect walks n and reports which node kinds occur anywhere in the
// tree.
func Inspect(n Node) Shape {
	var s Shape
	var walk func(Node)
	walk = func(n Node) {
		if n == nil {
			return
		}
		switch v := n.(type) {
		case *Scan:
		case *Filter:
			walk(v.Input)
		case *Join:
			walk(v.Input)
		case *RecursiveExpand:
			s.HasRecursiveExpand = true
			walk(v.Input)
		case *VectorKnn:
			s.HasVectorKnn = true
			walk(v.Input)
		case *Aggregate:
			s.HasAggregate = true
			walk(v.Input)
		case *Sort:
			s.HasSort = true
			walk(v.Input)
		case *LimitOffset:
			s.HasLimitOffset = true
			walk(v.Input)
		case *Project:
			walk(v.Input)
		case *SetOp:
			s.HasSetOp = true
			walk(v.Left)
			walk(v.Right)
		}
	}
	walk(n)
	return s
}

// NewScan, NewFilter, ... construct nodes with an allocator-assigned id.
// These constructors exist so lowering never sets base{} fields by hand.

func NewScan(a *IDAllocator, alias string, kinds []string, graphID string, includeSubClasses bool) *Scan {
	return &Scan{base: base{a.Next()}, Alias: alias, Kinds: kinds, GraphID: graphID, IncludeSubClasses: includeSubClasses}
}

func NewFilter(a *IDAllocator, input Node, predicate ast.PredicateExpr, temporalFragment, targetAlias string) *Filter {
	return &Filter{base: base{a.Next()}, Input: input, Predicate: predicate, TemporalFragment: temporalFragment, TargetAlias: targetAlias}
}

func NewJoin(a *IDAllocator, input Node, kind JoinKind, edgeKind, edgeAlias, nodeKind, nodeAlias string, includeSubClasses bool) *Join {
	return &Join{base: base{a.Next()}, Input: input, Kind: kind, EdgeKind: edgeKind, EdgeAlias: edgeAlias, NodeKind: nodeKind, NodeAlias: nodeAlias, IncludeSubClasses: includeSubClasses}
}

func NewRecursiveExpand(a *IDAllocator, input Node, v ast.Traversal) *RecursiveExpand {
	r := &RecursiveExpand{
		base:      base{a.Next()},
		Input:     input,
		EdgeKind:  v.EdgeKind,
		EdgeAlias: v.EdgeAlias,
		NodeKind:  v.NodeKind,
		NodeAlias: v.NodeAlias,
	}
	if v.VariableLength != nil {
		r.MinDepth = v.VariableLength.MinDepth
		r.MaxDepth = v.VariableLength.MaxDepth
		r.CollectPath = v.VariableLength.CollectPath
		r.PathAlias = v.VariableLength.PathAlias
		r.DepthAlias = v.VariableLength.DepthAlias
	}
	return r
}

func NewVectorKnn(a *IDAllocator, input Node, v *ast.VectorSimilarity) *VectorKnn {
	return &VectorKnn{
		base:           base{a.Next()},
		Input:          input,
		TargetAlias:    v.TargetAlias,
		TargetType:     v.TargetType,
		FieldPath:      v.FieldPath,
		QueryEmbedding: v.QueryEmbedding,
		Metric:         v.Metric,
		K:              v.K,
	}
}

func NewAggregate(a *IDAllocator, input Node, groupBy []ast.FieldRef, having ast.PredicateExpr) *Aggregate {
	return &Aggregate{base: base{a.Next()}, Input: input, GroupBy: groupBy, Having: having}
}

func NewSort(a *IDAllocator, input Node, terms []ast.OrderByTerm) *Sort {
	return &Sort{base: base{a.Next()}, Input: input, Terms: terms}
}

func NewLimitOffset(a *IDAllocator, input Node, limit, offset *int) *LimitOffset {
	return &LimitOffset{base: base{a.Next()}, Input: input, Limit: limit, Offset: offset}
}

func NewProject(a *IDAllocator, input Node, fields []ast.ProjectionField, collapsedTraversalAlias string) *Project {
	return &Project{base: base{a.Next()}, Input: input, Fields: fields, CollapsedTraversalAlias: collapsedTraversalAlias}
}

func NewSetOp(a *IDAllocator, operator ast.SetOperator, left, right Node) *SetOp {
	return &SetOp{base: base{a.Next()}, Operator: operator, Left: left, Right: right}
}
