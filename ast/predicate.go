package ast

// PredicateExpr is a tagged union over every predicate shape the
// compiler understands: comparisons, string/null/between/array/object
// operators, aggregate comparisons, subquery predicates, vector
// similarity, and the logical connectives and/or/not.
type PredicateExpr interface {
	isPredicateExpr()
}

// ComparisonOp enumerates simple value comparisons.
type ComparisonOp string

const (
	OpEQ    ComparisonOp = "eq"
	OpNEQ   ComparisonOp = "neq"
	OpGT    ComparisonOp = "gt"
	OpGTE   ComparisonOp = "gte"
	OpLT    ComparisonOp = "lt"
	OpLTE   ComparisonOp = "lte"
	OpIn    ComparisonOp = "in"
	OpNotIn ComparisonOp = "notIn"
)

// Comparison compares a field against a literal value or, for
// in/notIn, a homogeneous literal array.
type Comparison struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Op          ComparisonOp
	Value       any   // scalar, unused for in/notIn
	Values      []any // used for in/notIn; must be homogeneous in ValueType
}

func (*Comparison) isPredicateExpr() {}

// StringOp enumerates string-specific predicate operators.
type StringOp string

const (
	OpContains   StringOp = "contains"
	OpStartsWith StringOp = "startsWith"
	OpEndsWith   StringOp = "endsWith"
	OpLike       StringOp = "like"
	OpILike      StringOp = "ilike"
)

// StringPredicate is a string-typed field predicate.
type StringPredicate struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Op          StringOp
	Value       string
}

func (*StringPredicate) isPredicateExpr() {}

// NullOp enumerates null-check operators.
type NullOp string

const (
	OpIsNull    NullOp = "isNull"
	OpIsNotNull NullOp = "isNotNull"
)

// NullCheck tests whether a field is null.
type NullCheck struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Op          NullOp
}

func (*NullCheck) isPredicateExpr() {}

// Between tests whether a field's value lies within [Low, High] inclusive.
type Between struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Low, High   any
}

func (*Between) isPredicateExpr() {}

// ArrayOp enumerates array-valued field predicate operators.
type ArrayOp string

const (
	OpIsEmpty     ArrayOp = "isEmpty"
	OpIsNotEmpty  ArrayOp = "isNotEmpty"
	OpLengthEq    ArrayOp = "lengthEq"
	OpLengthGt    ArrayOp = "lengthGt"
	OpLengthGte   ArrayOp = "lengthGte"
	OpLengthLt    ArrayOp = "lengthLt"
	OpLengthLte   ArrayOp = "lengthLte"
	OpArrayContains    ArrayOp = "contains"
	OpContainsAll ArrayOp = "containsAll"
	OpContainsAny ArrayOp = "containsAny"
)

// ArrayPredicate is a predicate over a JSON-array-valued field.
type ArrayPredicate struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Op          ArrayOp
	Length      int   // used by lengthX operators
	Values      []any // used by contains/containsAll/containsAny
}

func (*ArrayPredicate) isPredicateExpr() {}

// ObjectOp enumerates object-valued field predicate operators.
type ObjectOp string

const (
	OpHasKey         ObjectOp = "hasKey"
	OpHasPath        ObjectOp = "hasPath"
	OpPathEquals     ObjectOp = "pathEquals"
	OpPathContains   ObjectOp = "pathContains"
	OpPathIsNull     ObjectOp = "pathIsNull"
	OpPathIsNotNull  ObjectOp = "pathIsNotNull"
)

// ObjectPredicate is a predicate over a JSON-object-valued field,
// addressed by a nested JSON Pointer relative to Field.
type ObjectPredicate struct {
	TargetAlias string
	TargetType  TargetType
	Field       FieldRef
	Op          ObjectOp
	Key         string // used by hasKey
	Path        string // JSON pointer relative to Field, used by hasPath/pathX
	Value       any    // used by pathEquals/pathContains
}

func (*ObjectPredicate) isPredicateExpr() {}

// AggregateComparisonOp enumerates comparisons applicable to aggregate
// results (used in HAVING).
type AggregateComparisonOp = ComparisonOp

// AggregateComparison compares an aggregate function's result against a
// literal value, for use in HAVING clauses.
type AggregateComparison struct {
	Aggregate AggregateFunc
	Field     FieldRef // ignored when Aggregate == AggregateCount
	Op        AggregateComparisonOp
	Value     any
}

func (*AggregateComparison) isPredicateExpr() {}

// SubqueryKind enumerates the two subquery predicate shapes.
type SubqueryKind string

const (
	SubqueryExists    SubqueryKind = "exists"
	SubqueryNotExists SubqueryKind = "notExists"
	SubqueryIn        SubqueryKind = "in"
	SubqueryNotIn     SubqueryKind = "notIn"
)

// SubqueryPredicate is an EXISTS/NOT EXISTS/IN/NOT IN predicate carrying
// a nested QueryAst. IN/NOT IN additionally correlate the outer Field
// against the subquery's single projected scalar column.
type SubqueryPredicate struct {
	Kind     SubqueryKind
	Field    FieldRef // used by in/notIn; ignored by exists/notExists
	Subquery QueryAst
}

func (*SubqueryPredicate) isPredicateExpr() {}

// VectorMetric enumerates supported vector distance/similarity metrics.
type VectorMetric string

const (
	MetricCosine       VectorMetric = "cosine"
	MetricL2           VectorMetric = "l2"
	MetricInnerProduct VectorMetric = "inner_product"
)

// VectorSimilarity predicates a node/edge's embedding field against a
// query embedding. It may not appear nested under Or or Not (spec.md
// §4.D); the vector-predicate-extraction pass enforces and then lifts a
// top-level conjunct into a VectorKnn plan node.
type VectorSimilarity struct {
	TargetAlias    string
	TargetType     TargetType
	FieldPath      string // JSON pointer identifying the embedding field
	QueryEmbedding []float32
	Metric         VectorMetric
	K              int // requested nearest-neighbor count
}

func (*VectorSimilarity) isPredicateExpr() {}

// And is the conjunction of its operands.
type And struct {
	Operands []PredicateExpr
}

func (*And) isPredicateExpr() {}

// Or is the disjunction of its operands.
type Or struct {
	Operands []PredicateExpr
}

func (*Or) isPredicateExpr() {}

// Not negates its operand.
type Not struct {
	Operand PredicateExpr
}

func (*Not) isPredicateExpr() {}
