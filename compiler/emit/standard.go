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

// chain is the flattened, leaf-to-root view of a standard plan's linear
// Input spine, built once so emitStandard can process it in a single
// forward pass.
type chain struct {
	scan        *plan.Scan
	filters     []*plan.Filter
	joins       []*plan.Join
	vectorKnn   *plan.VectorKnn
	aggregate   *plan.Aggregate
	sort        *plan.Sort
	limitOffset *plan.LimitOffset
	project     *plan.Project
}

func flattenStandard(root plan.Node) (*chain, error) {
	project, ok := root.(*plan.Project)
	if !ok {
		return nil, typegraph.NewCompilerInvariantError("emit", "standard emitter requires a project root")
	}
	c := &chain{project: project}

	var walk func(n plan.Node) error
	walk = func(n plan.Node) error {
		switch v := n.(type) {
		case *plan.Scan:
			c.scan = v
			return nil
		case *plan.Filter:
			c.filters = append(c.filters, v)
			return walk(v.Input)
		case *plan.Join:
			c.joins = append(c.joins, v)
			return walk(v.Input)
		case *plan.VectorKnn:
			if c.vectorKnn != nil {
				return typegraph.NewCompilerInvariantError("emit", "at most one vector_knn node is supported")
			}
			c.vectorKnn = v
			return walk(v.Input)
		case *plan.Aggregate:
			c.aggregate = v
			return walk(v.Input)
		case *plan.Sort:
			c.sort = v
			return walk(v.Input)
		case *plan.LimitOffset:
			c.limitOffset = v
			return walk(v.Input)
		default:
			return typegraph.NewCompilerInvariantError("emit", fmt.Sprintf("unexpected node %T in standard plan", n))
		}
	}
	if err := walk(project.Input); err != nil {
		return nil, err
	}
	if c.scan == nil {
		return nil, typegraph.NewCompilerInvariantError("emit", "standard plan has no scan")
	}

	// joins/filters were appended root-ward; reverse to leaf-to-root
	// (scan-ward) order for sequential FROM-clause construction.
	reverseFilters(c.filters)
	reverseJoins(c.joins)
	return c, nil
}

func reverseFilters(s []*plan.Filter) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseJoins(s []*plan.Join) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func emitStandard(d dialect.Adapter, root plan.Node, compileQuery predicate.CompileQueryFunc) (*Result, error) {
	c, err := flattenStandard(root)
	if err != nil {
		return nil, err
	}

	b := &builder{d: d}

	fromClause, err := b.buildFromClause(c)
	if err != nil {
		return nil, err
	}

	whereConjuncts, err := b.buildWhereConjuncts(c)
	if err != nil {
		return nil, err
	}

	projection := buildProjection(d, c.project.Fields)

	var sqlParts []string
	sqlParts = append(sqlParts, "SELECT "+projection)
	sqlParts = append(sqlParts, "FROM "+fromClause)
	if len(whereConjuncts) > 0 {
		sqlParts = append(sqlParts, "WHERE "+strings.Join(whereConjuncts, " AND "))
	}

	if c.aggregate != nil && len(c.aggregate.GroupBy) > 0 {
		groupCols := make([]string, 0, len(c.aggregate.GroupBy))
		for _, f := range c.aggregate.GroupBy {
			groupCols = append(groupCols, predicate.FieldSQL(d, f))
		}
		sqlParts = append(sqlParts, "GROUP BY "+strings.Join(groupCols, ", "))
	}
	if c.aggregate != nil && c.aggregate.Having != nil {
		having, herr := b.compilePredicatePerField(c.aggregate.Having, compileQuery)
		if herr != nil {
			return nil, herr
		}
		sqlParts = append(sqlParts, "HAVING "+having)
	}

	if orderBy := c.orderBy(); len(orderBy) > 0 {
		sqlParts = append(sqlParts, orderByClause(orderBy, func(f ast.FieldRef) string { return predicate.FieldSQL(d, f) }))
	} else if c.vectorKnn != nil {
		sqlParts = append(sqlParts, "ORDER BY "+vectorDistanceExpr(b, c.vectorKnn)+" ASC")
	}

	if c.limitOffset != nil {
		if clause := limitOffsetClause(b, c.limitOffset.Limit, c.limitOffset.Offset); clause != "" {
			sqlParts = append(sqlParts, clause)
		}
	}

	return &Result{SQL: strings.Join(sqlParts, " "), Args: b.args}, nil
}

func (c *chain) orderBy() []ast.OrderByTerm {
	if c.sort == nil {
		return nil
	}
	return c.sort.Terms
}

func vectorDistanceExpr(b *builder, v *plan.VectorKnn) string {
	column := v.TargetAlias + ".embedding"
	placeholder := b.bindLiteral(v.QueryEmbedding)
	return b.d.VectorDistance(column, placeholder, toDialectMetric(v.Metric))
}

func toDialectMetric(m ast.VectorMetric) dialect.VectorMetric {
	switch m {
	case ast.MetricL2:
		return dialect.MetricL2
	case ast.MetricInnerProduct:
		return dialect.MetricInnerProduct
	default:
		return dialect.MetricCosine
	}
}

// buildFromClause renders the scan's base table plus one pair of JOINs
// per traversal (edge table then node table), tracking the previous
// node alias so each step's ON clause can reference it.
func (b *builder) buildFromClause(c *chain) (string, error) {
	var sb strings.Builder
	sb.WriteString("nodes AS " + quoted(b.d, c.scan.Alias))

	prevNodeAlias := c.scan.Alias
	for _, j := range c.joins {
		keyword := "INNER JOIN"
		if j.Kind == plan.LeftJoin {
			keyword = "LEFT JOIN"
		}
		sb.WriteString(fmt.Sprintf(
			" %s edges AS %s ON %s.from_id = %s.id AND %s.kind = %s",
			keyword, quoted(b.d, j.EdgeAlias), quoted(b.d, j.EdgeAlias), quoted(b.d, prevNodeAlias),
			quoted(b.d, j.EdgeAlias), b.bindLiteral(j.EdgeKind),
		))
		sb.WriteString(fmt.Sprintf(
			" %s nodes AS %s ON %s.id = %s.to_id AND %s.kind = %s",
			keyword, quoted(b.d, j.NodeAlias), quoted(b.d, j.NodeAlias), quoted(b.d, j.EdgeAlias),
			quoted(b.d, j.NodeAlias), b.bindLiteral(j.NodeKind),
		))
		prevNodeAlias = j.NodeAlias
	}
	return sb.String(), nil
}

func (b *builder) buildWhereConjuncts(c *chain) ([]string, error) {
	var conjuncts []string

	conjuncts = append(conjuncts, b.scanKindFilter(c.scan))
	// Traversal aliases' kind filters are already applied in the JOIN ON
	// clause (buildFromClause), so only the scan alias needs one here.

	for _, f := range c.filters {
		if f.TemporalFragment != "" {
			conjuncts = append(conjuncts, f.TemporalFragment)
		}
		if f.Predicate != nil {
			sql, err := b.compilePredicate(f.Predicate, f.TargetAlias)
			if err != nil {
				return nil, err
			}
			conjuncts = append(conjuncts, sql)
		}
	}

	return conjuncts, nil
}

func (b *builder) scanKindFilter(s *plan.Scan) string {
	alias := quoted(b.d, s.Alias)
	placeholders := make([]string, 0, len(s.Kinds))
	for _, k := range s.Kinds {
		placeholders = append(placeholders, b.bindLiteral(k))
	}
	graphPlaceholder := b.bindLiteral(s.GraphID)
	return fmt.Sprintf("%s.kind IN (%s) AND %s.graph_id = %s",
		alias, strings.Join(placeholders, ", "), alias, graphPlaceholder)
}

func buildProjection(d dialect.Adapter, fields []ast.ProjectionField) string {
	if len(fields) == 0 {
		return "*"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		expr := predicate.FieldSQL(d, f.Field)
		if f.Aggregate != ast.AggregateNone {
			expr = aggregateExpr(f.Aggregate, expr)
		}
		parts = append(parts, expr+" AS "+d.QuoteIdentifier(f.Alias))
	}
	return strings.Join(parts, ", ")
}

func aggregateExpr(fn ast.AggregateFunc, inner string) string {
	switch fn {
	case ast.AggregateCount:
		return "COUNT(*)"
	case ast.AggregateCountDistinct:
		return "COUNT(DISTINCT " + inner + ")"
	case ast.AggregateSum:
		return "SUM(" + inner + ")"
	case ast.AggregateAvg:
		return "AVG(" + inner + ")"
	case ast.AggregateMin:
		return "MIN(" + inner + ")"
	case ast.AggregateMax:
		return "MAX(" + inner + ")"
	default:
		return inner
	}
}
