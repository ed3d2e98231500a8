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

// recursiveChain mirrors chain but for plans whose traversal step is a
// single RecursiveExpand rather than a Join sequence.
type recursiveChain struct {
	scan           *plan.Scan
	preFilter      *plan.Filter
	expand         *plan.RecursiveExpand
	postFilters    []*plan.Filter
	vectorKnn      *plan.VectorKnn
	aggregate      *plan.Aggregate
	sort           *plan.Sort
	limitOffset    *plan.LimitOffset
	project        *plan.Project
}

func flattenRecursive(root plan.Node) (*recursiveChain, error) {
	project, ok := root.(*plan.Project)
	if !ok {
		return nil, typegraph.NewCompilerInvariantError("emit", "recursive emitter requires a project root")
	}
	c := &recursiveChain{project: project}

	var walk func(n plan.Node, seenExpand bool) error
	walk = func(n plan.Node, seenExpand bool) error {
		switch v := n.(type) {
		case *plan.Scan:
			c.scan = v
			return nil
		case *plan.Filter:
			if seenExpand {
				c.preFilter = v
			} else {
				c.postFilters = append(c.postFilters, v)
			}
			return walk(v.Input, seenExpand)
		case *plan.RecursiveExpand:
			c.expand = v
			return walk(v.Input, true)
		case *plan.VectorKnn:
			c.vectorKnn = v
			return walk(v.Input, seenExpand)
		case *plan.Aggregate:
			c.aggregate = v
			return walk(v.Input, seenExpand)
		case *plan.Sort:
			c.sort = v
			return walk(v.Input, seenExpand)
		case *plan.LimitOffset:
			c.limitOffset = v
			return walk(v.Input, seenExpand)
		default:
			return typegraph.NewCompilerInvariantError("emit", fmt.Sprintf("unexpected node %T in recursive plan", n))
		}
	}
	if err := walk(project.Input, false); err != nil {
		return nil, err
	}
	if c.scan == nil || c.expand == nil {
		return nil, typegraph.NewCompilerInvariantError("emit", "recursive plan missing scan or recursive_expand")
	}

	for i, j := 0, len(c.postFilters)-1; i < j; i, j = i+1, j-1 {
		c.postFilters[i], c.postFilters[j] = c.postFilters[j], c.postFilters[i]
	}
	return c, nil
}

// emitRecursive implements spec.md §4.H's recursive emitter: a
// WITH RECURSIVE CTE whose base case is the scan (plus its filter) and
// whose step case joins one more edge/node hop, guarded against cycles
// and an optional maxDepth, via the dialect's path-tracking fragments.
func emitRecursive(d dialect.Adapter, root plan.Node, compileQuery predicate.CompileQueryFunc) (*Result, error) {
	c, err := flattenRecursive(root)
	if err != nil {
		return nil, err
	}

	b := &builder{d: d}

	baseWhere, err := b.recursiveBaseWhere(c)
	if err != nil {
		return nil, err
	}

	idCol := quoted(d, c.scan.Alias) + ".id"
	pathInit := d.RecursivePathInit(idCol)
	depthInit := "0"

	baseSelect := fmt.Sprintf(
		"SELECT %s.id AS node_id, %s.props AS node_props, %s AS path, %s AS depth FROM nodes AS %s WHERE %s",
		quoted(d, c.scan.Alias), quoted(d, c.scan.Alias), pathInit, depthInit, quoted(d, c.scan.Alias), baseWhere,
	)

	nodeKindPlaceholder := b.bindLiteral(c.expand.NodeKind)
	stepWhere := []string{
		fmt.Sprintf("e.kind = %s", b.bindLiteral(c.expand.EdgeKind)),
		d.RecursiveCycleGuard("n.id", "recursive_cte.path"),
	}
	if c.expand.MaxDepth > 0 {
		stepWhere = append(stepWhere, fmt.Sprintf("recursive_cte.depth < %s", b.bindLiteral(c.expand.MaxDepth)))
	}
	nextPath := d.RecursivePathAppend("n.id", "recursive_cte.path")

	stepSelect := fmt.Sprintf(
		"SELECT n.id AS node_id, n.props AS node_props, %s AS path, recursive_cte.depth + 1 AS depth "+
			"FROM recursive_cte JOIN edges AS e ON e.from_id = recursive_cte.node_id "+
			"JOIN nodes AS n ON n.id = e.to_id AND n.kind = %s WHERE %s",
		nextPath, nodeKindPlaceholder, strings.Join(stepWhere, " AND "),
	)

	outerWhere := []string{}
	if c.expand.MinDepth > 0 {
		outerWhere = append(outerWhere, fmt.Sprintf("depth >= %s", b.bindLiteral(c.expand.MinDepth)))
	}
	if c.expand.MaxDepth > 0 {
		outerWhere = append(outerWhere, fmt.Sprintf("depth <= %s", b.bindLiteral(c.expand.MaxDepth)))
	}
	for _, f := range c.postFilters {
		if f.Predicate == nil {
			continue
		}
		sql, perr := b.compilePredicatePerField(f.Predicate, compileQuery)
		if perr != nil {
			return nil, perr
		}
		outerWhere = append(outerWhere, sql)
	}

	projection := buildProjection(d, c.project.Fields)

	var parts []string
	parts = append(parts, fmt.Sprintf("WITH RECURSIVE recursive_cte AS (%s UNION ALL %s)", baseSelect, stepSelect))
	parts = append(parts, "SELECT "+projection+" FROM recursive_cte")
	if len(outerWhere) > 0 {
		parts = append(parts, "WHERE "+strings.Join(outerWhere, " AND "))
	}
	if c.sort != nil && len(c.sort.Terms) > 0 {
		parts = append(parts, orderByClause(c.sort.Terms, func(f ast.FieldRef) string { return predicate.FieldSQL(d, f) }))
	}
	if c.limitOffset != nil {
		if clause := limitOffsetClause(b, c.limitOffset.Limit, c.limitOffset.Offset); clause != "" {
			parts = append(parts, clause)
		}
	}

	return &Result{SQL: strings.Join(parts, " "), Args: b.args}, nil
}

func (b *builder) recursiveBaseWhere(c *recursiveChain) (string, error) {
	var conjuncts []string
	conjuncts = append(conjuncts, b.scanKindFilter(c.scan))
	if c.preFilter != nil {
		if c.preFilter.TemporalFragment != "" {
			conjuncts = append(conjuncts, c.preFilter.TemporalFragment)
		}
		if c.preFilter.Predicate != nil {
			sql, err := b.compilePredicate(c.preFilter.Predicate, c.scan.Alias)
			if err != nil {
				return "", err
			}
			conjuncts = append(conjuncts, sql)
		}
	}
	return strings.Join(conjuncts, " AND "), nil
}
