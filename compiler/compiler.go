// Package compiler wires the compiler stages of spec.md §4 together into
// the single entry point described by §3's "Compile(QueryAst) -> SQL +
// params" contract: passes -> lower -> emit, with the predicate
// compiler's EXISTS/IN subqueries routed back through this same
// entry point. Grounded on the teacher's own top-level builder
// assembly (the `ent` generated code's per-query `sqlAll`/`sqlCount`
// entry points that thread a single `dialect.Adapter` plus a
// sub-selector hook through an otherwise stage-separated builder
// pipeline).
package compiler

import (
	"fmt"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/emit"
	"github.com/nicia-ai/typegraph-sub002/compiler/lower"
	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
	"github.com/nicia-ai/typegraph-sub002/compiler/plan"
)

// Result is a compiled statement ready for a driver's QueryContext,
// mirroring package emit's Result so callers never need to import
// emit themselves.
type Result struct {
	SQL  string
	Args []any
}

// Compile lowers q into a LogicalPlan and emits it as SQL for d, per
// spec.md §4.F/§4.H. Each compile call gets its own IDAllocator and
// TemporalMemo: plan-node ids and memoized temporal fragments never
// leak across independent Compile invocations, including the nested
// ones this function issues for EXISTS/IN subqueries.
func Compile(q ast.QueryAst, d dialect.Adapter) (*Result, error) {
	if q == nil {
		return nil, fmt.Errorf("compiler: cannot compile a nil query")
	}

	alloc := &plan.IDAllocator{}
	temporal := passes.NewTemporalMemo(d)

	node, err := lower.Lower(q, d, alloc, temporal)
	if err != nil {
		return nil, fmt.Errorf("compiler: lower: %w", err)
	}

	compileSubquery := func(sub ast.QueryAst) (string, []any, error) {
		r, err := Compile(sub, d)
		if err != nil {
			return "", nil, err
		}
		return r.SQL, r.Args, nil
	}

	result, err := emit.Emit(d, node, compileSubquery)
	if err != nil {
		return nil, fmt.Errorf("compiler: emit: %w", err)
	}

	return &Result{SQL: result.SQL, Args: result.Args}, nil
}
