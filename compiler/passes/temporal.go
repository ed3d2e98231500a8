// Package passes implements the stateless compiler passes of spec.md
// §4.E: pure AST-fragment transforms that run before lowering.
package passes

import (
	"fmt"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
)

// TemporalFragment produces the per-alias SQL boolean fragment that
// restricts row visibility for mode, per spec.md §4.E.1. nowExpr is the
// dialect's "now" expression, used for every mode except asOf, which
// substitutes its own literal timestamp.
func TemporalFragment(d dialect.Adapter, alias string, mode ast.TemporalMode, nowExpr string) (string, error) {
	now := nowExpr
	if mode.Kind == "asOf" {
		if mode.AsOf == "" {
			return "", fmt.Errorf("passes: asOf temporal mode requires a timestamp")
		}
		now = "'" + mode.AsOf + "'"
	}

	deletedAt := d.QuoteIdentifier(alias) + ".deleted_at"
	validFrom := d.QuoteIdentifier(alias) + ".valid_from"
	validTo := d.QuoteIdentifier(alias) + ".valid_to"

	deletedGuard := deletedAt + " IS NULL"
	fromGuard := validFrom + " <= " + now
	toGuard := "(" + validTo + " IS NULL OR " + validTo + " > " + now + ")"

	switch mode.Kind {
	case "current", "":
		return deletedGuard + " AND " + fromGuard + " AND " + toGuard, nil
	case "includeEnded":
		return deletedGuard + " AND " + fromGuard, nil
	case "includeTombstones":
		return fromGuard + " AND " + toGuard, nil
	case "asOf":
		return deletedGuard + " AND " + fromGuard + " AND " + toGuard, nil
	default:
		return "", fmt.Errorf("passes: unknown temporal mode %q", mode.Kind)
	}
}

// TemporalMemo memoizes TemporalFragment per (alias, mode) within a
// single compile, since the same alias/mode pair is consulted from
// multiple lowering steps.
type TemporalMemo struct {
	d       dialect.Adapter
	nowExpr string
	cache   map[string]string
}

// NewTemporalMemo constructs a memo bound to one dialect and "now"
// expression.
func NewTemporalMemo(d dialect.Adapter) *TemporalMemo {
	return &TemporalMemo{d: d, nowExpr: d.CurrentTimestamp(), cache: make(map[string]string)}
}

// Fragment returns the memoized fragment for alias/mode, computing it on
// first use.
func (m *TemporalMemo) Fragment(alias string, mode ast.TemporalMode) (string, error) {
	key := alias + "|" + string(mode.Kind) + "|" + mode.AsOf
	if f, ok := m.cache[key]; ok {
		return f, nil
	}
	f, err := TemporalFragment(m.d, alias, mode, m.nowExpr)
	if err != nil {
		return "", err
	}
	m.cache[key] = f
	return f, nil
}
