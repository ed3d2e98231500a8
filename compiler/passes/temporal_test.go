package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002/ast"
	"github.com/nicia-ai/typegraph-sub002/compiler/dialect"
	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
)

func TestTemporalFragmentCurrent(t *testing.T) {
	d, err := dialect.For(dialect.SQLite)
	require.NoError(t, err)

	frag, err := passes.TemporalFragment(d, "o", ast.TemporalMode{Kind: "current"}, "strftime('now')")
	require.NoError(t, err)
	assert.Contains(t, frag, `"o".deleted_at IS NULL`)
	assert.Contains(t, frag, `"o".valid_from <= strftime('now')`)
	assert.Contains(t, frag, `"o".valid_to IS NULL OR "o".valid_to > strftime('now')`)
}

func TestTemporalFragmentIncludeEndedDropsValidToGuard(t *testing.T) {
	d, _ := dialect.For(dialect.SQLite)
	frag, err := passes.TemporalFragment(d, "o", ast.TemporalMode{Kind: "includeEnded"}, "NOW")
	require.NoError(t, err)
	assert.NotContains(t, frag, "valid_to")
	assert.Contains(t, frag, "deleted_at IS NULL")
}

func TestTemporalFragmentIncludeTombstonesDropsDeletedGuard(t *testing.T) {
	d, _ := dialect.For(dialect.SQLite)
	frag, err := passes.TemporalFragment(d, "o", ast.TemporalMode{Kind: "includeTombstones"}, "NOW")
	require.NoError(t, err)
	assert.NotContains(t, frag, "deleted_at")
	assert.Contains(t, frag, "valid_to")
}

func TestTemporalFragmentAsOfSubstitutesTimestamp(t *testing.T) {
	d, _ := dialect.For(dialect.Postgres)
	frag, err := passes.TemporalFragment(d, "o", ast.TemporalMode{Kind: "asOf", AsOf: "2026-01-01T00:00:00Z"}, "NOW")
	require.NoError(t, err)
	assert.Contains(t, frag, "'2026-01-01T00:00:00Z'")
	assert.NotContains(t, frag, "NOW")
}

func TestTemporalFragmentAsOfRequiresTimestamp(t *testing.T) {
	d, _ := dialect.For(dialect.Postgres)
	_, err := passes.TemporalFragment(d, "o", ast.TemporalMode{Kind: "asOf"}, "NOW")
	require.Error(t, err)
}

func TestTemporalMemoCachesFragments(t *testing.T) {
	d, _ := dialect.For(dialect.SQLite)
	memo := passes.NewTemporalMemo(d)

	f1, err := memo.Fragment("o", ast.TemporalMode{Kind: "current"})
	require.NoError(t, err)
	f2, err := memo.Fragment("o", ast.TemporalMode{Kind: "current"})
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}
