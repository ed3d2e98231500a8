// Package profiler implements the optional Query Profiler of spec.md
// §2 row K: it records property access patterns per compiled query and
// suggests indexes once an access crosses a threshold. Grounded on the
// teacher's `dialect/sql/stats.go` QueryStats — the same
// accumulate-with-atomics, snapshot-on-read shape, generalized from
// query-duration counters to per-(graphId, kind, pointer) access
// counters.
package profiler

import (
	"sort"
	"sync"

	"github.com/nicia-ai/typegraph-sub002/compiler/passes"
)

// accessKey identifies one property a query touched, scoped to a
// specific graph and kind so suggestions never cross graph boundaries.
type accessKey struct {
	graphID string
	kind    string
	pointer string
}

// IndexSuggestion recommends a physical index a store may choose to
// create: the graph, kind and JSON pointer (or column name) whose access
// count reached the threshold, together with that count.
type IndexSuggestion struct {
	GraphID string
	Kind    string
	Pointer string
	Count   int64
}

// Profiler accumulates per-(graphId, kind, pointer) access counts
// across compiled queries. A Profiler is explicitly not safe to share
// across stores, per spec.md's Design Notes on global mutable state:
// each attached store instance should own one.
type Profiler struct {
	mu      sync.Mutex
	counts  map[accessKey]int64
	nodeCol map[accessKey]int64
}

// New returns an empty Profiler.
func New() *Profiler {
	return &Profiler{counts: make(map[accessKey]int64), nodeCol: make(map[accessKey]int64)}
}

// RecordRequiredColumns records one query's required-columns analysis
// (see compiler/passes.AnalyzeRequiredColumns) against graphID,
// crediting each referenced JSON pointer to the kind its alias was
// bound to. aliasKinds maps the query's aliases to the kind each scans,
// since RequiredColumns itself is alias-scoped, not kind-scoped.
func (p *Profiler) RecordRequiredColumns(graphID string, aliasKinds map[string]string, required *passes.RequiredColumns) {
	if required == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for alias, pointers := range required.Pointers {
		kind, ok := aliasKinds[alias]
		if !ok {
			continue
		}
		for pointer := range pointers {
			p.counts[accessKey{graphID, kind, pointer}]++
		}
	}
	for alias, columns := range required.Columns {
		kind, ok := aliasKinds[alias]
		if !ok {
			continue
		}
		for column := range columns {
			p.nodeCol[accessKey{graphID, kind, column}]++
		}
	}
}

// SuggestIndexes returns an IndexSuggestion for every (graphId, kind,
// pointer) whose access count has reached threshold or more, sorted by
// descending count then by graph/kind/pointer for determinism.
func (p *Profiler) SuggestIndexes(threshold int64) []IndexSuggestion {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []IndexSuggestion
	for k, count := range p.counts {
		if count >= threshold {
			out = append(out, IndexSuggestion{GraphID: k.graphID, Kind: k.kind, Pointer: k.pointer, Count: count})
		}
	}
	for k, count := range p.nodeCol {
		if count >= threshold {
			out = append(out, IndexSuggestion{GraphID: k.graphID, Kind: k.kind, Pointer: k.pointer, Count: count})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].GraphID != out[j].GraphID {
			return out[i].GraphID < out[j].GraphID
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Pointer < out[j].Pointer
	})
	return out
}

// Reset clears every accumulated count.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts = make(map[accessKey]int64)
	p.nodeCol = make(map[accessKey]int64)
}
