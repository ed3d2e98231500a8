// Package ontology computes transitive closures over directed relations
// between kind names, giving O(1) membership checks for subclass,
// broader, part-of, equivalence and disjointness reasoning.
package ontology

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Relation is one directed (from, to) pair in an input relation set.
type Relation struct {
	From string
	To   string
}

// Closure maps each node reachable in the relation set to the set of
// nodes it reaches, excluding itself unless a cycle makes it
// self-reachable. A Closure is a plain map and safe to read
// concurrently by multiple goroutines once built; it is never mutated
// after Compute returns.
type Closure map[string]map[string]bool

// Compute returns the reflexive-free transitive closure of relations
// using fixed-point expansion: closure[a] starts as the direct targets
// of a, then repeatedly absorbs closure[b] for every b already in
// closure[a] until no set grows. Duplicate input pairs do not affect the
// result; a cycle causes every participating node to reach itself.
func Compute(relations []Relation) Closure {
	closure := make(Closure, len(relations))
	for _, r := range relations {
		if closure[r.From] == nil {
			closure[r.From] = make(map[string]bool)
		}
		closure[r.From][r.To] = true
	}

	for changed := true; changed; {
		changed = false
		for from, targets := range closure {
			for to := range snapshot(targets) {
				for next := range closure[to] {
					if !targets[next] {
						targets[next] = true
						changed = true
					}
				}
			}
		}
	}
	return closure
}

// ComputeParallel is equivalent to Compute but distributes the
// fixed-point sweep over disjoint connected components across goroutines.
// Components never share state (a relation never crosses a connected
// component boundary by definition), so this is safe without locking the
// per-component result; it only helps when the relation set is large
// enough to have independent components worth splitting.
func ComputeParallel(ctx context.Context, relations []Relation) (Closure, error) {
	groups := connectedComponents(relations)
	if len(groups) <= 1 {
		return Compute(relations), nil
	}

	results := make([]Closure, len(groups))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()))
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			results[i] = Compute(group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(Closure, len(relations))
	for _, r := range results {
		for from, targets := range r {
			if merged[from] == nil {
				merged[from] = make(map[string]bool, len(targets))
			}
			for to := range targets {
				merged[from][to] = true
			}
		}
	}
	return merged, nil
}

// connectedComponents partitions relations into disjoint groups sharing
// no node, via union-find.
func connectedComponents(relations []Relation) [][]Relation {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if p, ok := parent[x]; ok && p != x {
			parent[x] = find(p)
			return parent[x]
		}
		parent[x] = x
		return x
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, r := range relations {
		find(r.From)
		find(r.To)
		union(r.From, r.To)
	}

	groups := make(map[string][]Relation)
	for _, r := range relations {
		root := find(r.From)
		groups[root] = append(groups[root], r)
	}
	out := make([][]Relation, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}

func snapshot(m map[string]bool) map[string]bool {
	cp := make(map[string]bool, len(m))
	for k := range m {
		cp[k] = true
	}
	return cp
}

// Invert returns the closure with every (from, to) pair reversed.
// invert(invert(c)) preserves all pairs in c.
func Invert(c Closure) Closure {
	inv := make(Closure, len(c))
	for from, targets := range c {
		for to := range targets {
			if inv[to] == nil {
				inv[to] = make(map[string]bool)
			}
			inv[to][from] = true
		}
	}
	return inv
}

// IsReachable reports whether to is in c[from].
func IsReachable(c Closure, from, to string) bool {
	return c[from][to]
}

// Reachable returns the set of nodes reachable from from, as a slice in
// no particular order.
func Reachable(c Closure, from string) []string {
	targets := c[from]
	out := make([]string, 0, len(targets))
	for to := range targets {
		out = append(out, to)
	}
	return out
}

// Symmetrize returns a new relation set where every (a, b) pair also
// implies (b, a) — used for equivalence and disjointness, which are
// undirected relations in the ontology, before Compute is called.
func Symmetrize(relations []Relation) []Relation {
	out := make([]Relation, 0, len(relations)*2)
	for _, r := range relations {
		out = append(out, r, Relation{From: r.To, To: r.From})
	}
	return out
}
