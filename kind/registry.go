// Package kind holds the immutable KindRegistry built once from a
// GraphDefinition: node/edge kinds plus their ontology closures.
package kind

import (
	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/ontology"
)

// Registry is the once-built, read-only view of a graph's kinds and
// ontology. It holds no mutable state after NewRegistry returns and may
// be shared freely across goroutines.
type Registry struct {
	def *typegraph.GraphDefinition

	subClassAncestors   ontology.Closure
	subClassDescendants ontology.Closure
	broaderAncestors    ontology.Closure
	broaderDescendants  ontology.Closure
	partOfWholes        ontology.Closure
	partOfParts         ontology.Closure
	equivalents         ontology.Closure
	disjoint            ontology.Closure
}

// NewRegistry builds a Registry from def. Each closure is computed
// independently — equivalentTo does not imply subClassOf, and vice
// versa, per spec §4.B.
func NewRegistry(def *typegraph.GraphDefinition) *Registry {
	r := &Registry{def: def}

	var subClass, broader, partOf []ontology.Relation
	var equiv, disj []ontology.Relation

	for _, raw := range def.Ontology {
		rel := raw.Normalize()
		pair := ontology.Relation{From: rel.From, To: rel.To}
		switch rel.MetaEdge {
		case typegraph.MetaSubClassOf:
			subClass = append(subClass, pair)
		case typegraph.MetaBroader:
			broader = append(broader, pair)
		case typegraph.MetaPartOf:
			partOf = append(partOf, pair)
		case typegraph.MetaEquivalentTo:
			equiv = append(equiv, pair)
		case typegraph.MetaDisjointWith:
			disj = append(disj, pair)
		}
	}

	r.subClassAncestors = ontology.Compute(subClass)
	r.subClassDescendants = ontology.Invert(r.subClassAncestors)
	r.broaderAncestors = ontology.Compute(broader)
	r.broaderDescendants = ontology.Invert(r.broaderAncestors)
	r.partOfWholes = ontology.Compute(partOf)
	r.partOfParts = ontology.Invert(r.partOfWholes)
	r.equivalents = ontology.Compute(ontology.Symmetrize(equiv))
	r.disjoint = ontology.Compute(ontology.Symmetrize(disj))

	return r
}

// Node returns the node-kind registration for name, if any.
func (r *Registry) Node(name string) (typegraph.NodeKindRegistration, bool) {
	n, ok := r.def.Nodes[name]
	return n, ok
}

// Edge returns the edge-kind registration for name, if any.
func (r *Registry) Edge(name string) (typegraph.EdgeKindRegistration, bool) {
	e, ok := r.def.Edges[name]
	return e, ok
}

// ExpandSubClasses returns kind itself plus every descendant reachable
// under subClassOf — the set used by queries with includeSubClasses set.
func (r *Registry) ExpandSubClasses(kind string) map[string]bool {
	out := map[string]bool{kind: true}
	for d := range r.subClassDescendants[kind] {
		out[d] = true
	}
	return out
}

// IsSubClassOf reports whether a is a (possibly transitive) subclass of b.
func (r *Registry) IsSubClassOf(a, b string) bool {
	return ontology.IsReachable(r.subClassAncestors, a, b)
}

// IsAssignableTo reports whether a value of kind a may be used where b is
// expected — reflexive over subclass, so IsAssignableTo(k, k) is always
// true.
func (r *Registry) IsAssignableTo(a, b string) bool {
	return a == b || r.IsSubClassOf(a, b)
}

// IsBroaderThan reports whether a is broader than b.
func (r *Registry) IsBroaderThan(a, b string) bool {
	return ontology.IsReachable(r.broaderDescendants, a, b)
}

// IsNarrowerThan reports whether a is narrower than b (i.e. b is broader
// than a).
func (r *Registry) IsNarrowerThan(a, b string) bool {
	return r.IsBroaderThan(b, a)
}

// AreEquivalent reports whether a and b are in the same equivalence
// class.
func (r *Registry) AreEquivalent(a, b string) bool {
	return a == b || ontology.IsReachable(r.equivalents, a, b)
}

// AreDisjoint reports whether a and b were declared (or transitively
// implied to be) disjoint.
func (r *Registry) AreDisjoint(a, b string) bool {
	return ontology.IsReachable(r.disjoint, a, b)
}

// IsPartOf reports whether a is part of b, directly or transitively.
func (r *Registry) IsPartOf(a, b string) bool {
	return ontology.IsReachable(r.partOfWholes, a, b)
}

// GetAncestors returns every kind a is a (transitive) subclass of.
func (r *Registry) GetAncestors(kind string) []string {
	return ontology.Reachable(r.subClassAncestors, kind)
}

// GetDescendants returns every (transitive) subclass of kind.
func (r *Registry) GetDescendants(kind string) []string {
	return ontology.Reachable(r.subClassDescendants, kind)
}

// GetEquivalents returns every kind equivalent to kind, excluding kind
// itself.
func (r *Registry) GetEquivalents(kind string) []string {
	all := ontology.Reachable(r.equivalents, kind)
	out := make([]string, 0, len(all))
	for _, k := range all {
		if k != kind {
			out = append(out, k)
		}
	}
	return out
}

// GetDisjointKinds returns every kind declared disjoint with kind.
func (r *Registry) GetDisjointKinds(kind string) []string {
	return ontology.Reachable(r.disjoint, kind)
}

// GetWholes returns every kind that kind is (transitively) part of.
func (r *Registry) GetWholes(kind string) []string {
	return ontology.Reachable(r.partOfWholes, kind)
}

// GetParts returns every kind that is (transitively) part of kind.
func (r *Registry) GetParts(kind string) []string {
	return ontology.Reachable(r.partOfParts, kind)
}

// GraphID returns the id of the graph this registry was built from.
func (r *Registry) GraphID() string {
	return r.def.GraphID
}

// Definition returns the GraphDefinition the registry was built from.
// Callers must not mutate the returned value; graphs are immutable after
// registration.
func (r *Registry) Definition() *typegraph.GraphDefinition {
	return r.def
}
