package schema

import (
	"sort"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/kind"
)

// closureRelations names every closure Serialize projects into
// OntologyDef.Closures, paired with the kind.Registry accessor that
// computes it. Keeping this as a table rather than four inline calls
// means adding a relation later only touches this list.
var closureRelations = []struct {
	name string
	get  func(*kind.Registry, string) []string
}{
	{"subClassOf", (*kind.Registry).GetAncestors},
	{"partOf", (*kind.Registry).GetWholes},
	{"equivalentTo", (*kind.Registry).GetEquivalents},
	{"disjointWith", (*kind.Registry).GetDisjointKinds},
}

// Serialize produces the deterministic JSON tree spec.md §4.J
// describes for graph at version: nodes and edges sorted by key
// (Go's encoding/json already sorts map[string]V keys, but Serialize
// also sorts every nested slice so YAML and other non-JSON encodings
// of the same value are equally deterministic), closure maps sorted,
// and where-predicates captured as their sub-AST.
func Serialize(graph *typegraph.GraphDefinition, version int64, generatedAt int64) (*SerializedSchema, error) {
	if graph == nil {
		return nil, typegraph.NewValidationError("graph", "cannot serialize a nil graph definition")
	}

	reg := kind.NewRegistry(graph)

	nodes := make(map[string]NodeDef, len(graph.Nodes))
	for name, n := range graph.Nodes {
		nodes[name] = serializeNode(name, n)
	}

	edges := make(map[string]EdgeDef, len(graph.Edges))
	for name, e := range graph.Edges {
		edges[name] = serializeEdge(name, e)
	}

	s := &SerializedSchema{
		GraphID:     graph.GraphID,
		Version:     version,
		GeneratedAt: generatedAt,
		GeneratedID: newGeneratedID(),
		Nodes:       nodes,
		Edges:       edges,
		Ontology:    serializeOntology(graph, reg),
		Defaults: DefaultsDef{
			DeleteBehavior: graph.Defaults.DeleteBehavior,
			TemporalMode:   graph.Defaults.TemporalMode,
		},
	}

	hash, err := ComputeHash(s)
	if err != nil {
		return nil, err
	}
	s.SchemaHash = hash

	return s, nil
}

func serializeNode(name string, n typegraph.NodeKindRegistration) NodeDef {
	def := NodeDef{
		Name:        name,
		Description: n.Kind.Description,
		Unique:      serializeUnique(n.Kind.Unique),
	}
	if n.Kind.Validator != nil {
		def.JSONSchema = n.Kind.Validator.JSONSchema()
	}
	for _, h := range n.IndexHints {
		def.IndexHints = append(def.IndexHints, IndexHintDef{Fields: sortedStrings(h.Fields), Unique: h.Unique})
	}
	return def
}

func serializeEdge(name string, e typegraph.EdgeKindRegistration) EdgeDef {
	def := EdgeDef{
		Name:        name,
		Description: e.Kind.Description,
		Unique:      serializeUnique(e.Kind.Unique),
		FromKinds:   sortedStrings(e.FromKinds),
		ToKinds:     sortedStrings(e.ToKinds),
		Cardinality: e.Cardinality,
	}
	if e.Kind.Validator != nil {
		def.JSONSchema = e.Kind.Validator.JSONSchema()
	}
	return def
}

func serializeUnique(constraints []typegraph.UniqueConstraint) []UniqueConstraintDef {
	if len(constraints) == 0 {
		return nil
	}
	out := make([]UniqueConstraintDef, 0, len(constraints))
	for _, c := range constraints {
		out = append(out, UniqueConstraintDef{Name: c.Name, Fields: sortedStrings(c.Fields), Where: c.Where})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func serializeOntology(graph *typegraph.GraphDefinition, reg *kind.Registry) OntologyDef {
	relations := make([]OntologyRelationDef, 0, len(graph.Ontology))
	for _, r := range graph.Ontology {
		canon := r.Normalize()
		relations = append(relations, OntologyRelationDef{MetaEdge: canon.MetaEdge, From: canon.From, To: canon.To})
	}
	sort.Slice(relations, func(i, j int) bool {
		if relations[i].MetaEdge != relations[j].MetaEdge {
			return relations[i].MetaEdge < relations[j].MetaEdge
		}
		if relations[i].From != relations[j].From {
			return relations[i].From < relations[j].From
		}
		return relations[i].To < relations[j].To
	})

	kinds := make(map[string]bool, len(graph.Nodes)+len(graph.Edges))
	for name := range graph.Nodes {
		kinds[name] = true
	}
	for name := range graph.Edges {
		kinds[name] = true
	}
	for _, r := range graph.Ontology {
		kinds[r.From] = true
		kinds[r.To] = true
	}

	closures := make(map[string]map[string][]string, len(closureRelations))
	for _, rel := range closureRelations {
		byKind := make(map[string][]string)
		for k := range kinds {
			reachable := sortedStrings(rel.get(reg, k))
			if len(reachable) > 0 {
				byKind[k] = reachable
			}
		}
		closures[rel.name] = byKind
	}

	return OntologyDef{Relations: relations, Closures: closures}
}
