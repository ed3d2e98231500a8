package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/schema"
)

// fakeValidator is a minimal typegraph.Validator double — the real
// implementation is the fluent builder DSL spec.md §1 excludes.
type fakeValidator struct {
	doc map[string]any
}

func (v fakeValidator) JSONSchema() map[string]any { return v.doc }

func personGraph() *typegraph.GraphDefinition {
	return &typegraph.GraphDefinition{
		GraphID: "g1",
		Nodes: map[string]typegraph.NodeKindRegistration{
			"Person": {
				Kind: typegraph.Kind{
					Name: "Person",
					Validator: fakeValidator{doc: map[string]any{
						"type":       "object",
						"properties": map[string]any{"name": map[string]any{"type": "string"}},
						"required":   []any{"name"},
					}},
					Unique: []typegraph.UniqueConstraint{{Name: "person_name_unique", Fields: []string{"/name"}}},
				},
				IndexHints: []typegraph.IndexHint{{Fields: []string{"/name"}, Unique: true}},
			},
			"Organization": {Kind: typegraph.Kind{Name: "Organization"}},
		},
		Edges: map[string]typegraph.EdgeKindRegistration{
			"employs": {
				Kind:        typegraph.Kind{Name: "employs"},
				FromKinds:   []string{"Organization"},
				ToKinds:     []string{"Person"},
				Cardinality: typegraph.CardinalityMany,
			},
		},
		Ontology: []typegraph.OntologyRelation{
			{MetaEdge: typegraph.MetaSubClassOf, From: "Manager", To: "Person"},
		},
		Defaults: typegraph.GraphDefaults{
			DeleteBehavior: typegraph.DeleteRestrict,
			TemporalMode:   typegraph.TemporalCurrent,
		},
	}
}

func TestSerializeProducesDeterministicContent(t *testing.T) {
	graph := personGraph()

	a, err := schema.Serialize(graph, 1, 1000)
	require.NoError(t, err)
	b, err := schema.Serialize(graph, 2, 2000)
	require.NoError(t, err)

	assert.Equal(t, a.SchemaHash, b.SchemaHash, "content hash must not depend on version or generatedAt")
	assert.NotEqual(t, a.GeneratedID, b.GeneratedID)

	person := a.Nodes["Person"]
	require.Len(t, person.Unique, 1)
	assert.Equal(t, "person_name_unique", person.Unique[0].Name)
	assert.Equal(t, []string{"/name"}, person.Unique[0].Fields)

	org := a.Edges["employs"]
	assert.Equal(t, typegraph.CardinalityMany, org.Cardinality)
	assert.Equal(t, []string{"Organization"}, org.FromKinds)
}

func TestSerializeSortsOntologyClosures(t *testing.T) {
	graph := personGraph()
	graph.Nodes["Manager"] = typegraph.NodeKindRegistration{Kind: typegraph.Kind{Name: "Manager"}}
	graph.Nodes["Director"] = typegraph.NodeKindRegistration{Kind: typegraph.Kind{Name: "Director"}}
	graph.Ontology = append(graph.Ontology, typegraph.OntologyRelation{
		MetaEdge: typegraph.MetaSubClassOf, From: "Director", To: "Manager",
	})

	s, err := schema.Serialize(graph, 1, 0)
	require.NoError(t, err)

	ancestors := s.Ontology.Closures["subClassOf"]["Director"]
	require.Equal(t, []string{"Manager", "Person"}, ancestors, "closure slices are sorted for determinism")
}

func TestSerializeRejectsNilGraph(t *testing.T) {
	_, err := schema.Serialize(nil, 1, 0)
	require.Error(t, err)
	assert.True(t, typegraph.IsValidationError(err))
}
