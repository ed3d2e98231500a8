package schema

import (
	"encoding/json"

	"github.com/nicia-ai/typegraph-sub002"
)

// hashableSchema mirrors SerializedSchema minus Version, GeneratedAt,
// and GeneratedID, the three fields spec.md §4.J says must be excluded
// from the content digest so that hash(serialize(G, v1)) ==
// hash(serialize(G, v2)) for any two versions of the same content.
type hashableSchema struct {
	GraphID  string             `json:"graphId"`
	Nodes    map[string]NodeDef `json:"nodes"`
	Edges    map[string]EdgeDef `json:"edges"`
	Ontology OntologyDef        `json:"ontology"`
	Defaults DefaultsDef        `json:"defaults"`
}

// ComputeHash returns a content-only digest of s, excluding Version,
// GeneratedAt, and GeneratedID. encoding/json sorts map[string]V keys
// on marshal, and Serialize has already sorted every nested slice, so
// the same graph content always produces the same bytes here
// regardless of map iteration order or which version it was serialized
// at.
func ComputeHash(s *SerializedSchema) (string, error) {
	h := hashableSchema{
		GraphID:  s.GraphID,
		Nodes:    s.Nodes,
		Edges:    s.Edges,
		Ontology: s.Ontology,
		Defaults: s.Defaults,
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return typegraph.HashBytes(data), nil
}
