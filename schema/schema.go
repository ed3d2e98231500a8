// Package schema implements the Schema Serializer / Diff / Migrator of
// spec.md §4.J: a deterministic JSON projection of a GraphDefinition,
// a content hash over that projection, a change classifier between two
// serialized versions, and the ensureSchema umbrella that ties
// serialization and classification to a version-history store.
//
// Grounded on the teacher's own `ent/schema` introspection layer (a
// read-only, JSON-shaped view derived from the live schema graph used
// for migration planning) — generalized here from ent's fixed
// compile-time schema to this module's runtime-registered
// typegraph.GraphDefinition.
package schema

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nicia-ai/typegraph-sub002"
)

// UniqueConstraintDef is the serialized form of a typegraph.UniqueConstraint.
// Where, when present, is the constraint's filter captured as a sub-AST
// per spec.md §4.J, never as an opaque function reference.
type UniqueConstraintDef struct {
	Name   string                    `json:"name" yaml:"name"`
	Fields []string                  `json:"fields" yaml:"fields"`
	Where  *typegraph.WherePredicate `json:"where,omitempty" yaml:"where,omitempty"`
}

// IndexHintDef is the serialized form of a typegraph.IndexHint.
type IndexHintDef struct {
	Fields []string `json:"fields" yaml:"fields"`
	Unique bool     `json:"unique" yaml:"unique"`
}

// NodeDef is the serialized form of a typegraph.NodeKindRegistration.
type NodeDef struct {
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	JSONSchema  map[string]any        `json:"jsonSchema" yaml:"jsonSchema"`
	Unique      []UniqueConstraintDef `json:"unique,omitempty" yaml:"unique,omitempty"`
	IndexHints  []IndexHintDef        `json:"indexHints,omitempty" yaml:"indexHints,omitempty"`
}

// EdgeDef is the serialized form of a typegraph.EdgeKindRegistration.
type EdgeDef struct {
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	JSONSchema  map[string]any        `json:"jsonSchema" yaml:"jsonSchema"`
	Unique      []UniqueConstraintDef `json:"unique,omitempty" yaml:"unique,omitempty"`
	FromKinds   []string              `json:"fromKinds,omitempty" yaml:"fromKinds,omitempty"`
	ToKinds     []string              `json:"toKinds,omitempty" yaml:"toKinds,omitempty"`
	Cardinality typegraph.Cardinality `json:"cardinality" yaml:"cardinality"`
}

// OntologyRelationDef is the serialized form of one declared
// typegraph.OntologyRelation, in its canonical (post-Normalize) shape.
type OntologyRelationDef struct {
	MetaEdge typegraph.MetaEdge `json:"metaEdge" yaml:"metaEdge"`
	From     string             `json:"from" yaml:"from"`
	To       string             `json:"to" yaml:"to"`
}

// OntologyDef is the serialized ontology: the declared relations plus
// their precomputed transitive closures, sorted for determinism.
type OntologyDef struct {
	Relations []OntologyRelationDef `json:"relations" yaml:"relations"`
	// Closures maps relation name -> kind -> sorted reachable kinds.
	Closures map[string]map[string][]string `json:"closures" yaml:"closures"`
}

// DefaultsDef is the serialized form of typegraph.GraphDefaults.
type DefaultsDef struct {
	DeleteBehavior typegraph.DeleteBehavior   `json:"deleteBehavior" yaml:"deleteBehavior"`
	TemporalMode   typegraph.TemporalModeKind `json:"temporalMode" yaml:"temporalMode"`
}

// SerializedSchema is the deterministic JSON tree spec.md §4.J
// describes: `{graphId, version, generatedAt, nodes, edges, ontology,
// defaults, schemaHash}`. GeneratedID is a SPEC_FULL addition: a
// per-serialization-call opaque token (not part of the content hash,
// same as Version and GeneratedAt) useful for correlating a
// serialization run across logs without reusing the monotonic version
// number as a request identifier.
type SerializedSchema struct {
	GraphID     string             `json:"graphId" yaml:"graphId"`
	Version     int64              `json:"version" yaml:"version"`
	GeneratedAt int64              `json:"generatedAt" yaml:"generatedAt"`
	GeneratedID string             `json:"generatedId" yaml:"generatedId"`
	Nodes       map[string]NodeDef `json:"nodes" yaml:"nodes"`
	Edges       map[string]EdgeDef `json:"edges" yaml:"edges"`
	Ontology    OntologyDef        `json:"ontology" yaml:"ontology"`
	Defaults    DefaultsDef        `json:"defaults" yaml:"defaults"`
	SchemaHash  string             `json:"schemaHash" yaml:"schemaHash"`
}

func sortedStrings(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func newGeneratedID() string {
	return uuid.NewString()
}
