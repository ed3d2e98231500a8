// Package typegraph implements a schema-typed property-graph query engine
// layered over a relational key-value/document substrate.
//
// Users declare node kinds, edge kinds, and an ontology (sub-class,
// equivalence, disjointness, part-of, broader/narrower) via a
// [GraphDefinition]; the query pipeline — ast, compiler/plan,
// compiler/predicate and compiler/emit — then takes a validated
// [ast.QueryAst] through a pluggable compiler that produces a logical
// plan, applies semantic passes, and emits dialect-correct SQL for
// SQLite or PostgreSQL.
//
// The fluent builder DSL that constructs an ast.QueryAst, the storage
// backend's CRUD implementation, JSON-Schema derivation from validators,
// ID generation, and CLI/docs packaging are external collaborators; this
// module defines the contracts they must satisfy (see package backend)
// but does not implement them.
package typegraph
