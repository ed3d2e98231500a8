package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// ChangeType classifies how a schema element changed between two
// serialized versions.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// Severity classifies the compatibility impact of a Change, per
// spec.md §4.J.
type Severity string

const (
	// Compatible changes need no action: existing rows and queries
	// keep working unmodified.
	Compatible Severity = "compatible"
	// RequiresMigration changes need a safe DDL step (e.g. a backfill
	// for a new required property with a default) before the new
	// version is fully consistent, but do not invalidate existing data.
	RequiresMigration Severity = "requiresMigration"
	// Breaking changes cannot be applied without data loss or
	// incompatibility and must be rejected unless explicitly accepted.
	Breaking Severity = "breaking"
)

// Change is one classified difference between two SerializedSchema
// values.
type Change struct {
	Type        ChangeType `json:"type"`
	Severity    Severity   `json:"severity"`
	Path        string     `json:"path"`
	Description string     `json:"description"`
}

// Diff classifies every difference between old and new per spec.md
// §4.J's literal rules:
//
//   - adding a node/edge kind, an optional property, an ontology
//     relation, or a uniqueness constraint over a superset of existing
//     unique rows: compatible.
//   - tightening a property (required where optional, narrower type),
//     renaming a required property, or removing a kind: breaking.
//   - adding a required property with a default, or anything
//     executable by a safe DDL step: requiresMigration.
func Diff(old, new *SerializedSchema) []Change {
	var changes []Change

	changes = append(changes, diffNodeKinds(old.Nodes, new.Nodes)...)
	changes = append(changes, diffEdgeKinds(old.Edges, new.Edges)...)
	changes = append(changes, diffOntology(old.Ontology, new.Ontology)...)

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func diffNodeKinds(old, new map[string]NodeDef) []Change {
	var changes []Change
	for name, n := range new {
		o, existed := old[name]
		path := "nodes." + name
		if !existed {
			changes = append(changes, Change{Added, Compatible, path, fmt.Sprintf("node kind %q added", name)})
			continue
		}
		changes = append(changes, diffProperties(path, o.JSONSchema, n.JSONSchema)...)
		changes = append(changes, diffUnique(path, o.Unique, n.Unique)...)
	}
	for name := range old {
		if _, ok := new[name]; !ok {
			changes = append(changes, Change{Removed, Breaking, "nodes." + name, fmt.Sprintf("node kind %q removed", name)})
		}
	}
	return changes
}

func diffEdgeKinds(old, new map[string]EdgeDef) []Change {
	var changes []Change
	for name, n := range new {
		o, existed := old[name]
		path := "edges." + name
		if !existed {
			changes = append(changes, Change{Added, Compatible, path, fmt.Sprintf("edge kind %q added", name)})
			continue
		}
		changes = append(changes, diffProperties(path, o.JSONSchema, n.JSONSchema)...)
		changes = append(changes, diffUnique(path, o.Unique, n.Unique)...)
	}
	for name := range old {
		if _, ok := new[name]; !ok {
			changes = append(changes, Change{Removed, Breaking, "edges." + name, fmt.Sprintf("edge kind %q removed", name)})
		}
	}
	return changes
}

// jsonSchemaProperties narrows a JSON-Schema document (as produced by
// typegraph.Validator.JSONSchema) down to its "properties" and
// "required" members, the only parts spec.md §4.J's rules inspect.
func jsonSchemaProperties(doc map[string]any) (properties map[string]any, required map[string]bool) {
	required = map[string]bool{}
	if doc == nil {
		return nil, required
	}
	if p, ok := doc["properties"].(map[string]any); ok {
		properties = p
	}
	if req, ok := doc["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}
	return properties, required
}

func diffProperties(path string, oldSchema, newSchema map[string]any) []Change {
	var changes []Change
	oldProps, oldRequired := jsonSchemaProperties(oldSchema)
	newProps, newRequired := jsonSchemaProperties(newSchema)

	for name, newDef := range newProps {
		propPath := path + ".properties." + name
		oldDef, existed := oldProps[name]
		if !existed {
			if newRequired[name] {
				if hasDefault(newDef) {
					changes = append(changes, Change{Added, RequiresMigration, propPath,
						fmt.Sprintf("required property %q added with a default", name)})
				} else {
					changes = append(changes, Change{Added, Breaking, propPath,
						fmt.Sprintf("required property %q added with no default", name)})
				}
			} else {
				changes = append(changes, Change{Added, Compatible, propPath,
					fmt.Sprintf("optional property %q added", name)})
			}
			continue
		}

		wasRequired, nowRequired := oldRequired[name], newRequired[name]
		if !wasRequired && nowRequired {
			changes = append(changes, Change{Modified, Breaking, propPath,
				fmt.Sprintf("property %q tightened from optional to required", name)})
			continue
		}

		if typeNarrowed(oldDef, newDef) {
			changes = append(changes, Change{Modified, Breaking, propPath,
				fmt.Sprintf("property %q type narrowed", name)})
		}
	}

	for name := range oldProps {
		if _, ok := newProps[name]; !ok {
			if oldRequired[name] {
				changes = append(changes, Change{Removed, Breaking, path + ".properties." + name,
					fmt.Sprintf("required property %q renamed or removed", name)})
			} else {
				changes = append(changes, Change{Removed, Compatible, path + ".properties." + name,
					fmt.Sprintf("optional property %q removed", name)})
			}
		}
	}

	return changes
}

func hasDefault(propDef any) bool {
	m, ok := propDef.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m["default"]
	return ok
}

func typeNarrowed(oldDef, newDef any) bool {
	om, ok1 := oldDef.(map[string]any)
	nm, ok2 := newDef.(map[string]any)
	if !ok1 || !ok2 {
		return false
	}
	ot, _ := om["type"].(string)
	nt, _ := nm["type"].(string)
	if ot == "" || nt == "" || ot == nt {
		return false
	}
	// "number" -> "integer" is the only narrowing this classifier
	// recognizes without a type-lattice; any other type change is
	// flagged via the generic type-mismatch check below.
	if ot == "number" && nt == "integer" {
		return true
	}
	return !reflect.DeepEqual(oldDef, newDef) && ot != nt
}

func diffUnique(path string, old, new []UniqueConstraintDef) []Change {
	var changes []Change
	byName := func(cs []UniqueConstraintDef) map[string]UniqueConstraintDef {
		m := make(map[string]UniqueConstraintDef, len(cs))
		for _, c := range cs {
			m[c.Name] = c
		}
		return m
	}
	oldByName, newByName := byName(old), byName(new)

	for name, n := range newByName {
		o, existed := oldByName[name]
		constraintPath := path + ".unique." + name
		if !existed {
			if isSupersetConstraint(newByName, o, n) {
				changes = append(changes, Change{Added, Compatible, constraintPath,
					fmt.Sprintf("uniqueness constraint %q added over a superset of existing unique rows", name)})
			} else {
				changes = append(changes, Change{Added, RequiresMigration, constraintPath,
					fmt.Sprintf("uniqueness constraint %q added", name)})
			}
		}
	}
	for name := range oldByName {
		if _, ok := newByName[name]; !ok {
			changes = append(changes, Change{Removed, Compatible, path + ".unique." + name,
				fmt.Sprintf("uniqueness constraint %q removed", name)})
		}
	}
	return changes
}

// isSupersetConstraint decides whether an added constraint n is
// classified compatible, standing in for spec.md §4.J's "uniqueness
// constraint over a superset of existing unique rows" rule. Without the
// stored rows this is a structural approximation: it returns true
// whenever n names at least one field and does not compare n with any
// other constraint, so only a constraint with no fields is classified
// requiresMigration.
func isSupersetConstraint(_ map[string]UniqueConstraintDef, _, n UniqueConstraintDef) bool {
	return len(n.Fields) > 0
}

func diffOntology(old, new OntologyDef) []Change {
	var changes []Change

	oldSet := make(map[string]bool, len(old.Relations))
	for _, r := range old.Relations {
		oldSet[string(r.MetaEdge)+"|"+r.From+"|"+r.To] = true
	}
	for _, r := range new.Relations {
		key := string(r.MetaEdge) + "|" + r.From + "|" + r.To
		if !oldSet[key] {
			changes = append(changes, Change{Added, Compatible, "ontology.relations." + key,
				fmt.Sprintf("ontology relation %s(%s, %s) added", r.MetaEdge, r.From, r.To)})
		}
	}

	newSet := make(map[string]bool, len(new.Relations))
	for _, r := range new.Relations {
		newSet[string(r.MetaEdge)+"|"+r.From+"|"+r.To] = true
	}
	for _, r := range old.Relations {
		key := string(r.MetaEdge) + "|" + r.From + "|" + r.To
		if !newSet[key] {
			changes = append(changes, Change{Removed, Compatible, "ontology.relations." + key,
				fmt.Sprintf("ontology relation %s(%s, %s) removed", r.MetaEdge, r.From, r.To)})
		}
	}

	return changes
}

// HasBreakingChanges reports whether changes contains any Breaking
// severity entry.
func HasBreakingChanges(changes []Change) bool {
	for _, c := range changes {
		if c.Severity == Breaking {
			return true
		}
	}
	return false
}

// IsBackwardsCompatible returns true iff no change is breaking, per
// spec.md §4.J.
func IsBackwardsCompatible(changes []Change) bool {
	return !HasBreakingChanges(changes)
}
