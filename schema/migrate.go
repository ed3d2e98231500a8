package schema

import (
	"context"
	"fmt"

	"github.com/nicia-ai/typegraph-sub002"
)

// VersionStore is the schema-versions sub-interface spec.md §6's
// backend contract requires: `{getActiveSchema, getSchemaVersion,
// insertSchemaVersion, setActiveSchema}`, backed by the
// `schema_versions (graph_id, version, content JSON, hash, is_active,
// created_at)` table.
type VersionStore interface {
	// GetActiveSchema returns the currently active SerializedSchema for
	// graphID, or nil if no version has ever been recorded.
	GetActiveSchema(ctx context.Context, graphID string) (*SerializedSchema, error)
	// GetSchemaVersion returns a specific recorded version, or nil if it
	// does not exist.
	GetSchemaVersion(ctx context.Context, graphID string, version int64) (*SerializedSchema, error)
	// InsertSchemaVersion appends a new, not-yet-active version record.
	InsertSchemaVersion(ctx context.Context, s *SerializedSchema) error
	// SetActiveSchema marks version as the single active version for
	// graphID, deactivating every other recorded version.
	SetActiveSchema(ctx context.Context, graphID string, version int64) error
}

// EnsureOptions controls ensureSchema's umbrella behavior, per
// spec.md §4.J.
type EnsureOptions struct {
	// ThrowOnBreaking raises a MigrationError instead of proceeding when
	// the diff against the active version contains a breaking change.
	ThrowOnBreaking bool
	// AutoMigrate records and activates the new version when the diff is
	// not breaking (or ThrowOnBreaking is false). When false, a
	// non-breaking diff is reported but not persisted.
	AutoMigrate bool
}

// Status discriminates the outcome of an EnsureSchema call.
type Status string

const (
	// StatusInitialized means this was the first recorded version for
	// the graph.
	StatusInitialized Status = "initialized"
	// StatusUnchanged means the live schema's content hash matches the
	// active version's; nothing was recorded.
	StatusUnchanged Status = "unchanged"
	// StatusMigrated means a new version was diffed, found acceptable,
	// and (when AutoMigrate is set) recorded as the new active version.
	StatusMigrated Status = "migrated"
	// StatusDiffOnly means a new version was diffed and found
	// acceptable but AutoMigrate was false, so nothing was persisted.
	StatusDiffOnly Status = "diffOnly"
)

// MigrationResult reports what EnsureSchema did.
type MigrationResult struct {
	Status      Status
	FromVersion int64
	ToVersion   int64
	Changes     []Change
	Schema      *SerializedSchema
}

// EnsureSchema is the umbrella operation of spec.md §4.J: on first run
// it initializes and records version 1; on subsequent runs it diffs
// the live graph against the active stored version. If the diff has a
// breaking change and ThrowOnBreaking is set, it raises a
// MigrationError listing the breaking actions; otherwise, if
// AutoMigrate is set, it records the new version and marks it active,
// deactivating the prior one.
func EnsureSchema(ctx context.Context, store VersionStore, graph *typegraph.GraphDefinition, now int64, opts EnsureOptions) (*MigrationResult, error) {
	active, err := store.GetActiveSchema(ctx, graph.GraphID)
	if err != nil {
		return nil, fmt.Errorf("schema: load active version: %w", err)
	}

	if active == nil {
		first, err := Serialize(graph, 1, now)
		if err != nil {
			return nil, err
		}
		if err := store.InsertSchemaVersion(ctx, first); err != nil {
			return nil, fmt.Errorf("schema: insert initial version: %w", err)
		}
		if err := store.SetActiveSchema(ctx, graph.GraphID, first.Version); err != nil {
			return nil, fmt.Errorf("schema: activate initial version: %w", err)
		}
		return &MigrationResult{Status: StatusInitialized, ToVersion: first.Version, Schema: first}, nil
	}

	candidate, err := Serialize(graph, active.Version+1, now)
	if err != nil {
		return nil, err
	}

	if candidate.SchemaHash == active.SchemaHash {
		return &MigrationResult{
			Status: StatusUnchanged, FromVersion: active.Version, ToVersion: active.Version, Schema: active,
		}, nil
	}

	changes := Diff(active, candidate)

	if HasBreakingChanges(changes) && opts.ThrowOnBreaking {
		actions := make([]string, 0, len(changes))
		for _, c := range changes {
			if c.Severity == Breaking {
				actions = append(actions, c.Description)
			}
		}
		return nil, typegraph.NewMigrationError(graph.GraphID, actions)
	}

	if !opts.AutoMigrate {
		return &MigrationResult{
			Status: StatusDiffOnly, FromVersion: active.Version, ToVersion: candidate.Version,
			Changes: changes, Schema: candidate,
		}, nil
	}

	if err := store.InsertSchemaVersion(ctx, candidate); err != nil {
		return nil, fmt.Errorf("schema: insert new version: %w", err)
	}
	if err := store.SetActiveSchema(ctx, graph.GraphID, candidate.Version); err != nil {
		return nil, fmt.Errorf("schema: activate new version: %w", err)
	}

	return &MigrationResult{
		Status: StatusMigrated, FromVersion: active.Version, ToVersion: candidate.Version,
		Changes: changes, Schema: candidate,
	}, nil
}
