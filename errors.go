package typegraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched via errors.Is against the typed errors below.
var (
	// ErrCompilerInvariant is the sentinel behind every CompilerInvariantError.
	ErrCompilerInvariant = errors.New("typegraph: compiler invariant violated")

	// ErrUnsupportedPredicate is the sentinel behind every UnsupportedPredicateError.
	ErrUnsupportedPredicate = errors.New("typegraph: unsupported predicate")
)

// ValidationError reports that user-supplied data failed a schema,
// format, or pagination-cursor check. It is recoverable: the caller can
// fix the input and retry.
type ValidationError struct {
	Field     string
	Message   string
	Remediate string // suggested remediation, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("typegraph: validation failed for %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("typegraph: validation failed: %s", e.Message)
}

// NewValidationError returns a new ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError returns true if err is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// UnsupportedPredicateError reports that a query uses a construct the
// chosen dialect or emitter does not support, e.g. a vector predicate
// under OR, or a SQLite set-operation leaf containing a traversal.
// Features lists every offending construct found, so callers can report
// them all at once instead of failing on the first.
type UnsupportedPredicateError struct {
	Reason   string
	Features []string
}

func (e *UnsupportedPredicateError) Error() string {
	if len(e.Features) == 0 {
		return fmt.Sprintf("typegraph: unsupported predicate: %s", e.Reason)
	}
	return fmt.Sprintf("typegraph: unsupported predicate: %s (%s)", e.Reason, strings.Join(e.Features, ", "))
}

// Is reports whether target is ErrUnsupportedPredicate.
func (e *UnsupportedPredicateError) Is(target error) bool {
	return target == ErrUnsupportedPredicate
}

// NewUnsupportedPredicateError returns a new UnsupportedPredicateError.
func NewUnsupportedPredicateError(reason string, features ...string) *UnsupportedPredicateError {
	return &UnsupportedPredicateError{Reason: reason, Features: features}
}

// IsUnsupportedPredicate returns true if err is an UnsupportedPredicateError.
func IsUnsupportedPredicate(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedPredicateError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedPredicate)
}

// CompilerInvariantError reports that an internal invariant was violated,
// e.g. a plan root was not `project` when an emitter required it. This
// is always a bug in the compiler itself, never a user error, and should
// not be caught by normal control flow.
type CompilerInvariantError struct {
	Component string
	Message   string
}

func (e *CompilerInvariantError) Error() string {
	return fmt.Sprintf("typegraph: compiler invariant violated in %s: %s", e.Component, e.Message)
}

// Is reports whether target is ErrCompilerInvariant.
func (e *CompilerInvariantError) Is(target error) bool {
	return target == ErrCompilerInvariant
}

// NewCompilerInvariantError returns a new CompilerInvariantError tagged
// with the component that detected the violation.
func NewCompilerInvariantError(component, message string) *CompilerInvariantError {
	return &CompilerInvariantError{Component: component, Message: message}
}

// IsCompilerInvariant returns true if err is a CompilerInvariantError.
func IsCompilerInvariant(err error) bool {
	if err == nil {
		return false
	}
	var e *CompilerInvariantError
	return errors.As(err, &e) || errors.Is(err, ErrCompilerInvariant)
}

// MigrationError reports that a breaking schema change was detected
// while throwOnBreaking was set. Actions lists the remediation steps an
// operator would need to take to make the change safe.
type MigrationError struct {
	GraphID string
	Actions []string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("typegraph: migration for graph %q requires breaking changes: %s", e.GraphID, strings.Join(e.Actions, "; "))
}

// NewMigrationError returns a new MigrationError.
func NewMigrationError(graphID string, actions []string) *MigrationError {
	return &MigrationError{GraphID: graphID, Actions: actions}
}

// IsMigrationError returns true if err is a MigrationError.
func IsMigrationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MigrationError
	return errors.As(err, &e)
}

// NotFoundError reports that a kind, edge, node, or traversal endpoint
// could not be located.
type NotFoundError struct {
	Label string
	ID    any
}

func (e *NotFoundError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("typegraph: %s not found (id=%v)", e.Label, e.ID)
	}
	return fmt.Sprintf("typegraph: %s not found", e.Label)
}

// NewNotFoundError returns a new NotFoundError for the given label.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{Label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError carrying the id that
// was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{Label: label, ID: id}
}

// IsNotFound returns true if err is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e)
}

// DisjointError reports that two kinds declared disjoint were both
// asserted of the same entity.
type DisjointError struct {
	KindA, KindB string
}

func (e *DisjointError) Error() string {
	return fmt.Sprintf("typegraph: kinds %q and %q are declared disjoint", e.KindA, e.KindB)
}

// NewDisjointError returns a new DisjointError.
func NewDisjointError(a, b string) *DisjointError {
	return &DisjointError{KindA: a, KindB: b}
}

// CardinalityError reports that an edge insertion would violate its
// kind's one|many cardinality.
type CardinalityError struct {
	EdgeKind string
	Message  string
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("typegraph: cardinality violation on edge kind %q: %s", e.EdgeKind, e.Message)
}

// NewCardinalityError returns a new CardinalityError.
func NewCardinalityError(edgeKind, message string) *CardinalityError {
	return &CardinalityError{EdgeKind: edgeKind, Message: message}
}

// UniquenessError reports a uniqueness constraint violation.
type UniquenessError struct {
	Kind       string
	Constraint string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("typegraph: uniqueness constraint %q violated on kind %q", e.Constraint, e.Kind)
}

// NewUniquenessError returns a new UniquenessError.
func NewUniquenessError(kind, constraint string) *UniquenessError {
	return &UniquenessError{Kind: kind, Constraint: constraint}
}

// RestrictedDeleteError reports that a node could not be deleted because
// its kind's delete behavior is restrict and dependent edges exist.
type RestrictedDeleteError struct {
	Kind string
	ID   string
}

func (e *RestrictedDeleteError) Error() string {
	return fmt.Sprintf("typegraph: cannot delete %s %q: restricted by dependent edges", e.Kind, e.ID)
}

// NewRestrictedDeleteError returns a new RestrictedDeleteError.
func NewRestrictedDeleteError(kind, id string) *RestrictedDeleteError {
	return &RestrictedDeleteError{Kind: kind, ID: id}
}

// VersionConflictError reports an optimistic-concurrency mismatch on a
// versioned row update.
type VersionConflictError struct {
	Kind     string
	ID       string
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("typegraph: version conflict on %s %q: expected %d, got %d", e.Kind, e.ID, e.Expected, e.Actual)
}

// NewVersionConflictError returns a new VersionConflictError.
func NewVersionConflictError(kind, id string, expected, actual int64) *VersionConflictError {
	return &VersionConflictError{Kind: kind, ID: id, Expected: expected, Actual: actual}
}

// SchemaMismatchError reports that a stored schema version does not
// match what the running process expects.
type SchemaMismatchError struct {
	GraphID         string
	ExpectedVersion int
	ActualVersion   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("typegraph: schema mismatch for graph %q: expected version %d, found %d", e.GraphID, e.ExpectedVersion, e.ActualVersion)
}

// NewSchemaMismatchError returns a new SchemaMismatchError.
func NewSchemaMismatchError(graphID string, expected, actual int) *SchemaMismatchError {
	return &SchemaMismatchError{GraphID: graphID, ExpectedVersion: expected, ActualVersion: actual}
}
