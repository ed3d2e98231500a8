package typegraph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// PlanCache caches compiled SQL by the content hash of the AST that
// produced it. Compilation is pure (see spec §8: compile(A) = compile(A)),
// so a cache keyed on AST content never serves a stale result for a
// different AST.
type PlanCache interface {
	// Get retrieves a cached compiled statement. Returns ok=false if the
	// key is absent.
	Get(ctx context.Context, key string) (sql string, params []any, ok bool)

	// Set stores a compiled statement under key.
	Set(ctx context.Context, key string, sql string, params []any)

	// Clear removes every cached entry.
	Clear(ctx context.Context)
}

// PlanCacheKey derives a stable cache key from the pieces of a compile
// call that affect its output: the dialect name, the graph id, and a
// caller-supplied content digest of the AST (callers typically hash a canonical
// serialization of the AST; this package does not serialize ASTs
// itself).
type PlanCacheKey struct {
	Dialect    string
	GraphID    string
	ASTDigest  string
}

// String renders the key as a single string suitable for use with a
// generic byte-keyed cache.
func (k PlanCacheKey) String() string {
	return k.Dialect + ":" + k.GraphID + ":" + k.ASTDigest
}

// HashBytes returns a hex-encoded SHA-256 digest of data, the digest
// function used for both PlanCacheKey.ASTDigest inputs and schema
// content hashing (see package schema).
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MemoryPlanCache is a process-local, mutex-guarded PlanCache
// implementation suitable for tests and single-process deployments.
type MemoryPlanCache struct {
	mu      sync.RWMutex
	entries map[string]cachedPlan
}

type cachedPlan struct {
	sql    string
	params []any
}

// NewMemoryPlanCache returns an empty MemoryPlanCache.
func NewMemoryPlanCache() *MemoryPlanCache {
	return &MemoryPlanCache{entries: make(map[string]cachedPlan)}
}

// Get implements PlanCache.
func (c *MemoryPlanCache) Get(_ context.Context, key string) (string, []any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return "", nil, false
	}
	return e.sql, e.params, true
}

// Set implements PlanCache.
func (c *MemoryPlanCache) Set(_ context.Context, key string, sql string, params []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedPlan{sql: sql, params: params}
}

// Clear implements PlanCache.
func (c *MemoryPlanCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedPlan)
}

// EndpointCache is the small per-transaction cache of confirmed edge
// endpoints described in spec §5: bulk inserts reuse it across items of
// the same batch to avoid redundant existence lookups for the same
// (kind, id) pair.
type EndpointCache struct {
	confirmed map[endpointKey]bool
}

type endpointKey struct {
	kind string
	id   string
}

// NewEndpointCache returns an empty EndpointCache. It is not safe for
// concurrent use — callers scope one per transaction, matching the
// single-threaded cooperative model described in spec §5.
func NewEndpointCache() *EndpointCache {
	return &EndpointCache{confirmed: make(map[endpointKey]bool)}
}

// Confirmed reports whether (kind, id) was already verified to exist
// within this transaction.
func (c *EndpointCache) Confirmed(kind, id string) bool {
	return c.confirmed[endpointKey{kind, id}]
}

// Confirm records that (kind, id) exists, so later lookups in the same
// batch can skip the backend round trip.
func (c *EndpointCache) Confirm(kind, id string) {
	c.confirmed[endpointKey{kind, id}] = true
}
