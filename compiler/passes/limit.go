package passes

import "github.com/nicia-ai/typegraph-sub002/ast"

// EffectiveLimit implements spec.md §4.E.4: when a vector KNN is
// present and no explicit limit was set on the query, the predicate's
// requested neighbor count k becomes the effective plan limit.
func EffectiveLimit(explicitLimit *int, vectorKnn *ast.VectorSimilarity) *int {
	if explicitLimit != nil {
		return explicitLimit
	}
	if vectorKnn == nil {
		return nil
	}
	k := vectorKnn.K
	return &k
}
