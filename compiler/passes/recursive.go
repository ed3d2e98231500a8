package passes

import (
	"github.com/nicia-ai/typegraph-sub002"
	"github.com/nicia-ai/typegraph-sub002/ast"
)

// SelectRecursiveTraversal implements spec.md §4.E.3: at most one
// traversal in traversals may carry VariableLength. It returns that
// traversal's index, or -1 if none does, and fails if more than one
// does.
func SelectRecursiveTraversal(traversals []ast.Traversal) (int, error) {
	found := -1
	for i, t := range traversals {
		if t.VariableLength == nil {
			continue
		}
		if found != -1 {
			return -1, typegraph.NewUnsupportedPredicateError(
				"at most one variable-length traversal is supported per query",
				"variableLength",
			)
		}
		found = i
	}
	return found, nil
}
