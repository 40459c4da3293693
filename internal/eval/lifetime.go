package eval

import (
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// WithinLifetime is the non-failing liveness probe.
//
// It walks the same union-ancestor chain the read validator walks, but
// instead of raising a diagnostic it answers false at the first inactive
// ancestor, and false for a scalar leaf that has not been written since it
// last became part of a live branch. An aggregate leaf whose ancestors are
// all active is within lifetime regardless of how much of it has been
// initialized: lifetime is reachability, not initialization.
//
// This supports diagnostic-free introspection distinct from ordinary
// (failing) access; it never mutates tracker state.
func WithinLifetime(p object.Path) bool {
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.IsIndex() || s.Rec.Kind() != types.Union {
			continue
		}
		if !s.Rec.IsActive(s.Field) {
			return false
		}
	}
	leaf := p.Leaf()
	if leaf == nil {
		return true
	}
	if _, isScalar := leaf.Type().(types.Scalar); isScalar {
		return leaf.Written()
	}
	return true
}
