package eval

import (
	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// AccessKind parameterizes the single validation entry point.
type AccessKind int

const (
	Read AccessKind = iota
	Write
	Call
	Destroy
	AddressOf
)

// String returns the trace name of the access kind.
func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case Call:
		return "call"
	case Destroy:
		return "destroy"
	case AddressOf:
		return "address-of"
	default:
		return "access"
	}
}

// Access is the gatekeeper for every operation on a resolved path. Every
// read, write, member call, destroy, and address-of routes through here
// before touching storage.
//
// Policy, step by step along the path:
//   - AddressOf always succeeds; identity is a layout property and never
//     consults activation state.
//   - Read and Call require every union ancestor to have the step's field
//     as its active member. The first failing step is reported, naming the
//     requested field and the actually-active one. A read whose ancestors
//     all pass but whose leaf was never written reports an uninitialized
//     read instead: "active but never assigned" is a distinct condition
//     from inactivity.
//   - Write never fails here. Activation of the ancestors is a separate,
//     explicit effect (applyWriteActivation) so that non-trivial targets
//     can defer it to their construct/assign logic.
//   - Destroy checks the target's own union level first (destroy-inactive
//     is its own category, regardless of ancestor activity), then the
//     ancestors like a read.
func Access(p object.Path, kind AccessKind, src diag.SrcHandle) *diag.Diagnostic {
	switch kind {
	case AddressOf, Write:
		return nil
	case Destroy:
		if d := checkDestroyLevel(p, src); d != nil {
			return d
		}
	}

	for i := range p.Steps {
		s := &p.Steps[i]
		if s.IsIndex() || s.Rec.Kind() != types.Union {
			continue
		}
		if kind == Destroy && i == len(p.Steps)-1 {
			// Own level already checked with its own category.
			continue
		}
		if !s.Rec.IsActive(s.Field) {
			if kind == Call && i == len(p.Steps)-1 {
				return diag.CallInactive(src, s.FieldName(), s.Rec.ActiveName())
			}
			return diag.ReadInactive(src, s.FieldName(), s.Rec.ActiveName())
		}
	}

	if kind == Read {
		if leaf := p.Leaf(); leaf != nil {
			if _, isScalar := leaf.Type().(types.Scalar); isScalar && !leaf.Written() {
				return diag.ReadUninit(src)
			}
		}
	}
	return nil
}

// checkDestroyLevel validates the destroy target at its own union level.
func checkDestroyLevel(p object.Path, src diag.SrcHandle) *diag.Diagnostic {
	if len(p.Steps) == 0 {
		return nil
	}
	last := &p.Steps[len(p.Steps)-1]
	if last.IsIndex() || last.Rec.Kind() != types.Union {
		return nil
	}
	if !last.Rec.IsActive(last.Field) {
		return diag.DestroyInactive(src, last.FieldName(), last.Rec.ActiveName())
	}
	return nil
}

// applyWriteActivation performs the implicit activation a validated scalar
// write carries: every union ancestor along the path activates the step's
// field, cascading deactivation of sibling branches. Anonymous wrapper
// levels activate exactly like named ones.
func applyWriteActivation(p object.Path) {
	for i := range p.Steps {
		s := &p.Steps[i]
		if !s.IsIndex() && s.Rec.Kind() == types.Union {
			s.Rec.Activate(s.Field)
		}
	}
}
