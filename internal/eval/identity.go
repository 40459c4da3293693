package eval

import (
	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// SameAddress decides whether two resolved designator paths necessarily
// denote the same storage address, purely from static layout. Activation
// state plays no part: two union alternatives compare equal whether or not
// either is alive.
//
// Rules:
//   - Paths rooted in distinct objects are provably distinct.
//   - Identical offsets with identical leaf types within one root are
//     provably equal.
//   - When the paths diverge at a union, the guarantee only extends through
//     the alternatives' common initial sequence (the longest
//     identically-laid-out prefix, a property of offsets and scalar kinds,
//     not of field names). A comparison reaching past that run is not
//     constant foldable and reports a diagnostic rather than asserting
//     either answer.
//   - Otherwise, statically distinct offsets are provably distinct.
func SameAddress(a, b object.Path, src diag.SrcHandle) (bool, *diag.Diagnostic) {
	if a.Root != b.Root {
		return false, nil
	}

	div := divergence(a, b)
	if div >= 0 {
		atUnion, foldable := unionDivergence(a, b, div)
		if atUnion && !foldable {
			return false, diag.AddressUnfoldable(src, a.String(), b.String())
		}
	}

	if a.Offset() != b.Offset() {
		return false, nil
	}
	return leafTypesEqual(a, b, src)
}

// divergence returns the index of the first differing step, or -1 when one
// path is a prefix of the other (including identical paths).
func divergence(a, b object.Path) int {
	n := min(len(a.Steps), len(b.Steps))
	for i := 0; i < n; i++ {
		sa, sb := &a.Steps[i], &b.Steps[i]
		if sa.IsIndex() != sb.IsIndex() {
			return i
		}
		if sa.IsIndex() {
			if sa.Index != sb.Index {
				return i
			}
			continue
		}
		if sa.Field != sb.Field {
			return i
		}
	}
	return -1
}

// unionDivergence inspects a divergence at a union level. It reports
// whether the divergence selects two union alternatives and, if so, whether
// both remainders stay within the alternatives' common initial sequence.
func unionDivergence(a, b object.Path, div int) (atUnion, foldable bool) {
	sa, sb := &a.Steps[div], &b.Steps[div]
	if sa.IsIndex() || sb.IsIndex() || sa.Rec.Kind() != types.Union {
		return false, true
	}
	arena := a.Root.Arena()
	fa := sa.Rec.Desc().Field(sa.Field)
	fb := sb.Rec.Desc().Field(sb.Field)

	run := commonRun(arena, fa.Type, fb.Type)
	return true, withinRun(arena, fa.Type, a, div, run) && withinRun(arena, fb.Type, b, div, run)
}

// commonRun computes the common initial sequence of two alternative types,
// measured in flattened layout leaves. The prefix fingerprints make the
// comparison a hash check per candidate length.
func commonRun(arena *types.Arena, ta, tb types.Type) int {
	la := arena.TypeLeaves(ta)
	lb := arena.TypeLeaves(tb)
	n := min(len(la), len(lb))
	for run := n; run > 0; run-- {
		fa, errA := arena.LeafFingerprint(la[:run])
		fb, errB := arena.LeafFingerprint(lb[:run])
		if errA == nil && errB == nil && fa == fb {
			return run
		}
	}
	return 0
}

// withinRun reports whether the path's remainder past the divergence stays
// inside the first run leaves of the alternative's layout.
func withinRun(arena *types.Arena, alt types.Type, p object.Path, div int, run int) bool {
	var rel int64
	for i := div + 1; i < len(p.Steps); i++ {
		rel += p.Steps[i].Offset
	}
	if len(p.Steps) == div+1 {
		// Address of the alternative itself: its first leaf.
		return run > 0
	}
	leaves := arena.TypeLeaves(alt)
	for ord := range leaves {
		if leaves[ord].Offset == rel {
			return ord < run
		}
	}
	return false
}

// leafTypesEqual applies the identical-element-type requirement for
// provably-equal addresses. Equal offsets with differing leaf types cannot
// be folded either way.
func leafTypesEqual(a, b object.Path, src diag.SrcHandle) (bool, *diag.Diagnostic) {
	ta := leafType(a)
	tb := leafType(b)
	if types.Equal(ta, tb) {
		return true, nil
	}
	return false, diag.AddressUnfoldable(src, a.String(), b.String())
}

func leafType(p object.Path) types.Type {
	if c := p.Leaf(); c != nil {
		return c.Type()
	}
	return types.RecordRef{Handle: p.Root.Handle()}
}
