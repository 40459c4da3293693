package object

import "github.com/kestrel-lang/kestrel/internal/types"

// Activate makes field the union's active member.
//
// If the field is already active this is a no-op: repeated stores to the
// live branch must not disturb previously written sibling cells. On an
// actual transition the superseded branch is deactivated recursively (every
// union nested inside it loses its active member) and the incoming branch's
// storage is returned to the unwritten state, since whatever it held before
// it last died is indeterminate.
//
// This is pure bookkeeping: no destructor evaluation is implied for a
// superseded non-trivial member. Destruction is an explicit event driven by
// initialization and assignment logic.
func (r *Record) Activate(field int) {
	if r.Kind() != types.Union || r.active == field {
		return
	}
	if r.active != noActive {
		r.fields[r.active].reset()
	}
	r.fields[field].reset()
	r.active = field
}

// DeactivateAll puts the union into the "no active member" state, used when
// an object becomes indeterminate (default construction with a user-provided
// constructor that has not yet run).
func (r *Record) DeactivateAll() {
	r.active = noActive
}

// IsActive reports whether field is the union's current active member.
// For struct records every field is considered active.
func (r *Record) IsActive(field int) bool {
	if r.Kind() != types.Union {
		return true
	}
	return r.active == field
}

// HasActive reports whether any member is active.
func (r *Record) HasActive() bool {
	return r.Kind() != types.Union || r.active != noActive
}

// ActiveIndex returns the active field index, or -1 when none is active.
func (r *Record) ActiveIndex() int { return r.active }

// ActiveName returns the active member's declared name, or "none". Used in
// diagnostics, so anonymous members render as their placeholder name.
func (r *Record) ActiveName() string {
	if r.Kind() != types.Union || r.active == noActive {
		return "none"
	}
	f := r.Desc().Field(r.active)
	if f.Anonymous {
		return "<anonymous>"
	}
	return f.Name
}

// DestroyActive ends the active member's lifetime. It reports false if
// field is not the active member; the caller turns that into the
// destroy-inactive diagnostic. On success the union has no active member.
// Storage is deliberately not cleared: the member is dead, not zeroed.
func (r *Record) DestroyActive(field int) bool {
	if r.Kind() != types.Union || r.active != field {
		return false
	}
	r.active = noActive
	return true
}
