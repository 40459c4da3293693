package types

// MemberStep is one hop of a resolved member path: the record being stepped
// through and the field index taken at that record.
type MemberStep struct {
	Record Handle
	Field  int
}

// ResolveMember resolves a member name against a record, walking through
// anonymous struct/union wrappers so that indirect fields can be named as if
// declared directly on the outer record.
//
// The result is the full ordered chain of (record, field) steps from the
// outer record down to the named member. Resolution is purely structural:
// activation state plays no part, and the first declaration-order match
// wins, matching how the front-end binds indirect fields.
func (a *Arena) ResolveMember(h Handle, name string) ([]MemberStep, bool) {
	d := a.Record(h)
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Unnamed {
			continue
		}
		if !f.Anonymous {
			if f.Name == name {
				return []MemberStep{{Record: h, Field: i}}, true
			}
			continue
		}
		ref, ok := f.Type.(RecordRef)
		if !ok {
			continue
		}
		if rest, ok := a.ResolveMember(ref.Handle, name); ok {
			steps := make([]MemberStep, 0, len(rest)+1)
			steps = append(steps, MemberStep{Record: h, Field: i})
			steps = append(steps, rest...)
			return steps, true
		}
	}
	return nil, false
}

// FirstNamedField returns the first declaration-order field eligible for
// zero-initialization member selection: named fields and anonymous wrappers
// qualify, unnamed bitfield placeholders do not.
func (d *RecordDesc) FirstNamedField() (int, bool) {
	for i := range d.Fields {
		if !d.Fields[i].Unnamed {
			return i, true
		}
	}
	return -1, false
}

// DefaultedField returns the declaration-order first field carrying an
// in-class default member initializer. For well-formed unions at most one
// field carries one.
func (d *RecordDesc) DefaultedField() (int, bool) {
	for i := range d.Fields {
		if d.Fields[i].Default != nil {
			return i, true
		}
	}
	return -1, false
}
