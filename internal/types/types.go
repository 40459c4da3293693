package types

import "fmt"

// RecordKind distinguishes struct layout from union layout.
type RecordKind int

const (
	// Struct records have all fields simultaneously alive.
	Struct RecordKind = iota
	// Union records have at most one alive field at any instant.
	Union
)

// String returns the source-level keyword for the kind.
func (k RecordKind) String() string {
	switch k {
	case Struct:
		return "struct"
	case Union:
		return "union"
	default:
		return fmt.Sprintf("RecordKind(%d)", int(k))
	}
}

// Handle is a stable index into an Arena.
//
// Handles are plain integers so that descriptors can reference each other
// (including recursively through anonymous members) without owning pointers.
type Handle int

// InvalidHandle is the zero-object sentinel for Handle fields.
const InvalidHandle Handle = -1

// ScalarKind enumerates the trivial scalar categories the evaluator stores.
type ScalarKind int

const (
	Int ScalarKind = iota
	Uint
	Float
	Bool
)

// String returns a lowercase name for diagnostics and canonical layouts.
func (k ScalarKind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("ScalarKind(%d)", int(k))
	}
}

// Type is a sealed interface over the three storage shapes the object model
// understands. Only Scalar, Array, and RecordRef implement it.
type Type interface {
	typ() // Sealed - only these types implement it
}

// Scalar is a trivially-copyable value slot. Bytes is the storage width in
// bytes as supplied by the collaborator's layout.
type Scalar struct {
	Kind  ScalarKind
	Bytes int64
}

func (Scalar) typ() {}

// Array is fixed-length element storage. Arrays never carry union semantics
// themselves; only Elem may.
type Array struct {
	Elem Type
	Len  int
}

func (Array) typ() {}

// RecordRef names a nested aggregate by arena handle.
type RecordRef struct {
	Handle Handle
}

func (RecordRef) typ() {}

// Equal reports structural equality of two types. RecordRefs compare by
// handle: the arena never holds two descriptors for the same declared type.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Scalar:
		bv, ok := b.(Scalar)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		return ok && av.Len == bv.Len && Equal(av.Elem, bv.Elem)
	case RecordRef:
		bv, ok := b.(RecordRef)
		return ok && av.Handle == bv.Handle
	default:
		return false
	}
}

// Evaluator is collaborator-supplied construct/destroy/copy/move logic for a
// non-trivial member or record. The storage argument is the member's live
// storage (an *object.Record or *object.Cell); it is typed as any so this
// package stays foundational.
type Evaluator func(storage any) error

// Special carries the evaluators for a non-trivial member. A nil *Special on
// a field means the member is trivial: transitions are pure bookkeeping plus
// bit-storage copies, with no evaluator involvement.
type Special struct {
	Construct Evaluator
	Destroy   Evaluator
	Copy      Evaluator
	Move      Evaluator
}

// FieldDesc describes one member of a record.
//
// Offset is the byte offset within the owning record, fixed at layout time.
// Address-identity reasoning depends only on offsets and types, never on
// activation state.
type FieldDesc struct {
	Name   string
	Index  int
	Type   Type
	Offset int64

	// Bits is the declared bitfield width; zero means not a bitfield.
	// Stores through a bitfield mask the value to this width.
	Bits int

	// Unnamed marks an unnamed bitfield placeholder. Unnamed fields occupy
	// layout but are skipped by zero-initialization member selection and
	// cannot be designated or addressed.
	Unnamed bool

	// Anonymous marks an unnamed struct/union member whose own fields are
	// reachable as if declared directly on the enclosing record.
	Anonymous bool

	// Default is the in-class default member initializer, if any.
	Default Init

	// Special is non-nil for members of non-trivial class type.
	Special *Special
}

// IsBitfield reports whether the field was declared with a bit width.
func (f *FieldDesc) IsBitfield() bool { return f.Bits > 0 }

// RecordDesc describes one struct or union layout.
type RecordDesc struct {
	Name   string
	Kind   RecordKind
	Size   int64
	Fields []FieldDesc

	// HasUserCtor suppresses zero-initialization: construction leaves the
	// record indeterminate until the constructor logic activates a member.
	HasUserCtor bool

	// Destroy is the record's own user-provided destructor semantics, run at
	// scope exit. Member destructors are never implied by it.
	Destroy Evaluator
}

// Field returns the field descriptor at index i.
func (d *RecordDesc) Field(i int) *FieldDesc { return &d.Fields[i] }

// FieldByName finds a directly declared, named field.
func (d *RecordDesc) FieldByName(name string) (*FieldDesc, bool) {
	for i := range d.Fields {
		f := &d.Fields[i]
		if !f.Unnamed && !f.Anonymous && f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Arena owns every record descriptor for one type universe.
//
// Descriptors are appended once during front-end handoff and are read-only
// afterwards; evaluation never mutates the arena.
type Arena struct {
	records []RecordDesc
	byName  map[string]Handle
}

// NewArena creates an empty descriptor arena.
func NewArena() *Arena {
	return &Arena{byName: make(map[string]Handle)}
}

// Add appends a descriptor and returns its handle. Field indices are
// normalized to declaration order.
func (a *Arena) Add(d RecordDesc) Handle {
	for i := range d.Fields {
		d.Fields[i].Index = i
	}
	h := Handle(len(a.records))
	a.records = append(a.records, d)
	if d.Name != "" {
		a.byName[d.Name] = h
	}
	return h
}

// Record returns the descriptor for h. The pointer aliases arena storage and
// must be treated as read-only.
func (a *Arena) Record(h Handle) *RecordDesc {
	return &a.records[h]
}

// Lookup finds a named record's handle.
func (a *Arena) Lookup(name string) (Handle, bool) {
	h, ok := a.byName[name]
	return h, ok
}

// Len returns the number of descriptors in the arena.
func (a *Arena) Len() int { return len(a.records) }

// SizeOf resolves the byte size of a type against the arena.
func (a *Arena) SizeOf(t Type) int64 {
	switch tv := t.(type) {
	case Scalar:
		return tv.Bytes
	case Array:
		return a.SizeOf(tv.Elem) * int64(tv.Len)
	case RecordRef:
		return a.Record(tv.Handle).Size
	default:
		return 0
	}
}
