package object

import (
	"fmt"

	"github.com/kestrel-lang/kestrel/internal/types"
)

// noActive is the tracker state for "no active member".
const noActive = -1

// Record is live storage for one struct or union value.
type Record struct {
	arena  *types.Arena
	handle types.Handle
	fields []*Cell

	// active is the union's live field index, or noActive. Structs keep it
	// at noActive permanently.
	active int
}

// NewRecord allocates the full storage tree for a record type. Every cell
// starts unwritten and every nested union starts with no active member.
func NewRecord(arena *types.Arena, h types.Handle) *Record {
	d := arena.Record(h)
	r := &Record{
		arena:  arena,
		handle: h,
		fields: make([]*Cell, len(d.Fields)),
		active: noActive,
	}
	for i := range d.Fields {
		f := &d.Fields[i]
		r.fields[i] = newCell(arena, f.Type, f.Bits)
	}
	return r
}

// Arena returns the descriptor arena this record was allocated against.
func (r *Record) Arena() *types.Arena { return r.arena }

// Handle returns the record's type handle.
func (r *Record) Handle() types.Handle { return r.handle }

// Desc returns the record's type descriptor.
func (r *Record) Desc() *types.RecordDesc { return r.arena.Record(r.handle) }

// Kind returns struct or union.
func (r *Record) Kind() types.RecordKind { return r.Desc().Kind }

// NumFields returns the field count.
func (r *Record) NumFields() int { return len(r.fields) }

// Field returns the storage cell for field index i.
func (r *Record) Field(i int) *Cell { return r.fields[i] }

// Cell is one typed storage slot: a scalar leaf, a nested record, or array
// element storage. A cell is exclusively owned by its parent.
type Cell struct {
	typ  types.Type
	bits int // bitfield width when the owning field declared one

	written bool
	scalar  types.Value
	rec     *Record
	elems   []*Cell
}

func newCell(arena *types.Arena, t types.Type, bits int) *Cell {
	c := &Cell{typ: t, bits: bits}
	switch tv := t.(type) {
	case types.RecordRef:
		c.rec = NewRecord(arena, tv.Handle)
	case types.Array:
		c.elems = make([]*Cell, tv.Len)
		for i := range c.elems {
			c.elems[i] = newCell(arena, tv.Elem, 0)
		}
	}
	return c
}

// Type returns the cell's storage type.
func (c *Cell) Type() types.Type { return c.typ }

// Record returns the nested record, or nil for non-record cells.
func (c *Cell) Record() *Record { return c.rec }

// Len returns the element count for array cells, zero otherwise.
func (c *Cell) Len() int { return len(c.elems) }

// Elem returns array element storage at index i.
func (c *Cell) Elem(i int) *Cell { return c.elems[i] }

// Written reports whether the scalar leaf has been stored to since the cell
// last became part of a live branch.
func (c *Cell) Written() bool { return c.written }

// Scalar returns the stored scalar value. Only meaningful when Written.
func (c *Cell) Scalar() types.Value { return c.scalar }

// Store writes a scalar into a leaf cell, masking bitfield values to their
// declared width.
func (c *Cell) Store(v types.Value) {
	if _, ok := c.typ.(types.Scalar); !ok {
		panic(fmt.Sprintf("object: Store on non-scalar cell of type %T", c.typ))
	}
	if c.bits > 0 {
		v = maskBitfield(v, c.bits)
	}
	c.scalar = v
	c.written = true
}

// maskBitfield truncates an integral value to width bits, sign-extending
// signed values from the declared width.
func maskBitfield(v types.Value, width int) types.Value {
	if width <= 0 || width >= 64 {
		return v
	}
	mask := uint64(1)<<uint(width) - 1
	switch val := v.(type) {
	case types.UintVal:
		return types.UintVal(uint64(val) & mask)
	case types.IntVal:
		u := uint64(val) & mask
		if u&(1<<uint(width-1)) != 0 {
			u |= ^mask
		}
		return types.IntVal(int64(u))
	default:
		return v
	}
}

// reset returns the cell subtree to the unwritten state and clears the
// active member of every union within it. Used when a branch is superseded
// or freshly re-activated: storage content outside the live branch is
// indeterminate, never resurrected.
func (c *Cell) reset() {
	c.written = false
	c.scalar = nil
	if c.rec != nil {
		c.rec.active = noActive
		for _, f := range c.rec.fields {
			f.reset()
		}
	}
	for _, e := range c.elems {
		e.reset()
	}
}

// CopyFrom transfers storage content bit-for-bit from a same-typed source
// cell: scalar values, written flags, and the activation state of every
// nested union. The caller is responsible for activation bookkeeping at the
// destination's own union level.
func (c *Cell) CopyFrom(src *Cell) {
	c.written = src.written
	c.scalar = src.scalar
	if c.rec != nil {
		c.rec.CopyFrom(src.rec)
	}
	for i, e := range c.elems {
		e.CopyFrom(src.elems[i])
	}
}

// CopyFrom transfers a whole record's storage from a same-typed source,
// including nested activation state.
func (r *Record) CopyFrom(src *Record) {
	if r.handle != src.handle {
		panic(fmt.Sprintf("object: CopyFrom across types %q and %q", r.Desc().Name, src.Desc().Name))
	}
	r.active = src.active
	for i, f := range r.fields {
		f.CopyFrom(src.fields[i])
	}
}
