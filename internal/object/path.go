package object

import (
	"fmt"
	"strings"

	"github.com/kestrel-lang/kestrel/internal/types"
)

// Step is one hop of a resolved designator path: either a field selection
// within a record or an index selection within an array cell.
type Step struct {
	// Rec is the record stepped through for field steps; nil for index steps.
	Rec   *Record
	Field int

	// Index is the element index for array index steps.
	Index int

	// Cell is the storage selected by this step.
	Cell *Cell

	// Offset is the byte offset this step contributes to the full address.
	Offset int64
}

// IsIndex reports whether the step selects an array element.
func (s *Step) IsIndex() bool { return s.Rec == nil }

// FieldName returns the declared name of a field step.
func (s *Step) FieldName() string {
	f := s.Rec.Desc().Field(s.Field)
	if f.Anonymous {
		return "<anonymous>"
	}
	return f.Name
}

// Path is a fully resolved designator: ordered steps from a root record down
// to one storage cell. Paths are values; extending one never mutates the
// original.
type Path struct {
	Root  *Record
	Steps []Step
}

// NewPath starts a path at a root record.
func NewPath(root *Record) Path {
	return Path{Root: root}
}

// Leaf returns the storage cell the path denotes, or nil for an empty path
// (which denotes the root record itself).
func (p Path) Leaf() *Cell {
	if len(p.Steps) == 0 {
		return nil
	}
	return p.Steps[len(p.Steps)-1].Cell
}

// LeafRecord returns the record the path denotes: the nested record of the
// leaf cell, or the root for an empty path. Nil when the leaf is not of
// record type.
func (p Path) LeafRecord() *Record {
	c := p.Leaf()
	if c == nil {
		return p.Root
	}
	return c.Record()
}

// current returns the record a field step must select from.
func (p Path) current() *Record {
	if c := p.Leaf(); c != nil {
		return c.Record()
	}
	return p.Root
}

// Field extends the path by a field selection on the current record.
func (p Path) Field(field int) Path {
	r := p.current()
	if r == nil {
		panic("object: field step on non-record storage")
	}
	f := r.Desc().Field(field)
	steps := make([]Step, len(p.Steps), len(p.Steps)+1)
	copy(steps, p.Steps)
	steps = append(steps, Step{
		Rec:    r,
		Field:  field,
		Cell:   r.Field(field),
		Offset: f.Offset,
	})
	return Path{Root: p.Root, Steps: steps}
}

// Index extends the path by an array element selection.
func (p Path) Index(i int) Path {
	c := p.Leaf()
	if c == nil || c.Len() == 0 {
		panic("object: index step on non-array storage")
	}
	arr := c.Type().(types.Array)
	elemSize := p.Root.Arena().SizeOf(arr.Elem)
	steps := make([]Step, len(p.Steps), len(p.Steps)+1)
	copy(steps, p.Steps)
	steps = append(steps, Step{
		Index:  i,
		Cell:   c.Elem(i),
		Offset: int64(i) * elemSize,
	})
	return Path{Root: p.Root, Steps: steps}
}

// Offset returns the statically computed byte offset of the path within its
// root record. Identity of two paths is a layout property: the offset never
// depends on activation state.
func (p Path) Offset() int64 {
	var off int64
	for i := range p.Steps {
		off += p.Steps[i].Offset
	}
	return off
}

// String renders the path as designator text for diagnostics and traces,
// e.g. "u.a[4].x". Anonymous wrapper hops are elided the way source-level
// indirect fields elide them.
func (p Path) String() string {
	var b strings.Builder
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.IsIndex() {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		f := s.Rec.Desc().Field(s.Field)
		if f.Anonymous {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.Name)
	}
	return b.String()
}
