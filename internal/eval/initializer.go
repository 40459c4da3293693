package eval

import (
	"fmt"

	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// InitSpec is a sealed interface over the initialization forms a
// declaration or temporary can carry. Only DefaultSpec, ValueSpec,
// BracedSpec, CtorSpec, and CopySpec implement it.
type InitSpec interface {
	initSpec() // Sealed - only these types implement it
}

// DefaultSpec is default-initialization: "T u;". Without a user
// constructor the object is indeterminate (no union member active, nothing
// written). With one, the registered default constructor runs.
type DefaultSpec struct{}

func (DefaultSpec) initSpec() {}

// ValueSpec is value-initialization: "T u{};" or "T()". Without a user
// constructor this zero-initializes; with one, the constructor runs.
type ValueSpec struct{}

func (ValueSpec) initSpec() {}

// BracedSpec is aggregate initialization from a braced list, positional
// or designated.
type BracedSpec struct {
	List types.ListInit
}

func (BracedSpec) initSpec() {}

// CtorSpec runs an explicit constructor (a specific overload's member
// initializers and body).
type CtorSpec struct {
	Ctor *Ctor
}

func (CtorSpec) initSpec() {}

// CopySpec copy- or move-initializes from a same-typed source expression.
// Move differs from copy only in which collaborator evaluator runs for
// non-trivial members; activation transfer is identical.
type CopySpec struct {
	From Expr
	Move bool
}

func (CopySpec) initSpec() {}

// Ctor is the core-visible shape of collaborator constructor logic: member
// initializers applied in declaration order, then a body of ordinary
// statements evaluated with the object bound as "this".
type Ctor struct {
	Name        string
	MemberInits []MemberInit
	Body        []Stmt
}

// MemberInit initializes one member, resolving through anonymous wrappers
// and activating every union level the path crosses.
type MemberInit struct {
	Member string
	Init   types.Init
}

// initRecord applies an initialization spec to freshly allocated storage.
func (c *Context) initRecord(rec *object.Record, spec InitSpec, src diag.SrcHandle) *diag.Diagnostic {
	switch s := spec.(type) {
	case DefaultSpec:
		if rec.Desc().HasUserCtor {
			if ctor, ok := c.ctors[rec.Handle()]; ok {
				return c.runCtor(rec, ctor, src)
			}
		}
		// Trivial default-init: indeterminate state. Fresh storage is
		// already unwritten with no active members.
		rec.DeactivateAll()
		return nil
	case ValueSpec:
		if rec.Desc().HasUserCtor {
			if ctor, ok := c.ctors[rec.Handle()]; ok {
				return c.runCtor(rec, ctor, src)
			}
			rec.DeactivateAll()
			return nil
		}
		return c.zeroInitRecord(rec, src)
	case BracedSpec:
		if rec.Desc().HasUserCtor {
			if ctor, ok := c.ctors[rec.Handle()]; ok {
				return c.runCtor(rec, ctor, src)
			}
		}
		return c.initRecordFromList(rec, s.List, src)
	case CtorSpec:
		return c.runCtor(rec, s.Ctor, src)
	case CopySpec:
		res, d := c.Eval(s.From)
		if d != nil {
			return d
		}
		if res.Rec == nil {
			return diag.New(diag.NeverConstant, src, "copy initialization from non-aggregate value")
		}
		return c.copyRecord(rec, res.Rec, s.Move, src)
	default:
		panic(fmt.Sprintf("eval: unknown init spec %T", spec))
	}
}

// zeroInitRecord performs zero-initialization.
//
// For a union: the first declared member in declaration order is activated
// and recursively zero-initialized, skipping unnamed bitfield placeholders.
// A member carrying an in-class default member initializer takes priority,
// initialized from it instead of from zeros.
//
// For a struct: every field zero-initializes (or applies its default
// member initializer), arrays element by element.
func (c *Context) zeroInitRecord(rec *object.Record, src diag.SrcHandle) *diag.Diagnostic {
	d := rec.Desc()
	if d.Kind == types.Union {
		idx, ok := d.DefaultedField()
		if !ok {
			idx, ok = d.FirstNamedField()
			if !ok {
				// Empty union: constructible, nothing to activate.
				return nil
			}
		}
		rec.Activate(idx)
		return c.zeroOrDefaultField(rec, idx, src)
	}
	for i := range d.Fields {
		if d.Fields[i].Unnamed {
			continue
		}
		if dg := c.zeroOrDefaultField(rec, i, src); dg != nil {
			return dg
		}
	}
	return nil
}

func (c *Context) zeroOrDefaultField(rec *object.Record, field int, src diag.SrcHandle) *diag.Diagnostic {
	f := rec.Desc().Field(field)
	cell := rec.Field(field)
	if f.Default != nil {
		return c.initCell(cell, f.Default, src)
	}
	return c.zeroInitCell(cell, src)
}

func (c *Context) zeroInitCell(cell *object.Cell, src diag.SrcHandle) *diag.Diagnostic {
	switch t := cell.Type().(type) {
	case types.Scalar:
		cell.Store(types.ZeroValue(t.Kind))
		return nil
	case types.Array:
		for i := 0; i < cell.Len(); i++ {
			if d := c.zeroInitCell(cell.Elem(i), src); d != nil {
				return d
			}
		}
		return nil
	case types.RecordRef:
		return c.zeroInitRecord(cell.Record(), src)
	default:
		return nil
	}
}

// initRecordFromList applies a braced initializer list.
//
// Union rules: an empty list value-initializes. Exactly one element is
// allowed; it targets the designated member, or the first named member
// when positional. Anything beyond that is an excess-initializer error.
//
// Struct rules: positional elements bind to fields in declaration order
// (skipping unnamed bitfield placeholders); a designator jumps to its
// member and positional binding resumes after it. Fields left without an
// element take their default member initializer or zero-initialize.
func (c *Context) initRecordFromList(rec *object.Record, list types.ListInit, src diag.SrcHandle) *diag.Diagnostic {
	d := rec.Desc()
	if d.Kind == types.Union {
		return c.initUnionFromList(rec, list, src)
	}

	covered := make([]bool, len(d.Fields))
	next := 0
	for _, elem := range list.Elems {
		if fi, ok := elem.(types.FieldInit); ok {
			steps, found := rec.Arena().ResolveMember(rec.Handle(), fi.Field)
			if !found {
				return diag.New(diag.NeverConstant, src, "no member '%s' in '%s'", fi.Field, d.Name)
			}
			if dg := c.initThroughSteps(rec, steps, fi.Init, src); dg != nil {
				return dg
			}
			if steps[0].Record == rec.Handle() {
				covered[steps[0].Field] = true
				next = steps[0].Field + 1
			}
			continue
		}
		for next < len(d.Fields) && d.Fields[next].Unnamed {
			next++
		}
		if next >= len(d.Fields) {
			return diag.ExcessElements(src, d.Name)
		}
		if dg := c.initCell(rec.Field(next), elem, src); dg != nil {
			return dg
		}
		covered[next] = true
		next++
	}

	for i := range d.Fields {
		if covered[i] || d.Fields[i].Unnamed {
			continue
		}
		if dg := c.zeroOrDefaultField(rec, i, src); dg != nil {
			return dg
		}
	}
	return nil
}

func (c *Context) initUnionFromList(rec *object.Record, list types.ListInit, src diag.SrcHandle) *diag.Diagnostic {
	d := rec.Desc()
	if len(list.Elems) == 0 {
		return c.zeroInitRecord(rec, src)
	}
	if len(list.Elems) > 1 {
		return diag.ExcessElements(src, d.Name)
	}
	elem := list.Elems[0]
	if fi, ok := elem.(types.FieldInit); ok {
		steps, found := rec.Arena().ResolveMember(rec.Handle(), fi.Field)
		if !found {
			return diag.New(diag.NeverConstant, src, "no member '%s' in '%s'", fi.Field, d.Name)
		}
		return c.initThroughSteps(rec, steps, fi.Init, src)
	}
	idx, ok := d.FirstNamedField()
	if !ok {
		return diag.ExcessElements(src, d.Name)
	}
	rec.Activate(idx)
	return c.initCell(rec.Field(idx), elem, src)
}

// initThroughSteps initializes a member reached through a resolved chain of
// (record, field) hops, activating every union level the chain crosses.
// The cascade rule applies at each level: activating one branch of an
// anonymous union deactivates unions reachable only through its siblings.
func (c *Context) initThroughSteps(rec *object.Record, steps []types.MemberStep, init types.Init, src diag.SrcHandle) *diag.Diagnostic {
	cur := rec
	for i, ms := range steps {
		if cur.Kind() == types.Union {
			cur.Activate(ms.Field)
		}
		cell := cur.Field(ms.Field)
		if i == len(steps)-1 {
			return c.initCell(cell, init, src)
		}
		cur = cell.Record()
	}
	return nil
}

// initCell applies an initializer form to one storage cell.
func (c *Context) initCell(cell *object.Cell, init types.Init, src diag.SrcHandle) *diag.Diagnostic {
	switch iv := init.(type) {
	case types.ScalarInit:
		if _, ok := cell.Type().(types.Scalar); !ok {
			return diag.New(diag.NeverConstant, src, "scalar initializer for aggregate storage")
		}
		cell.Store(iv.Val)
		return nil
	case types.ListInit:
		switch t := cell.Type().(type) {
		case types.Array:
			if len(iv.Elems) > cell.Len() {
				return diag.ExcessElements(src, fmt.Sprintf("array of %d", t.Len))
			}
			for i := 0; i < cell.Len(); i++ {
				if i < len(iv.Elems) {
					if d := c.initCell(cell.Elem(i), iv.Elems[i], src); d != nil {
						return d
					}
					continue
				}
				if d := c.zeroInitCell(cell.Elem(i), src); d != nil {
					return d
				}
			}
			return nil
		case types.RecordRef:
			return c.initRecordFromList(cell.Record(), iv, src)
		default:
			if len(iv.Elems) == 1 {
				// Scalar in redundant braces.
				return c.initCell(cell, iv.Elems[0], src)
			}
			return diag.New(diag.NeverConstant, src, "braced initializer for scalar storage")
		}
	case types.FieldInit:
		rec := cell.Record()
		if rec == nil {
			return diag.New(diag.NeverConstant, src, "designated initializer for non-record storage")
		}
		return c.initRecordFromList(rec, types.ListInit{Elems: []types.Init{iv}}, src)
	default:
		panic(fmt.Sprintf("eval: unknown initializer %T", init))
	}
}

// runCtor evaluates collaborator constructor logic: member initializers in
// declaration order, outstanding default member initializers, then the
// body with the object bound as "this".
//
// A union constructed this way starts with no member active; only the
// member initializers, defaults, and body assignments activate one. If the
// constructor never activates a member, later reads fail at the validator.
func (c *Context) runCtor(rec *object.Record, ctor *Ctor, src diag.SrcHandle) *diag.Diagnostic {
	if ctor == nil {
		rec.DeactivateAll()
		return nil
	}
	if rec.Kind() == types.Union {
		rec.DeactivateAll()
	}
	for _, mi := range ctor.MemberInits {
		steps, ok := rec.Arena().ResolveMember(rec.Handle(), mi.Member)
		if !ok {
			return diag.New(diag.NeverConstant, src, "no member '%s' in '%s'", mi.Member, rec.Desc().Name)
		}
		if d := c.initThroughSteps(rec, steps, mi.Init, src); d != nil {
			return d
		}
	}
	if d := c.applyOutstandingDefaults(rec, src); d != nil {
		return d
	}
	if len(ctor.Body) > 0 {
		c.pushScope(false)
		if err := c.declare("this", rec); err != nil {
			c.popScope()
			return diag.New(diag.NeverConstant, src, "%v", err)
		}
		if _, _, d := c.execStmts(ctor.Body); d != nil {
			c.popScope()
			return d
		}
		if d := c.popScope(); d != nil {
			return d
		}
	}
	return nil
}

// applyOutstandingDefaults applies in-class default member initializers to
// members the constructor's initializers did not cover, in declaration
// order. A union whose constructor activated some member is covered; one
// still without an active member takes its defaulted field, if any.
func (c *Context) applyOutstandingDefaults(rec *object.Record, src diag.SrcHandle) *diag.Diagnostic {
	d := rec.Desc()
	if d.Kind == types.Union {
		if rec.ActiveIndex() != -1 {
			return nil
		}
		idx, ok := d.DefaultedField()
		if !ok {
			return nil
		}
		rec.Activate(idx)
		return c.initCell(rec.Field(idx), d.Fields[idx].Default, src)
	}
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Unnamed {
			continue
		}
		cell := rec.Field(i)
		switch f.Type.(type) {
		case types.Scalar:
			if !cell.Written() && f.Default != nil {
				if dg := c.initCell(cell, f.Default, src); dg != nil {
					return dg
				}
			}
		case types.RecordRef:
			if dg := c.applyOutstandingDefaults(cell.Record(), src); dg != nil {
				return dg
			}
		}
	}
	return nil
}

// copyRecord transfers value and liveness from a same-typed source.
//
// For a union the destination's active member is set to match the source
// (with the usual cascading deactivation of the destination's prior
// state); a source with no active member leaves the destination with none.
// Trivial members transfer as a bit-storage copy. A non-trivial member's
// own copy or move evaluator, when supplied, runs after activation to
// transfer content.
func (c *Context) copyRecord(dst, src *object.Record, move bool, at diag.SrcHandle) *diag.Diagnostic {
	if dst.Handle() != src.Handle() {
		return diag.New(diag.NeverConstant, at,
			"copy between distinct types '%s' and '%s'", dst.Desc().Name, src.Desc().Name)
	}
	d := dst.Desc()
	if d.Kind == types.Union {
		if src.ActiveIndex() == -1 {
			dst.DeactivateAll()
			return nil
		}
		idx := src.ActiveIndex()
		dst.Activate(idx)
		f := d.Field(idx)
		if f.Special != nil {
			ev := f.Special.Copy
			if move {
				ev = f.Special.Move
			}
			if ev != nil {
				if err := ev(dst.Field(idx)); err != nil {
					return evaluatorDiag(err, at)
				}
				return nil
			}
		}
		dst.Field(idx).CopyFrom(src.Field(idx))
		return nil
	}
	for i := range d.Fields {
		f := d.Field(i)
		dc, sc := dst.Field(i), src.Field(i)
		if nested := dc.Record(); nested != nil {
			if dg := c.copyRecord(nested, sc.Record(), move, at); dg != nil {
				return dg
			}
			continue
		}
		if f.Special != nil {
			ev := f.Special.Copy
			if move {
				ev = f.Special.Move
			}
			if ev != nil {
				if err := ev(dc); err != nil {
					return evaluatorDiag(err, at)
				}
				continue
			}
		}
		dc.CopyFrom(sc)
	}
	return nil
}

// CheckComplete verifies that a record is a complete constant: every
// scalar reachable along active branches has been written. Used when a
// value is materialized as a top-level constant; ordinary member reads do
// not require sibling subobjects to be initialized.
func CheckComplete(rec *object.Record, src diag.SrcHandle) *diag.Diagnostic {
	return checkCompleteRecord(rec, src)
}

func checkCompleteRecord(rec *object.Record, src diag.SrcHandle) *diag.Diagnostic {
	d := rec.Desc()
	if d.Kind == types.Union {
		idx := rec.ActiveIndex()
		if idx == -1 {
			return nil
		}
		return checkCompleteCell(rec.Field(idx), fieldDisplayName(d.Field(idx)), src)
	}
	for i := range d.Fields {
		if d.Fields[i].Unnamed {
			continue
		}
		if dg := checkCompleteCell(rec.Field(i), fieldDisplayName(d.Field(i)), src); dg != nil {
			return dg
		}
	}
	return nil
}

func checkCompleteCell(cell *object.Cell, name string, src diag.SrcHandle) *diag.Diagnostic {
	switch cell.Type().(type) {
	case types.Scalar:
		if !cell.Written() {
			return diag.SubobjectUninit(src, name)
		}
		return nil
	case types.Array:
		for i := 0; i < cell.Len(); i++ {
			if d := checkCompleteCell(cell.Elem(i), fmt.Sprintf("%s[%d]", name, i), src); d != nil {
				return d
			}
		}
		return nil
	case types.RecordRef:
		return checkCompleteRecord(cell.Record(), src)
	default:
		return nil
	}
}

func fieldDisplayName(f *types.FieldDesc) string {
	if f.Anonymous {
		return "<anonymous>"
	}
	return f.Name
}
