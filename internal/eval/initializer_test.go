package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

func declared(t *testing.T, c *Context, name string) *object.Record {
	t.Helper()
	rec, ok := c.Object(name)
	require.True(t, ok)
	return rec
}

func TestDefaultInitIsIndeterminate(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("u", u, DefaultSpec{}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.False(t, rec.HasActive())
	assert.False(t, rec.Field(0).Written())
}

func TestValueInitActivatesFirstNamedMember(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("u", u, ValueSpec{}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(0))
	assert.Equal(t, types.IntVal(0), rec.Field(0).Scalar())
	assert.False(t, rec.Field(1).Written())
}

func TestValueInitSkipsUnnamedBitfield(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "U",
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Unnamed: true, Type: intT(), Bits: 3},
			{Name: "named", Type: intT()},
		},
	})
	c := newCtx(t, a)
	require.Nil(t, c.Declare("u", h, ValueSpec{}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(1))
	assert.False(t, rec.Field(0).Written())
}

func TestValueInitPrefersDefaultedMember(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "U",
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Name: "a", Type: intT()},
			{Name: "b", Type: intT(), Default: types.ScalarInit{Val: types.IntVal(42)}},
		},
	})
	c := newCtx(t, a)
	require.Nil(t, c.Declare("u", h, ValueSpec{}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(1))
	assert.Equal(t, types.IntVal(42), rec.Field(1).Scalar())
}

func TestValueInitEmptyUnion(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{Name: "E", Kind: types.Union})
	c := newCtx(t, a)

	require.Nil(t, c.Declare("e", h, ValueSpec{}, diag.NoSrc))
	assert.False(t, declared(t, c, "e").HasActive())
}

func TestUserCtorDefersActivation(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name:        "U",
		Kind:        types.Union,
		HasUserCtor: true,
		Fields: []types.FieldDesc{
			{Name: "a", Type: intT()},
		},
	})
	c := newCtx(t, a)

	// No constructor registered: value-init leaves the union indeterminate
	// instead of zero-initializing.
	require.Nil(t, c.Declare("u", h, ValueSpec{}, diag.NoSrc))
	assert.False(t, declared(t, c, "u").HasActive())
}

func TestCtorMemberInitActivates(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	c.RegisterCtor(u, &Ctor{
		Name: "U",
		MemberInits: []MemberInit{
			{Member: "b", Init: types.ScalarInit{Val: types.IntVal(7)}},
		},
	})

	require.Nil(t, c.Declare("u", u, CtorSpec{Ctor: c.ctors[u]}, diag.NoSrc))
	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(1))
	assert.Equal(t, types.IntVal(7), rec.Field(1).Scalar())
}

func TestCtorBodyAssignsThroughThis(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)

	ctor := &Ctor{
		Name: "U",
		Body: []Stmt{
			Assign{Target: "this.a", Value: Lit{Val: intVal(5)}},
		},
	}
	require.Nil(t, c.Declare("u", u, CtorSpec{Ctor: ctor}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(0))
	assert.Equal(t, types.IntVal(5), rec.Field(0).Scalar())
}

func TestCtorAppliesOutstandingDefaults(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name:        "U",
		Kind:        types.Union,
		HasUserCtor: true,
		Fields: []types.FieldDesc{
			{Name: "a", Type: intT()},
			{Name: "b", Type: intT(), Default: types.ScalarInit{Val: types.IntVal(9)}},
		},
	})
	c := newCtx(t, a)

	// A constructor with no member inits: the defaulted member applies.
	require.Nil(t, c.Declare("u", h, CtorSpec{Ctor: &Ctor{Name: "U"}}, diag.NoSrc))
	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(1))
	assert.Equal(t, types.IntVal(9), rec.Field(1).Scalar())

	// A constructor that did activate a member suppresses the default.
	c2 := newCtx(t, a)
	require.Nil(t, c2.Declare("u", h, CtorSpec{Ctor: &Ctor{
		Name:        "U",
		MemberInits: []MemberInit{{Member: "a", Init: types.ScalarInit{Val: types.IntVal(1)}}},
	}}, diag.NoSrc))
	assert.True(t, declared(t, c2, "u").IsActive(0))
}

func TestBracedEmptyListZeroInitializes(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("u", u, BracedSpec{}, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(0))
	assert.Equal(t, types.IntVal(0), rec.Field(0).Scalar())
}

func TestBracedPositionalTargetsFirstNamedMember(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	spec := BracedSpec{List: types.ListInit{Elems: []types.Init{
		types.ScalarInit{Val: types.IntVal(3)},
	}}}
	require.Nil(t, c.Declare("u", u, spec, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(0))
	assert.Equal(t, types.IntVal(3), rec.Field(0).Scalar())
}

func TestBracedDesignatedMember(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	spec := BracedSpec{List: types.ListInit{Elems: []types.Init{
		types.FieldInit{Field: "b", Init: types.ScalarInit{Val: types.IntVal(4)}},
	}}}
	require.Nil(t, c.Declare("u", u, spec, diag.NoSrc))

	rec := declared(t, c, "u")
	assert.True(t, rec.IsActive(1))
	assert.Equal(t, types.IntVal(4), rec.Field(1).Scalar())
}

func TestBracedExcessElements(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	spec := BracedSpec{List: types.ListInit{Elems: []types.Init{
		types.ScalarInit{Val: types.IntVal(1)},
		types.ScalarInit{Val: types.IntVal(2)},
	}}}

	d := c.Declare("u", u, spec, diag.NoSrc)
	require.NotNil(t, d)
	assert.Equal(t, diag.ExcessInitializer, d.Tag)
	assert.Equal(t, "excess elements in union initializer for 'U'", d.Primary())
}

func TestBracedDesignatedIndirectMember(t *testing.T) {
	a := types.NewArena()
	wrapped := a.Add(types.RecordDesc{
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Name: "x", Type: intT()},
			{Name: "y", Type: intT()},
		},
	})
	outer := a.Add(types.RecordDesc{
		Name: "Outer",
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Name: "plain", Type: intT()},
			{Anonymous: true, Type: types.RecordRef{Handle: wrapped}},
		},
	})
	c := newCtx(t, a)

	// Designating "y" resolves through the anonymous wrapper and activates
	// both union levels.
	spec := BracedSpec{List: types.ListInit{Elems: []types.Init{
		types.FieldInit{Field: "y", Init: types.ScalarInit{Val: types.IntVal(8)}},
	}}}
	require.Nil(t, c.Declare("o", outer, spec, diag.NoSrc))

	rec := declared(t, c, "o")
	assert.True(t, rec.IsActive(1))
	inner := rec.Field(1).Record()
	assert.True(t, inner.IsActive(1))
	assert.Equal(t, types.IntVal(8), inner.Field(1).Scalar())
}

func TestBracedStructPositionalAndDesignated(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "S",
		Kind: types.Struct,
		Fields: []types.FieldDesc{
			{Name: "a", Type: intT(), Offset: 0},
			{Name: "b", Type: intT(), Offset: 4},
			{Name: "c", Type: intT(), Offset: 8, Default: types.ScalarInit{Val: types.IntVal(30)}},
		},
	})
	c := newCtx(t, a)

	// {1, .b = 2}: positional then designated; c takes its default.
	spec := BracedSpec{List: types.ListInit{Elems: []types.Init{
		types.ScalarInit{Val: types.IntVal(1)},
		types.FieldInit{Field: "b", Init: types.ScalarInit{Val: types.IntVal(2)}},
	}}}
	require.Nil(t, c.Declare("s", h, spec, diag.NoSrc))

	rec := declared(t, c, "s")
	assert.Equal(t, types.IntVal(1), rec.Field(0).Scalar())
	assert.Equal(t, types.IntVal(2), rec.Field(1).Scalar())
	assert.Equal(t, types.IntVal(30), rec.Field(2).Scalar())
}

func TestCopyInitTransfersActivation(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("src", u, DefaultSpec{}, diag.NoSrc))
	require.Nil(t, c.Exec(Assign{Target: "src.b", Value: Lit{Val: intVal(6)}}))

	require.Nil(t, c.Declare("dst", u, CopySpec{From: Load{Path: "src"}}, diag.NoSrc))
	rec := declared(t, c, "dst")
	assert.True(t, rec.IsActive(1))
	assert.Equal(t, types.IntVal(6), rec.Field(1).Scalar())
}

func TestCopyInitNoActiveSource(t *testing.T) {
	arena, u := pairUnionArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("src", u, DefaultSpec{}, diag.NoSrc))

	require.Nil(t, c.Declare("dst", u, CopySpec{From: Load{Path: "src"}}, diag.NoSrc))
	assert.False(t, declared(t, c, "dst").HasActive())
}

func TestCopySpecialEvaluators(t *testing.T) {
	var copied, moved bool
	special := &types.Special{
		Copy: func(any) error { copied = true; return nil },
		Move: func(any) error { moved = true; return nil },
	}
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "U",
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Name: "nt", Type: intT(), Special: special},
		},
	})
	c := newCtx(t, a)
	require.Nil(t, c.Declare("src", h, DefaultSpec{}, diag.NoSrc))
	require.Nil(t, c.Exec(Assign{Target: "src.nt", Value: Lit{Val: intVal(1)}}))

	require.Nil(t, c.Declare("d1", h, CopySpec{From: Load{Path: "src"}}, diag.NoSrc))
	assert.True(t, copied)
	assert.False(t, moved)

	require.Nil(t, c.Declare("d2", h, CopySpec{From: Load{Path: "src"}, Move: true}, diag.NoSrc))
	assert.True(t, moved)

	// The destination member is active either way.
	assert.True(t, declared(t, c, "d2").IsActive(0))
}

func TestCheckComplete(t *testing.T) {
	arena, s := wrapperArena(t)
	c := newCtx(t, arena)
	require.Nil(t, c.Declare("s", s, DefaultSpec{}, diag.NoSrc))
	rec := declared(t, c, "s")

	// Indeterminate union is not the failure; the unwritten tail is.
	require.Nil(t, c.Exec(Assign{Target: "s.u.a", Value: Lit{Val: intVal(1)}}))
	d := CheckComplete(rec, diag.NoSrc)
	require.NotNil(t, d)
	assert.Equal(t, diag.UninitializedRead, d.Tag)
	assert.Equal(t, "subobject 'tail' is not initialized", d.Primary())

	require.Nil(t, c.Exec(Assign{Target: "s.tail", Value: Lit{Val: intVal(2)}}))
	assert.Nil(t, CheckComplete(rec, diag.NoSrc))
}

func TestCheckCompleteArrayNaming(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "A",
		Kind: types.Struct,
		Fields: []types.FieldDesc{
			{Name: "arr", Type: types.Array{Elem: intT(), Len: 2}},
		},
	})
	c := newCtx(t, a)
	require.Nil(t, c.Declare("a", h, DefaultSpec{}, diag.NoSrc))
	require.Nil(t, c.Exec(Assign{Target: "a.arr[0]", Value: Lit{Val: intVal(1)}}))

	d := CheckComplete(declared(t, c, "a"), diag.NoSrc)
	require.NotNil(t, d)
	assert.Equal(t, "subobject 'arr[1]' is not initialized", d.Primary())
}

func TestMaterializeConstRequiresCompleteness(t *testing.T) {
	arena, s := wrapperArena(t)
	c := newCtx(t, arena)

	d := c.MaterializeConst("s", s, ValueSpec{}, diag.NoSrc)
	assert.Nil(t, d)

	d = c.MaterializeConst("s2", s, DefaultSpec{}, diag.NoSrc)
	require.NotNil(t, d)
	assert.Equal(t, diag.UninitializedRead, d.Tag)
}
