package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/internal/types"
)

// nestedUnions builds union Outer { int a; union Inner { int x; int y; } in; }.
func nestedUnions(t *testing.T) (*types.Arena, types.Handle) {
	t.Helper()
	a := types.NewArena()
	inner := a.Add(types.RecordDesc{
		Name: "Inner",
		Kind: types.Union,
		Size: 4,
		Fields: []types.FieldDesc{
			{Name: "x", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
			{Name: "y", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
		},
	})
	outer := a.Add(types.RecordDesc{
		Name: "Outer",
		Kind: types.Union,
		Size: 4,
		Fields: []types.FieldDesc{
			{Name: "a", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
			{Name: "in", Type: types.RecordRef{Handle: inner}},
		},
	})
	return a, outer
}

func TestActivateIsExclusive(t *testing.T) {
	arena, h := nestedUnions(t)
	r := NewRecord(arena, h)

	assert.False(t, r.HasActive())
	assert.Equal(t, "none", r.ActiveName())

	r.Activate(0)
	assert.True(t, r.IsActive(0))
	assert.False(t, r.IsActive(1))
	assert.Equal(t, "a", r.ActiveName())

	r.Activate(1)
	assert.False(t, r.IsActive(0))
	assert.True(t, r.IsActive(1))
}

func TestActivateSameFieldIsNoOp(t *testing.T) {
	arena, h := nestedUnions(t)
	r := NewRecord(arena, h)

	r.Activate(0)
	r.Field(0).Store(types.IntVal(5))

	// Re-activating the live branch must not disturb its storage.
	r.Activate(0)
	assert.True(t, r.Field(0).Written())
	assert.Equal(t, types.IntVal(5), r.Field(0).Scalar())
}

func TestActivateResetsSupersededBranch(t *testing.T) {
	arena, h := nestedUnions(t)
	r := NewRecord(arena, h)

	// Activate the nested union branch and a member inside it.
	r.Activate(1)
	inner := r.Field(1).Record()
	require.NotNil(t, inner)
	inner.Activate(0)
	inner.Field(0).Store(types.IntVal(9))

	// Switching to the scalar branch deactivates everything inside the
	// superseded one, recursively.
	r.Activate(0)
	assert.False(t, inner.HasActive())
	assert.False(t, inner.Field(0).Written())

	// Coming back does not resurrect the old contents.
	r.Activate(1)
	assert.False(t, inner.HasActive())
	assert.False(t, inner.Field(0).Written())
}

func TestStructFieldsAlwaysActive(t *testing.T) {
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "S",
		Kind: types.Struct,
		Fields: []types.FieldDesc{
			{Name: "a", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
			{Name: "b", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
		},
	})
	r := NewRecord(a, h)

	assert.True(t, r.IsActive(0))
	assert.True(t, r.IsActive(1))
	assert.True(t, r.HasActive())
	assert.Equal(t, "none", r.ActiveName())
}

func TestDeactivateAll(t *testing.T) {
	arena, h := nestedUnions(t)
	r := NewRecord(arena, h)

	r.Activate(0)
	r.DeactivateAll()
	assert.False(t, r.HasActive())
	assert.Equal(t, -1, r.ActiveIndex())
}

func TestDestroyActive(t *testing.T) {
	arena, h := nestedUnions(t)
	r := NewRecord(arena, h)

	// Destroying with nothing active reports failure.
	assert.False(t, r.DestroyActive(0))

	r.Activate(0)
	r.Field(0).Store(types.IntVal(3))

	// Destroying the non-active member reports failure and changes nothing.
	assert.False(t, r.DestroyActive(1))
	assert.True(t, r.IsActive(0))

	// Destroying the active member ends its lifetime but leaves storage.
	assert.True(t, r.DestroyActive(0))
	assert.False(t, r.HasActive())
	assert.True(t, r.Field(0).Written())
}

func TestActiveNameAnonymous(t *testing.T) {
	a := types.NewArena()
	wrapped := a.Add(types.RecordDesc{
		Kind: types.Struct,
		Fields: []types.FieldDesc{
			{Name: "x", Type: types.Scalar{Kind: types.Int, Bytes: 4}},
		},
	})
	h := a.Add(types.RecordDesc{
		Name: "U",
		Kind: types.Union,
		Fields: []types.FieldDesc{
			{Anonymous: true, Type: types.RecordRef{Handle: wrapped}},
		},
	})
	r := NewRecord(a, h)
	r.Activate(0)
	assert.Equal(t, "<anonymous>", r.ActiveName())
}
