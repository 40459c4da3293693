package eval

import (
	"testing"

	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/testutil"
	"github.com/kestrel-lang/kestrel/internal/types"
)

func intT() types.Scalar { return types.Scalar{Kind: types.Int, Bytes: 4} }

func intVal(n int64) types.Value { return types.IntVal(n) }

func newCtx(t *testing.T, arena *types.Arena) *Context {
	t.Helper()
	return New(arena, WithTokenSource(testutil.NewFixedTokenSource("")))
}

// pairUnionArena builds union U { int a; int b; }.
func pairUnionArena(t *testing.T) (*types.Arena, types.Handle) {
	t.Helper()
	a := types.NewArena()
	h := a.Add(types.RecordDesc{
		Name: "U",
		Kind: types.Union,
		Size: 4,
		Fields: []types.FieldDesc{
			{Name: "a", Type: intT()},
			{Name: "b", Type: intT()},
		},
	})
	return a, h
}

// wrapperArena builds struct S { U u; int tail; } over the pair union.
func wrapperArena(t *testing.T) (*types.Arena, types.Handle) {
	t.Helper()
	a, u := pairUnionArena(t)
	s := a.Add(types.RecordDesc{
		Name: "S",
		Kind: types.Struct,
		Size: 8,
		Fields: []types.FieldDesc{
			{Name: "u", Type: types.RecordRef{Handle: u}, Offset: 0},
			{Name: "tail", Type: intT(), Offset: 4},
		},
	})
	return a, s
}

func mustPath(t *testing.T, c *Context, desig string) object.Path {
	t.Helper()
	p, err := c.ResolvePath(desig)
	if err != nil {
		t.Fatalf("resolve %q: %v", desig, err)
	}
	return p
}
