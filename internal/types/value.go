package types

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface over the scalar values the evaluator stores in
// leaf cells. Only IntVal, UintVal, FloatVal, and BoolVal implement it.
// Aggregate values are never Values; they are storage trees in the object
// model.
type Value interface {
	value() // Sealed - only these types implement it
}

// IntVal is a signed integer scalar. Always int64 regardless of the declared
// storage width; the declared width only matters for bitfield masking.
type IntVal int64

func (IntVal) value() {}

// UintVal is an unsigned integer scalar.
type UintVal uint64

func (UintVal) value() {}

// FloatVal is a floating-point scalar.
type FloatVal float64

func (FloatVal) value() {}

// BoolVal is a boolean scalar.
type BoolVal bool

func (BoolVal) value() {}

// ZeroValue returns the zero scalar for a kind, used by zero-initialization.
func ZeroValue(k ScalarKind) Value {
	switch k {
	case Int:
		return IntVal(0)
	case Uint:
		return UintVal(0)
	case Float:
		return FloatVal(0)
	case Bool:
		return BoolVal(false)
	default:
		panic(fmt.Sprintf("types: zero value for unknown scalar kind %d", int(k)))
	}
}

// FormatValue renders a scalar for traces and assertion messages.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case IntVal:
		return strconv.FormatInt(int64(val), 10)
	case UintVal:
		return strconv.FormatUint(uint64(val), 10)
	case FloatVal:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case BoolVal:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Init is a sealed interface over neutral initializer forms handed across
// the front-end boundary. Only ScalarInit, ListInit, and FieldInit
// implement it.
type Init interface {
	initializer() // Sealed - only these types implement it
}

// ScalarInit initializes a leaf cell from a literal value.
type ScalarInit struct {
	Val Value
}

func (ScalarInit) initializer() {}

// ListInit is a braced initializer list. Elements may be FieldInit to model
// designated initializers; positional and designated elements may mix, with
// positional elements resuming after the last designator.
type ListInit struct {
	Elems []Init
}

func (ListInit) initializer() {}

// FieldInit designates a member by name, resolving through anonymous
// wrappers, and supplies its initializer.
type FieldInit struct {
	Field string
	Init  Init
}

func (FieldInit) initializer() {}
