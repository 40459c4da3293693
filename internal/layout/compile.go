package layout

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/kestrel-lang/kestrel/internal/types"
)

// scalars maps source-level scalar names to descriptor scalars.
var scalars = map[string]types.Scalar{
	"int":      {Kind: types.Int, Bytes: 4},
	"uint":     {Kind: types.Uint, Bytes: 4},
	"unsigned": {Kind: types.Uint, Bytes: 4},
	"long":     {Kind: types.Int, Bytes: 8},
	"ulong":    {Kind: types.Uint, Bytes: 8},
	"short":    {Kind: types.Int, Bytes: 2},
	"char":     {Kind: types.Int, Bytes: 1},
	"bool":     {Kind: types.Bool, Bytes: 1},
	"float":    {Kind: types.Float, Bytes: 4},
	"double":   {Kind: types.Float, Bytes: 8},
}

// CompileString compiles a CUE layout definition from source text.
func CompileString(src string) (*types.Arena, error) {
	v := cuecontext.New().CompileString(src)
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "layouts", Message: err.Error(), Pos: v.Pos()}
	}
	return Compile(v)
}

// Compile parses a CUE value holding a "layouts" struct into a descriptor
// arena. Records compile in definition order; a record may reference any
// record defined before it by name.
func Compile(v cue.Value) (*types.Arena, error) {
	root := v.LookupPath(cue.ParsePath("layouts"))
	if !root.Exists() {
		return nil, &CompileError{Field: "layouts", Message: "no layouts struct", Pos: v.Pos()}
	}
	c := &compiler{arena: types.NewArena()}
	iter, err := root.Fields()
	if err != nil {
		return nil, &CompileError{Field: "layouts", Message: err.Error(), Pos: root.Pos()}
	}
	for iter.Next() {
		name := iter.Selector().String()
		if _, err := c.compileRecord(name, iter.Value()); err != nil {
			return nil, err
		}
	}
	return c.arena, nil
}

type compiler struct {
	arena *types.Arena
}

func stringField(v cue.Value, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", fmt.Errorf("missing field %q", name)
	}
	return fv.String()
}

func (c *compiler) compileRecord(name string, v cue.Value) (types.Handle, error) {
	kindStr, err := stringField(v, "kind")
	if err != nil {
		return types.InvalidHandle, &CompileError{Field: name, Message: "kind is required (\"struct\" or \"union\")", Pos: v.Pos()}
	}
	var kind types.RecordKind
	switch kindStr {
	case "struct":
		kind = types.Struct
	case "union":
		kind = types.Union
	default:
		return types.InvalidHandle, &CompileError{Field: name, Message: fmt.Sprintf("unknown kind %q", kindStr), Pos: v.Pos()}
	}

	d := types.RecordDesc{Name: name, Kind: kind}
	if ctorVal := v.LookupPath(cue.ParsePath("userCtor")); ctorVal.Exists() {
		b, err := ctorVal.Bool()
		if err != nil {
			return types.InvalidHandle, &CompileError{Field: name, Message: "userCtor must be a bool", Pos: ctorVal.Pos()}
		}
		d.HasUserCtor = b
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		list, err := fieldsVal.List()
		if err != nil {
			return types.InvalidHandle, &CompileError{Field: name, Message: "fields must be a list", Pos: fieldsVal.Pos()}
		}
		for list.Next() {
			f, err := c.compileField(name, list.Value())
			if err != nil {
				return types.InvalidHandle, err
			}
			d.Fields = append(d.Fields, f)
		}
	}

	c.pack(&d)
	if szVal := v.LookupPath(cue.ParsePath("size")); szVal.Exists() {
		sz, err := szVal.Int64()
		if err != nil {
			return types.InvalidHandle, &CompileError{Field: name, Message: "size must be an int", Pos: szVal.Pos()}
		}
		d.Size = sz
	}
	return c.arena.Add(d), nil
}

func (c *compiler) compileField(record string, v cue.Value) (types.FieldDesc, error) {
	var f types.FieldDesc
	f.Offset = -1

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		s, err := nameVal.String()
		if err != nil {
			return f, &CompileError{Field: record, Message: "field name must be a string", Pos: nameVal.Pos()}
		}
		f.Name = s
	}
	for flag, dst := range map[string]*bool{"anonymous": &f.Anonymous, "unnamed": &f.Unnamed} {
		if bv := v.LookupPath(cue.ParsePath(flag)); bv.Exists() {
			b, err := bv.Bool()
			if err != nil {
				return f, &CompileError{Field: record, Message: flag + " must be a bool", Pos: bv.Pos()}
			}
			*dst = b
		}
	}
	if f.Name == "" && !f.Anonymous && !f.Unnamed {
		return f, &CompileError{Field: record, Message: "field needs a name, anonymous: true, or unnamed: true", Pos: v.Pos()}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return f, &CompileError{Field: record, Message: fmt.Sprintf("field %q has no type", f.Name), Pos: v.Pos()}
	}
	t, err := c.compileType(record, f.Name, typeVal)
	if err != nil {
		return f, err
	}
	f.Type = t
	if f.Anonymous {
		if _, ok := t.(types.RecordRef); !ok {
			return f, &CompileError{Field: record, Message: fmt.Sprintf("anonymous field %q must have record type", f.Name), Pos: typeVal.Pos()}
		}
	}

	if bitsVal := v.LookupPath(cue.ParsePath("bits")); bitsVal.Exists() {
		bits, err := bitsVal.Int64()
		if err != nil || bits < 0 {
			return f, &CompileError{Field: record, Message: "bits must be a non-negative int", Pos: bitsVal.Pos()}
		}
		f.Bits = int(bits)
	}
	if offVal := v.LookupPath(cue.ParsePath("offset")); offVal.Exists() {
		off, err := offVal.Int64()
		if err != nil || off < 0 {
			return f, &CompileError{Field: record, Message: "offset must be a non-negative int", Pos: offVal.Pos()}
		}
		f.Offset = off
	}
	if defVal := v.LookupPath(cue.ParsePath("default")); defVal.Exists() {
		init, err := c.compileDefault(record, f.Type, defVal)
		if err != nil {
			return f, err
		}
		f.Default = init
	}
	return f, nil
}

// compileType handles scalar names, array suffixes, named record
// references, and inline anonymous record definitions.
func (c *compiler) compileType(record, field string, v cue.Value) (types.Type, error) {
	if s, err := v.String(); err == nil {
		return c.compileTypeName(record, field, s, v)
	}
	h, err := c.compileRecord("", v)
	if err != nil {
		return nil, err
	}
	return types.RecordRef{Handle: h}, nil
}

func (c *compiler) compileTypeName(record, field, s string, v cue.Value) (types.Type, error) {
	base := s
	var lens []int
	for strings.HasSuffix(base, "]") {
		open := strings.LastIndexByte(base, '[')
		if open < 0 {
			return nil, &CompileError{Field: record, Message: fmt.Sprintf("field %q: malformed array type %q", field, s), Pos: v.Pos()}
		}
		n, err := strconv.Atoi(base[open+1 : len(base)-1])
		if err != nil || n < 0 {
			return nil, &CompileError{Field: record, Message: fmt.Sprintf("field %q: bad array length in %q", field, s), Pos: v.Pos()}
		}
		lens = append([]int{n}, lens...)
		base = base[:open]
	}

	var t types.Type
	if sc, ok := scalars[base]; ok {
		t = sc
	} else if h, ok := c.arena.Lookup(base); ok {
		t = types.RecordRef{Handle: h}
	} else {
		return nil, &CompileError{Field: record, Message: fmt.Sprintf("field %q: unknown type %q", field, base), Pos: v.Pos()}
	}
	for i := len(lens) - 1; i >= 0; i-- {
		t = types.Array{Elem: t, Len: lens[i]}
	}
	return t, nil
}

func (c *compiler) compileDefault(record string, t types.Type, v cue.Value) (types.Init, error) {
	sc, ok := t.(types.Scalar)
	if !ok {
		return nil, &CompileError{Field: record, Message: "default initializers are supported for scalar fields only", Pos: v.Pos()}
	}
	switch sc.Kind {
	case types.Int:
		n, err := v.Int64()
		if err != nil {
			return nil, &CompileError{Field: record, Message: "default must be an int", Pos: v.Pos()}
		}
		return types.ScalarInit{Val: types.IntVal(n)}, nil
	case types.Uint:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return nil, &CompileError{Field: record, Message: "default must be a non-negative int", Pos: v.Pos()}
		}
		return types.ScalarInit{Val: types.UintVal(uint64(n))}, nil
	case types.Float:
		fl, err := v.Float64()
		if err != nil {
			return nil, &CompileError{Field: record, Message: "default must be a number", Pos: v.Pos()}
		}
		return types.ScalarInit{Val: types.FloatVal(fl)}, nil
	case types.Bool:
		b, err := v.Bool()
		if err != nil {
			return nil, &CompileError{Field: record, Message: "default must be a bool", Pos: v.Pos()}
		}
		return types.ScalarInit{Val: types.BoolVal(b)}, nil
	default:
		return nil, &CompileError{Field: record, Message: "unsupported default kind", Pos: v.Pos()}
	}
}

// pack assigns natural-alignment offsets to fields that did not declare
// one, and derives the record size. Union members all sit at offset zero;
// struct members pack sequentially. Explicit offsets always win and the
// running cursor resumes after them.
func (c *compiler) pack(d *types.RecordDesc) {
	var cur, maxAlign, maxEnd int64
	for i := range d.Fields {
		f := &d.Fields[i]
		size := c.arena.SizeOf(f.Type)
		align := c.alignOf(f.Type)
		if align > maxAlign {
			maxAlign = align
		}
		if d.Kind == types.Union {
			if f.Offset < 0 {
				f.Offset = 0
			}
		} else {
			if f.Offset < 0 {
				f.Offset = roundUp(cur, align)
			}
			cur = f.Offset + size
		}
		if end := f.Offset + size; end > maxEnd {
			maxEnd = end
		}
	}
	if maxAlign == 0 {
		maxAlign = 1
	}
	d.Size = roundUp(maxEnd, maxAlign)
}

func (c *compiler) alignOf(t types.Type) int64 {
	switch tv := t.(type) {
	case types.Scalar:
		return tv.Bytes
	case types.Array:
		return c.alignOf(tv.Elem)
	case types.RecordRef:
		var a int64 = 1
		d := c.arena.Record(tv.Handle)
		for i := range d.Fields {
			if fa := c.alignOf(d.Fields[i].Type); fa > a {
				a = fa
			}
		}
		return a
	default:
		return 1
	}
}

func roundUp(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}
