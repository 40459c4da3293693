package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrel-lang/kestrel/internal/object"
)

// ResolvePath resolves designator text ("u.a[4].x") against the objects in
// scope into a fully resolved storage path.
//
// Member names resolve through anonymous struct/union wrappers, so an
// indirect field can be designated exactly as source would spell it. The
// resulting path contains every (record, field) hop the designator crosses,
// including the anonymous ones: validation and activation must see each
// union level, not just the named endpoints.
//
// Resolution failures are host programming errors (unknown name, bad
// index), reported as plain errors, never as evaluation diagnostics.
func (c *Context) ResolvePath(desig string) (object.Path, error) {
	rootName, rest, err := splitDesignator(desig)
	if err != nil {
		return object.Path{}, err
	}
	root, ok := c.Object(rootName)
	if !ok {
		return object.Path{}, fmt.Errorf("eval: no object %q in scope", rootName)
	}
	p := object.NewPath(root)
	for _, sel := range rest {
		if sel.index >= 0 {
			leaf := p.Leaf()
			if leaf == nil || leaf.Len() == 0 {
				return object.Path{}, fmt.Errorf("eval: %q: index on non-array storage", desig)
			}
			if sel.index >= leaf.Len() {
				return object.Path{}, fmt.Errorf("eval: %q: index %d out of range [0,%d)", desig, sel.index, leaf.Len())
			}
			p = p.Index(sel.index)
			continue
		}
		cur := p.LeafRecord()
		if cur == nil {
			return object.Path{}, fmt.Errorf("eval: %q: member %q on non-record storage", desig, sel.name)
		}
		steps, ok := cur.Arena().ResolveMember(cur.Handle(), sel.name)
		if !ok {
			return object.Path{}, fmt.Errorf("eval: %q: no member %q in %q", desig, sel.name, cur.Desc().Name)
		}
		for _, ms := range steps {
			p = p.Field(ms.Field)
		}
	}
	return p, nil
}

// selector is one parsed designator component: a member name or an index.
type selector struct {
	name  string
	index int // -1 for member selectors
}

func splitDesignator(desig string) (string, []selector, error) {
	s := strings.TrimSpace(desig)
	if s == "" {
		return "", nil, fmt.Errorf("eval: empty designator")
	}
	var sels []selector
	i := 0
	ident := func() (string, error) {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '[' {
			i++
		}
		if start == i {
			return "", fmt.Errorf("eval: %q: empty member name at offset %d", desig, start)
		}
		return s[start:i], nil
	}
	root, err := ident()
	if err != nil {
		return "", nil, err
	}
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			name, err := ident()
			if err != nil {
				return "", nil, err
			}
			sels = append(sels, selector{name: name, index: -1})
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return "", nil, fmt.Errorf("eval: %q: unterminated index", desig)
			}
			n, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil || n < 0 {
				return "", nil, fmt.Errorf("eval: %q: bad index %q", desig, s[i+1:i+end])
			}
			sels = append(sels, selector{index: n})
			i += end + 1
		default:
			return "", nil, fmt.Errorf("eval: %q: unexpected %q", desig, s[i])
		}
	}
	return root, sels, nil
}
