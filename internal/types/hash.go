package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for layout fingerprints. Version suffix enables future
// algorithm migration without colliding with old fingerprints.
const DomainLayout = "kestrel/layout/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LayoutLeaf is one flattened scalar slot of a record layout: its byte
// offset from the record base, its scalar kind and width, and its bitfield
// width if any. Arrays contribute one leaf per element; nested records are
// flattened recursively with their base offset folded in.
//
// Leaf sequences are the substrate for both layout fingerprints and the
// common-initial-sequence computation used by address-identity reasoning.
type LayoutLeaf struct {
	Offset int64
	Kind   ScalarKind
	Bytes  int64
	Bits   int
}

// LayoutLeaves flattens a record layout into declaration-order leaves.
func (a *Arena) LayoutLeaves(h Handle) []LayoutLeaf {
	d := a.Record(h)
	var leaves []LayoutLeaf
	for i := range d.Fields {
		f := &d.Fields[i]
		leaves = a.appendLeaves(leaves, f.Type, f.Offset, f.Bits)
	}
	return leaves
}

func (a *Arena) appendLeaves(leaves []LayoutLeaf, t Type, base int64, bits int) []LayoutLeaf {
	switch tv := t.(type) {
	case Scalar:
		return append(leaves, LayoutLeaf{Offset: base, Kind: tv.Kind, Bytes: tv.Bytes, Bits: bits})
	case Array:
		size := a.SizeOf(tv.Elem)
		for i := 0; i < tv.Len; i++ {
			leaves = a.appendLeaves(leaves, tv.Elem, base+int64(i)*size, 0)
		}
		return leaves
	case RecordRef:
		d := a.Record(tv.Handle)
		for i := range d.Fields {
			f := &d.Fields[i]
			leaves = a.appendLeaves(leaves, f.Type, base+f.Offset, f.Bits)
		}
		return leaves
	default:
		return leaves
	}
}

// TypeLeaves flattens an arbitrary type into layout leaves with base
// offset zero. Used for union-alternative comparison where the alternative
// may be a scalar, array, or record.
func (a *Arena) TypeLeaves(t Type) []LayoutLeaf {
	return a.appendLeaves(nil, t, 0, 0)
}

// Fingerprint computes the content-addressed identity of a record layout.
// Stable across processes given the same collaborator-supplied layout.
func (a *Arena) Fingerprint(h Handle) (string, error) {
	return a.LeafFingerprint(a.LayoutLeaves(h))
}

// PrefixFingerprint fingerprints the first n layout leaves of a record.
// Two records share a common initial sequence of length n exactly when
// their n-prefix fingerprints agree; the address-identity resolver walks
// prefixes down from the shorter layout to find the common run.
func (a *Arena) PrefixFingerprint(h Handle, n int) (string, error) {
	leaves := a.LayoutLeaves(h)
	if n > len(leaves) {
		return "", fmt.Errorf("prefix %d exceeds %d layout leaves of %q", n, len(leaves), a.Record(h).Name)
	}
	return a.LeafFingerprint(leaves[:n])
}

// LeafFingerprint hashes a leaf sequence over its canonical JSON form.
func (a *Arena) LeafFingerprint(leaves []LayoutLeaf) (string, error) {
	list := make([]any, 0, len(leaves))
	for _, lf := range leaves {
		list = append(list, map[string]any{
			"offset": lf.Offset,
			"kind":   lf.Kind.String(),
			"bytes":  lf.Bytes,
			"bits":   lf.Bits,
		})
	}
	canonical, err := MarshalCanonical([]any{list})
	if err != nil {
		return "", fmt.Errorf("layout fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLayout, canonical), nil
}

// CommonInitialRun returns the length (in layout leaves) of the longest
// identically-laid-out prefix shared by two record layouts. Field names play
// no part: the run is a property of offsets, scalar kinds, and widths only.
func (a *Arena) CommonInitialRun(x, y Handle) int {
	lx := a.LayoutLeaves(x)
	ly := a.LayoutLeaves(y)
	n := min(len(lx), len(ly))
	for i := 0; i < n; i++ {
		if lx[i] != ly[i] {
			return i
		}
	}
	return n
}
