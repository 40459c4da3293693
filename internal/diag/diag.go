// Package diag defines the closed diagnostic taxonomy the evaluator reports
// to its host.
//
// Every failing top-level evaluation produces exactly one Diagnostic: a
// primary tag plus an ordered chain of explanatory notes. Nested failures
// inside a called sub-evaluation propagate the same diagnostic annotated
// with an additional "in call to" note; they are never re-wrapped under a
// new tag. Source positions are opaque handles supplied by the caller, never
// computed here.
package diag

import (
	"fmt"
	"strings"
)

// Tag identifies the primary error category. The set is closed: hosts
// switch over it exhaustively.
type Tag int

const (
	// InactiveMemberAccess is a read, member call, or destroy through a
	// union member that is not the active alternative.
	InactiveMemberAccess Tag = iota

	// UninitializedRead is a read of a member that is active but has never
	// been assigned a value.
	UninitializedRead

	// DestroyInactiveMember is an explicit destroy of a member that is not
	// active at its own union level.
	DestroyInactiveMember

	// NotConstantFoldable is an address comparison that static layout
	// reasoning cannot resolve to true or false.
	NotConstantFoldable

	// ExcessInitializer is a union initializer supplying more than one
	// member, or excess elements beyond the first recognized member.
	ExcessInitializer

	// NeverConstant marks an evaluation path proven to never reach a valid
	// constant result, independent of any one call.
	NeverConstant
)

var tagNames = map[Tag]string{
	InactiveMemberAccess:  "InactiveMemberAccess",
	UninitializedRead:     "UninitializedRead",
	DestroyInactiveMember: "DestroyInactiveMember",
	NotConstantFoldable:   "NotConstantFoldable",
	ExcessInitializer:     "ExcessInitializer",
	NeverConstant:         "NeverConstant",
}

// String returns the stable tag name used in traces and golden files.
func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// SrcHandle is an opaque source-position token supplied by the caller.
// The evaluator threads it through unchanged; rendering positions is the
// host's concern.
type SrcHandle int64

// NoSrc is the handle used when the caller supplied no position.
const NoSrc SrcHandle = 0

// Note is one explanatory step of a diagnostic.
type Note struct {
	Msg string
	Src SrcHandle
}

// Diagnostic is the single structured failure artifact of one top-level
// evaluation.
type Diagnostic struct {
	Tag   Tag
	Notes []Note
}

// New creates a diagnostic with one primary note.
func New(tag Tag, src SrcHandle, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Tag:   tag,
		Notes: []Note{{Msg: fmt.Sprintf(format, args...), Src: src}},
	}
}

// Error implements the error interface: tag plus the note chain.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Tag.String())
	for i := range d.Notes {
		b.WriteString(": ")
		b.WriteString(d.Notes[i].Msg)
	}
	return b.String()
}

// AddNote appends an explanatory note and returns the diagnostic for
// chaining.
func (d *Diagnostic) AddNote(src SrcHandle, format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: fmt.Sprintf(format, args...), Src: src})
	return d
}

// InCallTo annotates a diagnostic crossing a call boundary. The tag is
// preserved; only the note chain grows.
func (d *Diagnostic) InCallTo(fn string, src SrcHandle) *Diagnostic {
	return d.AddNote(src, "in call to '%s'", fn)
}

// Primary returns the first note's message, the host's headline text.
func (d *Diagnostic) Primary() string {
	if len(d.Notes) == 0 {
		return ""
	}
	return d.Notes[0].Msg
}
