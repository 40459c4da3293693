package eval

import (
	"github.com/kestrel-lang/kestrel/internal/diag"
)

// CheckNeverConstant probes whether a function body can ever yield a
// constant. The core's walk is fully deterministic (no inputs, no
// environment), so a single abstract run in an isolated context is a
// proof: if it fails, every call fails the same way.
//
// The probe runs against a fresh context sharing only the receiver's
// read-only collaborator state (descriptor arena and registered
// constructors); it never touches, and can never corrupt, the receiver's
// own storage. The report is one NeverConstant diagnostic whose note chain
// carries the underlying failure, issued once per function declaration
// rather than at each call site.
func (c *Context) CheckNeverConstant(fn *Function, src diag.SrcHandle) *diag.Diagnostic {
	probe := New(c.arena, WithMaxCallDepth(c.maxCallDepth))
	for h, ctor := range c.ctors {
		probe.RegisterCtor(h, ctor)
	}
	if _, d := probe.Evaluate(fn); d != nil {
		nc := diag.New(diag.NeverConstant, src,
			"constexpr function '%s' never produces a constant expression", fn.Name)
		nc.Notes = append(nc.Notes, d.Notes...)
		return nc
	}
	return nil
}
