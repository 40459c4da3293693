package eval

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// TokenSource generates evaluation tokens for trace correlation.
// Implemented by UUIDv7Source (production) and testutil.FixedTokenSource
// (tests).
type TokenSource interface {
	Generate() string
}

// UUIDv7Source generates time-sortable UUIDv7 evaluation tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time, which is helpful when correlating diagnostics
// from many evaluations in host logs.
//
// Thread-safety: UUIDv7Source is stateless and safe for concurrent use.
type UUIDv7Source struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Source) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// DefaultMaxCallDepth bounds nested constant-call recursion. Deep enough
// for any sane constant expression, small enough to fail fast on runaway
// recursion.
const DefaultMaxCallDepth = 512

// Option configures a Context.
type Option func(*Context)

// WithTokenSource overrides the evaluation-token generator. Tests use a
// fixed source for deterministic golden traces.
func WithTokenSource(src TokenSource) Option {
	return func(c *Context) {
		c.token = src.Generate()
	}
}

// WithMaxCallDepth sets the nested-call recursion limit.
func WithMaxCallDepth(n int) Option {
	return func(c *Context) {
		c.maxCallDepth = n
	}
}

// WithLogger attaches a logger for evaluation entry/exit debug lines.
// The hot path never logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}

// Context is the process-wide-for-one-evaluation state: it owns the record
// storage for the current top-level constant expression.
//
// A Context is created fresh per top-level evaluation and discarded at its
// end. No state is shared across independent evaluations except externally
// supplied read-only descriptors.
//
// INVARIANTS:
//   - All Records reachable from a Context were allocated by it.
//   - Scopes nest strictly (stack discipline); a record is released exactly
//     when its owning scope ends.
//   - Evaluation is single-threaded; a Context must not be shared between
//     goroutines.
type Context struct {
	arena *types.Arena
	token string

	scopes       []*scope
	ctors        map[types.Handle]*Ctor
	callDepth    int
	maxCallDepth int
	logger       *slog.Logger
}

// scope is one nesting level of named objects. barrier marks a function
// frame boundary: name lookup does not cross it (no closures in constant
// evaluation), destruction still unwinds through it.
type scope struct {
	barrier bool
	order   []scopeEntry
	names   map[string]*object.Record
}

type scopeEntry struct {
	name string
	rec  *object.Record
}

// New creates a Context for one top-level evaluation against a read-only
// descriptor arena.
func New(arena *types.Arena, opts ...Option) *Context {
	c := &Context{
		arena:        arena,
		token:        UUIDv7Source{}.Generate(),
		ctors:        make(map[types.Handle]*Ctor),
		maxCallDepth: DefaultMaxCallDepth,
	}
	c.pushScope(false)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Arena returns the descriptor arena.
func (c *Context) Arena() *types.Arena { return c.arena }

// Token returns this evaluation's correlation token.
func (c *Context) Token() string { return c.token }

// RegisterCtor installs the default constructor logic for a record type.
// Constructor bodies are external expression logic (the collaborator's
// side of the boundary); the core only drives when they run.
func (c *Context) RegisterCtor(h types.Handle, ctor *Ctor) {
	c.ctors[h] = ctor
}

func (c *Context) pushScope(barrier bool) {
	c.scopes = append(c.scopes, &scope{
		barrier: barrier,
		names:   make(map[string]*object.Record),
	})
}

// popScope ends the innermost scope, destroying its records in reverse
// declaration order. Destruction here means running each record's own
// user-provided destructor evaluator, if any; member destructors are never
// implied.
func (c *Context) popScope() *diag.Diagnostic {
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.order[i].rec
		if dtor := rec.Desc().Destroy; dtor != nil {
			if err := dtor(rec); err != nil {
				return evaluatorDiag(err, diag.NoSrc)
			}
		}
	}
	return nil
}

// declare binds a record in the innermost scope.
func (c *Context) declare(name string, rec *object.Record) error {
	s := c.scopes[len(c.scopes)-1]
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("eval: redeclaration of %q in the same scope", name)
	}
	s.names[name] = rec
	s.order = append(s.order, scopeEntry{name: name, rec: rec})
	return nil
}

// Object resolves a declared name. Lookup walks scopes innermost-out but
// stops at a function frame barrier; the outermost scope (externally
// supplied constants) is always visible.
func (c *Context) Object(name string) (*object.Record, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if rec, ok := s.names[name]; ok {
			return rec, true
		}
		if s.barrier {
			break
		}
	}
	if len(c.scopes) > 0 {
		if rec, ok := c.scopes[0].names[name]; ok {
			return rec, true
		}
	}
	return nil, false
}

// evaluatorDiag maps a collaborator-evaluator failure into the closed
// taxonomy. Diagnostics pass through untouched; anything else means the
// member's construction can never be constant.
func evaluatorDiag(err error, src diag.SrcHandle) *diag.Diagnostic {
	if d, ok := err.(*diag.Diagnostic); ok {
		return d
	}
	return diag.New(diag.NeverConstant, src, "external evaluator failed: %v", err)
}
