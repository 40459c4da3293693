package eval

import (
	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// Expr is a sealed interface over the expression forms the core walks.
// General-purpose arithmetic and control flow belong to the host's
// evaluator; this core only understands the forms that touch aggregate
// storage, addresses, and lifetimes.
type Expr interface {
	expr() // Sealed - only these types implement it
}

// Lit is a scalar literal.
type Lit struct {
	Val types.Value
}

func (Lit) expr() {}

// Load reads the storage a designator denotes: a scalar value, or the
// record itself when the designator names an aggregate (the form copy and
// assignment sources take).
type Load struct {
	Path string
	Src  diag.SrcHandle
}

func (Load) expr() {}

// AddrOf takes the address of a designator. Always permitted; the result
// is the statically computed byte offset within the root object,
// independent of activation state.
type AddrOf struct {
	Path string
	Src  diag.SrcHandle
}

func (AddrOf) expr() {}

// AddrEq compares two designator addresses for identity.
type AddrEq struct {
	A, B string
	Src  diag.SrcHandle
}

func (AddrEq) expr() {}

// InLifetime is the non-failing liveness probe over a designator.
type InLifetime struct {
	Path string
	Src  diag.SrcHandle
}

func (InLifetime) expr() {}

// Temp materializes a temporary of record type within the current scope.
type Temp struct {
	Type types.Handle
	Spec InitSpec
	Src  diag.SrcHandle
}

func (Temp) expr() {}

// CallFn evaluates a constant function call in a fresh frame. A failure
// inside the callee propagates annotated with an "in call to" note.
type CallFn struct {
	Fn  *Function
	Src diag.SrcHandle
}

func (CallFn) expr() {}

// MemberCall calls through a member designator. The call access policy
// applies: every union ancestor of the member must be active.
type MemberCall struct {
	Path string
	Fn   *Function
	Src  diag.SrcHandle
}

func (MemberCall) expr() {}

// Stmt is a sealed interface over the statement forms the core walks.
type Stmt interface {
	stmt() // Sealed - only these types implement it
}

// Decl brings a named object of record type into existence in the current
// scope, applying the given initialization.
type Decl struct {
	Name string
	Type types.Handle
	Spec InitSpec
	Src  diag.SrcHandle
}

func (Decl) stmt() {}

// Assign stores through a designator. A scalar target activates every
// union ancestor before the store; an aggregate target performs whole-value
// copy (or move) assignment with activation transfer.
type Assign struct {
	Target string
	Value  Expr
	Move   bool
	Src    diag.SrcHandle
}

func (Assign) stmt() {}

// DestroyStmt explicitly ends a member's lifetime (an explicit destructor
// call in source terms).
type DestroyStmt struct {
	Target string
	Src    diag.SrcHandle
}

func (DestroyStmt) stmt() {}

// Block is a nested scope. Objects declared inside are destroyed, in
// reverse declaration order, when the block exits.
type Block struct {
	Stmts []Stmt
}

func (Block) stmt() {}

// Return ends the enclosing function's evaluation with a value.
type Return struct {
	Value Expr
	Src   diag.SrcHandle
}

func (Return) stmt() {}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	E Expr
}

func (ExprStmt) stmt() {}

// Function is a constant-evaluable function body. The core has no
// parameter binding of its own: the host closes arguments over the body
// when it lowers a call.
type Function struct {
	Name string
	Body []Stmt
}
