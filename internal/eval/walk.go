package eval

import (
	"fmt"
	"log/slog"

	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/object"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// Result is the outcome of evaluating one expression: a scalar value, or a
// record for aggregate-valued expressions. Exactly one side is set.
type Result struct {
	Val types.Value
	Rec *object.Record
}

// Evaluate runs a function body as a top-level constant evaluation and
// returns its result. Any validator failure aborts the whole evaluation;
// the Context is not reusable for another attempt after a failure.
func (c *Context) Evaluate(fn *Function) (Result, *diag.Diagnostic) {
	if c.logger != nil {
		c.logger.Debug("constant evaluation start", slog.String("fn", fn.Name), slog.String("token", c.token))
	}
	res, d := c.call(fn, diag.NoSrc, false)
	if c.logger != nil {
		c.logger.Debug("constant evaluation end", slog.String("fn", fn.Name), slog.Bool("ok", d == nil))
	}
	return res, d
}

// Declare brings a named object into the current (outermost, for host use)
// scope. Hosts use it to install externally supplied constants and the
// objects a scenario manipulates.
func (c *Context) Declare(name string, h types.Handle, spec InitSpec, src diag.SrcHandle) *diag.Diagnostic {
	rec := object.NewRecord(c.arena, h)
	if d := c.initRecord(rec, spec, src); d != nil {
		return d
	}
	if err := c.declare(name, rec); err != nil {
		return diag.New(diag.NeverConstant, src, "%v", err)
	}
	return nil
}

// MaterializeConst declares a named object and then requires it to be a
// complete constant: every scalar reachable along active branches written.
// This is the check a top-level constant declaration performs; ordinary
// declarations inside an evaluation do not run it.
func (c *Context) MaterializeConst(name string, h types.Handle, spec InitSpec, src diag.SrcHandle) *diag.Diagnostic {
	if d := c.Declare(name, h, spec, src); d != nil {
		return d
	}
	rec, _ := c.Object(name)
	return CheckComplete(rec, src)
}

// Exec evaluates statements in the current scope for their effects. Hosts
// drive scenario steps through it; Return statements are meaningless here
// and simply stop execution.
func (c *Context) Exec(stmts ...Stmt) *diag.Diagnostic {
	_, _, d := c.execStmts(stmts)
	return d
}

// call runs a function in a fresh frame. annotate controls whether a
// failure gains an "in call to" note: nested calls annotate, the top-level
// entry does not.
func (c *Context) call(fn *Function, src diag.SrcHandle, annotate bool) (Result, *diag.Diagnostic) {
	if c.callDepth >= c.maxCallDepth {
		return Result{}, diag.New(diag.NeverConstant, src, "constant call depth limit (%d) exceeded in call to '%s'", c.maxCallDepth, fn.Name)
	}
	c.callDepth++
	c.pushScope(true)
	res, _, d := c.execStmts(fn.Body)
	if d == nil {
		if pd := c.popScope(); pd != nil {
			d = pd
		}
	} else {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
	c.callDepth--
	if d != nil && annotate {
		d = d.InCallTo(fn.Name, src)
	}
	return res, d
}

// execStmts evaluates statements in order, stopping at the first return.
func (c *Context) execStmts(stmts []Stmt) (Result, bool, *diag.Diagnostic) {
	for _, s := range stmts {
		res, returned, d := c.execStmt(s)
		if d != nil {
			return Result{}, false, d
		}
		if returned {
			return res, true, nil
		}
	}
	return Result{}, false, nil
}

func (c *Context) execStmt(s Stmt) (Result, bool, *diag.Diagnostic) {
	switch st := s.(type) {
	case Decl:
		return Result{}, false, c.Declare(st.Name, st.Type, st.Spec, st.Src)

	case Assign:
		return Result{}, false, c.assign(st)

	case DestroyStmt:
		return Result{}, false, c.destroy(st)

	case Block:
		c.pushScope(false)
		res, returned, d := c.execStmts(st.Stmts)
		if d != nil {
			c.scopes = c.scopes[:len(c.scopes)-1]
			return Result{}, false, d
		}
		if pd := c.popScope(); pd != nil {
			return Result{}, false, pd
		}
		return res, returned, nil

	case Return:
		if st.Value == nil {
			return Result{}, true, nil
		}
		res, d := c.Eval(st.Value)
		return res, d == nil, d

	case ExprStmt:
		_, d := c.Eval(st.E)
		return Result{}, false, d

	default:
		panic(fmt.Sprintf("eval: unknown statement %T", s))
	}
}

// assign implements write-through-designator semantics.
func (c *Context) assign(st Assign) *diag.Diagnostic {
	p, err := c.ResolvePath(st.Target)
	if err != nil {
		return diag.New(diag.NeverConstant, st.Src, "%v", err)
	}
	if d := Access(p, Write, st.Src); d != nil {
		return d
	}

	leaf := p.Leaf()
	if leaf != nil {
		if _, isScalar := leaf.Type().(types.Scalar); isScalar {
			res, d := c.Eval(st.Value)
			if d != nil {
				return d
			}
			if res.Val == nil {
				return diag.New(diag.NeverConstant, st.Src, "aggregate value stored to scalar '%s'", st.Target)
			}
			// A trivial scalar store implicitly activates every union
			// ancestor before the value lands.
			applyWriteActivation(p)
			leaf.Store(res.Val)
			return nil
		}
	}

	// Aggregate target: whole-value copy/move assignment.
	dst := p.LeafRecord()
	if dst == nil {
		return diag.New(diag.NeverConstant, st.Src, "assignment to array storage '%s' requires element stores", st.Target)
	}
	res, d := c.Eval(st.Value)
	if d != nil {
		return d
	}
	if res.Rec == nil {
		return diag.New(diag.NeverConstant, st.Src, "scalar value assigned to aggregate '%s'", st.Target)
	}
	applyWriteActivation(p)
	return c.copyRecord(dst, res.Rec, st.Move, st.Src)
}

// destroy implements an explicit member destructor call.
func (c *Context) destroy(st DestroyStmt) *diag.Diagnostic {
	p, err := c.ResolvePath(st.Target)
	if err != nil {
		return diag.New(diag.NeverConstant, st.Src, "%v", err)
	}
	if d := Access(p, Destroy, st.Src); d != nil {
		return d
	}
	if len(p.Steps) == 0 {
		return diag.New(diag.NeverConstant, st.Src, "destroy of a complete object '%s' is scope-driven", st.Target)
	}
	last := p.Steps[len(p.Steps)-1]
	if !last.IsIndex() {
		f := last.Rec.Desc().Field(last.Field)
		if f.Special != nil && f.Special.Destroy != nil {
			if err := f.Special.Destroy(last.Cell); err != nil {
				return evaluatorDiag(err, st.Src)
			}
		}
		if last.Rec.Kind() == types.Union {
			// Validated above; the member is now dead, storage uncleared.
			last.Rec.DestroyActive(last.Field)
		}
	}
	return nil
}

// Eval evaluates an expression.
func (c *Context) Eval(e Expr) (Result, *diag.Diagnostic) {
	switch ex := e.(type) {
	case Lit:
		return Result{Val: ex.Val}, nil

	case Load:
		p, err := c.ResolvePath(ex.Path)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		if d := Access(p, Read, ex.Src); d != nil {
			return Result{}, d
		}
		leaf := p.Leaf()
		if leaf == nil {
			return Result{Rec: p.Root}, nil
		}
		if rec := leaf.Record(); rec != nil {
			return Result{Rec: rec}, nil
		}
		if _, isScalar := leaf.Type().(types.Scalar); isScalar {
			return Result{Val: leaf.Scalar()}, nil
		}
		return Result{}, diag.New(diag.NeverConstant, ex.Src, "load of array storage '%s'", ex.Path)

	case AddrOf:
		p, err := c.ResolvePath(ex.Path)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		if d := Access(p, AddressOf, ex.Src); d != nil {
			return Result{}, d
		}
		return Result{Val: types.UintVal(p.Offset())}, nil

	case AddrEq:
		pa, err := c.ResolvePath(ex.A)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		pb, err := c.ResolvePath(ex.B)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		same, d := SameAddress(pa, pb, ex.Src)
		if d != nil {
			return Result{}, d
		}
		return Result{Val: types.BoolVal(same)}, nil

	case InLifetime:
		p, err := c.ResolvePath(ex.Path)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		return Result{Val: types.BoolVal(WithinLifetime(p))}, nil

	case Temp:
		rec := object.NewRecord(c.arena, ex.Type)
		if d := c.initRecord(rec, ex.Spec, ex.Src); d != nil {
			return Result{}, d
		}
		// The temporary lives until the current scope ends.
		s := c.scopes[len(c.scopes)-1]
		s.order = append(s.order, scopeEntry{name: "", rec: rec})
		return Result{Rec: rec}, nil

	case CallFn:
		return c.call(ex.Fn, ex.Src, true)

	case MemberCall:
		p, err := c.ResolvePath(ex.Path)
		if err != nil {
			return Result{}, diag.New(diag.NeverConstant, ex.Src, "%v", err)
		}
		if d := Access(p, Call, ex.Src); d != nil {
			return Result{}, d
		}
		return c.call(ex.Fn, ex.Src, true)

	default:
		panic(fmt.Sprintf("eval: unknown expression %T", e))
	}
}
