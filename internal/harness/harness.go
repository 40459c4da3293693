// Package harness provides a data-driven conformance framework for the
// evaluator: YAML scenarios declare record layouts in CUE and an ordered list
// of evaluation steps, the runner drives the real evaluator through them, and
// golden files pin the resulting traces byte for byte.
//
// Two validation layers stack:
//
//   - Inline expectations on each step (expect, expect_error, expect_note)
//     catch semantic regressions with a readable failure message.
//   - Golden trace comparison catches everything else: diagnostic wording,
//     note ordering, value formatting.
//
// Each scenario runs in a fresh evaluation context with a fixed token, so a
// trace is a pure function of the scenario file.
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kestrel-lang/kestrel/internal/diag"
	"github.com/kestrel-lang/kestrel/internal/eval"
	"github.com/kestrel-lang/kestrel/internal/layout"
	"github.com/kestrel-lang/kestrel/internal/testutil"
	"github.com/kestrel-lang/kestrel/internal/types"
)

// TraceEvent records one step's observable outcome.
type TraceEvent struct {
	Op     string `json:"op"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every inline expectation held.
	Pass bool `json:"pass"`

	// Token is the evaluation token the run used.
	Token string `json:"token"`

	// Trace lists one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists inline expectation failures. Empty when Pass.
	Errors []string `json:"errors,omitempty"`
}

// AddError records an expectation failure and marks the run as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// runner drives one scenario against one evaluation context.
type runner struct {
	ctx    *eval.Context
	logger *slog.Logger
}

// Run executes a scenario and returns the result. Layout compilation and
// scenario shape errors return an error; evaluator diagnostics do not - they
// are outcomes, recorded in the trace and checked against expectations.
func Run(scenario *Scenario) (*Result, error) {
	arena, err := layout.CompileString(scenario.Layouts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile layouts: %w", err)
	}

	tokens := testutil.NewFixedTokenSource(scenario.Token)
	r := &runner{
		ctx:    eval.New(arena, eval.WithTokenSource(tokens)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result := &Result{Pass: true, Token: r.ctx.Token()}
	for i, step := range scenario.Steps {
		event := r.executeStep(&step)
		result.Trace = append(result.Trace, event)
		checkExpectations(result, i, &step, event)

		r.logger.Info("step completed",
			"step", i,
			"op", event.Op,
			"target", event.Target,
			"error", event.Error,
		)
	}
	return result, nil
}

// executeStep runs one step and folds its outcome into a trace event.
func (r *runner) executeStep(step *Step) TraceEvent {
	switch step.Op {
	case OpDecl, OpMaterialize:
		return r.declare(step)
	case OpWrite:
		return r.write(step)
	case OpRead:
		res, d := r.ctx.Eval(eval.Load{Path: step.Path})
		ev := TraceEvent{Op: OpRead, Target: step.Path}
		if d != nil {
			return withDiagnostic(ev, d)
		}
		if res.Val != nil {
			ev.Result = types.FormatValue(res.Val)
		}
		return ev
	case OpCopy, OpMove:
		d := r.ctx.Exec(eval.Assign{
			Target: step.Path,
			Value:  eval.Load{Path: step.From},
			Move:   step.Op == OpMove,
		})
		ev := TraceEvent{Op: step.Op, Target: step.Path, Value: step.From}
		return withDiagnostic(ev, d)
	case OpDestroy:
		d := r.ctx.Exec(eval.DestroyStmt{Target: step.Path})
		return withDiagnostic(TraceEvent{Op: OpDestroy, Target: step.Path}, d)
	case OpAddrEq:
		res, d := r.ctx.Eval(eval.AddrEq{A: step.A, B: step.B})
		ev := TraceEvent{Op: OpAddrEq, Target: step.A + " == " + step.B}
		if d != nil {
			return withDiagnostic(ev, d)
		}
		ev.Result = types.FormatValue(res.Val)
		return ev
	case OpLifetime:
		res, d := r.ctx.Eval(eval.InLifetime{Path: step.Path})
		ev := TraceEvent{Op: OpLifetime, Target: step.Path}
		if d != nil {
			return withDiagnostic(ev, d)
		}
		ev.Result = types.FormatValue(res.Val)
		return ev
	default:
		// validateScenario rejects unknown ops before execution.
		panic(fmt.Sprintf("harness: unknown op %q", step.Op))
	}
}

func (r *runner) declare(step *Step) TraceEvent {
	ev := TraceEvent{Op: step.Op, Target: step.Name, Value: step.Type}

	h, ok := r.ctx.Arena().Lookup(step.Type)
	if !ok {
		ev.Error = "ScenarioError"
		ev.Note = fmt.Sprintf("unknown layout %q", step.Type)
		return ev
	}

	var spec eval.InitSpec
	switch {
	case step.List != nil:
		list, err := toListInit(step.List)
		if err != nil {
			ev.Error = "ScenarioError"
			ev.Note = err.Error()
			return ev
		}
		spec = eval.BracedSpec{List: list}
	case step.Init == "value":
		spec = eval.ValueSpec{}
	default:
		spec = eval.DefaultSpec{}
	}

	var d *diag.Diagnostic
	if step.Op == OpMaterialize {
		d = r.ctx.MaterializeConst(step.Name, h, spec, diag.NoSrc)
	} else {
		d = r.ctx.Declare(step.Name, h, spec, diag.NoSrc)
	}
	return withDiagnostic(ev, d)
}

func (r *runner) write(step *Step) TraceEvent {
	ev := TraceEvent{Op: OpWrite, Target: step.Path}

	val, err := toValue(step.Value)
	if err != nil {
		ev.Error = "ScenarioError"
		ev.Note = err.Error()
		return ev
	}
	ev.Value = types.FormatValue(val)

	d := r.ctx.Exec(eval.Assign{Target: step.Path, Value: eval.Lit{Val: val}})
	return withDiagnostic(ev, d)
}

// withDiagnostic folds a diagnostic into an event; a nil diagnostic leaves it
// unchanged.
func withDiagnostic(ev TraceEvent, d *diag.Diagnostic) TraceEvent {
	if d == nil {
		return ev
	}
	ev.Error = d.Tag.String()
	ev.Note = d.Primary()
	return ev
}

// checkExpectations validates a step's inline expectations against its trace
// event, accumulating failures on the result.
func checkExpectations(result *Result, index int, step *Step, ev TraceEvent) {
	if ev.Error == "ScenarioError" {
		result.AddError("steps[%d] (%s): %s", index, step.Op, ev.Note)
		return
	}

	if step.ExpectError != "" {
		if ev.Error == "" {
			result.AddError("steps[%d] (%s %s): expected error %s, step succeeded",
				index, step.Op, ev.Target, step.ExpectError)
			return
		}
		if ev.Error != step.ExpectError {
			result.AddError("steps[%d] (%s %s): expected error %s, got %s: %s",
				index, step.Op, ev.Target, step.ExpectError, ev.Error, ev.Note)
			return
		}
	} else if ev.Error != "" {
		result.AddError("steps[%d] (%s %s): unexpected error %s: %s",
			index, step.Op, ev.Target, ev.Error, ev.Note)
		return
	}

	if step.ExpectNote != "" && !strings.Contains(ev.Note, step.ExpectNote) {
		result.AddError("steps[%d] (%s %s): note %q does not contain %q",
			index, step.Op, ev.Target, ev.Note, step.ExpectNote)
	}

	if step.Expect != nil {
		want := renderAny(step.Expect)
		if ev.Result != want {
			result.AddError("steps[%d] (%s %s): expected %s, got %s",
				index, step.Op, ev.Target, want, ev.Result)
		}
	}
}

// toValue converts a YAML-parsed scalar to an evaluator value.
func toValue(v any) (types.Value, error) {
	switch val := v.(type) {
	case int:
		return types.IntVal(int64(val)), nil
	case int64:
		return types.IntVal(val), nil
	case uint64:
		return types.UintVal(val), nil
	case float64:
		return types.FloatVal(val), nil
	case bool:
		return types.BoolVal(val), nil
	case nil:
		return nil, fmt.Errorf("null is not a value")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// toInit converts a YAML-parsed initializer element: a single-entry map is a
// designated initializer, a list is a nested braced list, anything else a
// scalar.
func toInit(v any) (types.Init, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) != 1 {
			return nil, fmt.Errorf("designated initializer must have exactly one field, got %d", len(val))
		}
		for field, inner := range val {
			init, err := toInit(inner)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", field, err)
			}
			return types.FieldInit{Field: field, Init: init}, nil
		}
		panic("unreachable")
	case []any:
		return toListInit(val)
	default:
		scalar, err := toValue(v)
		if err != nil {
			return nil, err
		}
		return types.ScalarInit{Val: scalar}, nil
	}
}

func toListInit(elems []any) (types.ListInit, error) {
	list := types.ListInit{Elems: make([]types.Init, len(elems))}
	for i, e := range elems {
		init, err := toInit(e)
		if err != nil {
			return types.ListInit{}, fmt.Errorf("list[%d]: %w", i, err)
		}
		list.Elems[i] = init
	}
	return list, nil
}

// renderAny formats an expected value the way the evaluator formats results.
func renderAny(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", v)
	}
}
