// Package eval implements the constant evaluator's access validation and
// aggregate initialization core.
//
// One Context exists per top-level constant evaluation. It owns every
// Record allocated during that evaluation and is discarded wholesale when
// the evaluation ends; failures never leak into a sibling evaluation.
//
// ARCHITECTURE:
//
// Single-threaded recursive walk:
// Evaluation is a plain recursive tree-walk with no parallelism and no
// suspension. "Blocking" is ordinary nested call/return, e.g. a default
// member initializer that performs a nested constant call. This keeps
// evaluation deterministic and reproducible:
//   - initializer lists evaluate strictly left to right unless designators
//     reorder them explicitly
//   - default member initializers apply in declaration order
//   - scope-exit destruction runs in reverse declaration order
//
// Any validator failure aborts the entire enclosing top-level evaluation
// immediately. No partial result is retained or retried; the host
// re-invokes evaluation afresh for a different expression.
//
// The package splits along the evaluator's component seams:
//   - validator.go   - the single access gatekeeper (read/write/call/
//     destroy/address-of)
//   - initializer.go - aggregate initialization, activation rules, copy and
//     move transfer
//   - identity.go    - static address-identity reasoning over layouts
//   - lifetime.go    - the non-failing liveness probe
//   - walk.go        - the statement/expression walk driving all of it
package eval
