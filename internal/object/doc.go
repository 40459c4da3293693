// Package object implements the typed storage tree for aggregate constant
// values, together with the per-union active-member tracker.
//
// A Record is the live storage for one struct or union; it owns one Cell per
// field. Cells hold either a scalar, a nested Record, or fixed-length array
// element storage. All cells begin in an "unspecified value, not yet
// written" state.
//
// INVARIANTS:
//   - A union Record has at most one active field at any instant.
//   - Activating a field atomically supersedes the previous one and clears
//     the active member of every union nested inside the superseded branch,
//     recursively (cascading deactivation).
//   - Struct Records carry no liveness state of their own.
//   - Storage is exclusively owned: a Cell has exactly one parent Record and
//     is never shared between evaluation contexts.
//
// Evaluation is single-threaded by design; nothing in this package is safe
// for concurrent mutation and nothing needs to be.
package object
