// Package types provides the type-descriptor layer for the constant
// evaluator.
//
// This package contains descriptor and value definitions only. All other
// internal packages import types; types imports nothing internal. This keeps
// descriptors the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Record descriptors live in an Arena and refer to each other by integer
//     Handle, never by pointer. Self-referential aggregates (anonymous
//     structs/unions nested inside each other) therefore never form
//     reference cycles.
//   - Field offsets and sizes are supplied by the front-end collaborator.
//     This package validates and consumes layout; it never computes one.
//   - Non-trivial member semantics (construct/destroy/copy/move) arrive as
//     opaque Evaluator callbacks. The core performs no virtual dispatch of
//     its own.
package types
