// Package testutil provides deterministic helpers for evaluator tests.
package testutil

// FixedTokenSource generates the same evaluation token every time.
//
// This enables deterministic test execution and golden trace comparison:
// the same scenario with the same FixedTokenSource produces byte-identical
// traces.
//
// Thread-safety: FixedTokenSource is stateless and safe for concurrent use.
type FixedTokenSource struct {
	token string
}

// NewFixedTokenSource creates a fixed evaluation-token source.
//
// If token is empty, Generate() returns "test-eval-default".
func NewFixedTokenSource(token string) *FixedTokenSource {
	if token == "" {
		token = "test-eval-default"
	}
	return &FixedTokenSource{token: token}
}

// Generate returns the fixed evaluation token.
//
// Implements eval.TokenSource.
func (s *FixedTokenSource) Generate() string {
	return s.token
}
