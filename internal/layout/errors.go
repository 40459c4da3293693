package layout

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// CompileError reports a problem in a CUE layout definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: layout %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("layout %s: %s", e.Field, e.Message)
}
