package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a set of record layouts plus an
// ordered list of evaluation steps with expected outcomes. Scenarios are the
// data-driven complement to the package-level unit tests; each one exercises
// the evaluator end to end through the same API a host front end uses.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// basename.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layouts is an inline CUE source defining the record layouts the steps
	// use. Exactly one of Layouts or LayoutFile must be set.
	Layouts string `yaml:"layouts,omitempty"`

	// LayoutFile is a path to a CUE layout file, relative to the scenario
	// file location.
	LayoutFile string `yaml:"layout_file,omitempty"`

	// Token is an optional fixed evaluation token. If empty, the runner
	// falls back to the testutil default so golden traces stay stable.
	Token string `yaml:"token,omitempty"`

	// Steps is the ordered list of evaluation steps.
	Steps []Step `yaml:"steps"`
}

// Step operation names.
const (
	OpDecl        = "decl"
	OpMaterialize = "materialize"
	OpWrite       = "write"
	OpRead        = "read"
	OpCopy        = "copy"
	OpMove        = "move"
	OpDestroy     = "destroy"
	OpAddrEq      = "addr_eq"
	OpLifetime    = "lifetime"
)

// Step is one evaluation step. Which fields apply depends on Op:
//
//   - decl:        name, type, init (default|value) or list
//   - materialize: name, type, init or list; also checks full initialization
//   - write:       path, value
//   - read:        path
//   - copy/move:   path (target), from (source designator)
//   - destroy:     path
//   - addr_eq:     a, b
//   - lifetime:    path
//
// Every step may carry an inline expectation: expect (rendered result for
// read, addr_eq, and lifetime), expect_error (diagnostic tag name), and
// expect_note (substring that must appear in the diagnostic's note chain).
type Step struct {
	Op string `yaml:"op"`

	Name string `yaml:"name,omitempty"`
	Type string `yaml:"type,omitempty"`
	Init string `yaml:"init,omitempty"`
	List []any  `yaml:"list,omitempty"`

	Path  string `yaml:"path,omitempty"`
	Value any    `yaml:"value,omitempty"`
	From  string `yaml:"from,omitempty"`

	A string `yaml:"a,omitempty"`
	B string `yaml:"b,omitempty"`

	Expect      any    `yaml:"expect,omitempty"`
	ExpectError string `yaml:"expect_error,omitempty"`
	ExpectNote  string `yaml:"expect_note,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file, resolving a layout_file
// reference relative to the scenario's directory. Unknown YAML fields are
// rejected so typos surface as load errors rather than silently ignored
// expectations.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.LayoutFile != "" {
		ref := scenario.LayoutFile
		if !filepath.IsAbs(ref) {
			ref = filepath.Join(filepath.Dir(path), ref)
		}
		src, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read layout file: %w", err)
		}
		scenario.Layouts = string(src)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and every step is
// well formed for its operation.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Layouts == "" {
		return fmt.Errorf("layouts (or layout_file) is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpDecl, OpMaterialize:
		if st.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for %s", index, st.Op)
		}
		if st.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for %s", index, st.Op)
		}
		if st.Init != "" && st.Init != "default" && st.Init != "value" {
			return fmt.Errorf("steps[%d]: init must be \"default\" or \"value\", got %q", index, st.Init)
		}
		if st.Init != "" && st.List != nil {
			return fmt.Errorf("steps[%d]: init and list are mutually exclusive", index)
		}
	case OpWrite:
		if st.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for write", index)
		}
		if st.Value == nil {
			return fmt.Errorf("steps[%d]: value is required for write", index)
		}
	case OpRead, OpDestroy, OpLifetime:
		if st.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for %s", index, st.Op)
		}
	case OpCopy, OpMove:
		if st.Path == "" {
			return fmt.Errorf("steps[%d]: path is required for %s", index, st.Op)
		}
		if st.From == "" {
			return fmt.Errorf("steps[%d]: from is required for %s", index, st.Op)
		}
	case OpAddrEq:
		if st.A == "" || st.B == "" {
			return fmt.Errorf("steps[%d]: a and b are required for addr_eq", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}
