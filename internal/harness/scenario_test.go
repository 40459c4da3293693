package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenarioFile(t, `
name: basic
description: loads a minimal scenario
layouts: |
  layouts: {
    U: {
      kind: "union"
      fields: [{name: "a", type: "int"}]
    }
  }
steps:
  - op: decl
    name: u
    type: U
  - op: write
    path: u.a
    value: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", scenario.Name)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, OpDecl, scenario.Steps[0].Op)
	assert.Equal(t, 1, scenario.Steps[1].Value)
}

func TestLoadScenarioLayoutFile(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "layouts.cue")
	require.NoError(t, os.WriteFile(layoutPath, []byte(`layouts: {U: {kind: "union", fields: [{name: "a", type: "int"}]}}`), 0o644))

	scenarioPath := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
name: file-layouts
description: layout_file resolves relative to the scenario
layout_file: layouts.cue
steps:
  - op: decl
    name: u
    type: U
`), 0o644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)
	assert.Contains(t, scenario.Layouts, `kind: "union"`)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenarioFile(t, `
name: typo
description: catches misspelled keys
layouts: "layouts: {}"
stepz:
  - op: decl
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidateScenario(t *testing.T) {
	valid := func() *Scenario {
		return &Scenario{
			Name:        "s",
			Description: "d",
			Layouts:     "layouts: {}",
			Steps:       []Step{{Op: OpDecl, Name: "u", Type: "U"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"missing layouts", func(s *Scenario) { s.Layouts = "" }, "layouts"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps list is required"},
		{"missing op", func(s *Scenario) { s.Steps[0].Op = "" }, "op is required"},
		{"unknown op", func(s *Scenario) { s.Steps[0].Op = "frobnicate" }, `unknown op "frobnicate"`},
		{"decl without type", func(s *Scenario) { s.Steps[0].Type = "" }, "type is required"},
		{"bad init", func(s *Scenario) { s.Steps[0].Init = "zeroed" }, `init must be "default" or "value"`},
		{
			"init and list together",
			func(s *Scenario) { s.Steps[0].Init = "value"; s.Steps[0].List = []any{1} },
			"mutually exclusive",
		},
		{
			"write without value",
			func(s *Scenario) { s.Steps[0] = Step{Op: OpWrite, Path: "u.a"} },
			"value is required",
		},
		{
			"read without path",
			func(s *Scenario) { s.Steps[0] = Step{Op: OpRead} },
			"path is required",
		},
		{
			"copy without from",
			func(s *Scenario) { s.Steps[0] = Step{Op: OpCopy, Path: "v"} },
			"from is required",
		},
		{
			"addr_eq without operands",
			func(s *Scenario) { s.Steps[0] = Step{Op: OpAddrEq, A: "u.a"} },
			"a and b are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := validateScenario(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, validateScenario(valid()))
}
