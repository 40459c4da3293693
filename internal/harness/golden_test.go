package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioGoldens runs every scenario under testdata/scenarios and pins
// its trace against the matching golden file. Regenerate with
// `go test ./internal/harness -update` after an intentional wording change.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestTraceSnapshotCanonicalMap(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "snap",
		Token:        "tok",
		Trace: []TraceEvent{
			{Op: OpRead, Target: "u.a", Result: "1"},
			{Op: OpRead, Target: "u.b", Error: "InactiveMemberAccess", Note: "n"},
		},
	}

	m := snapshot.toCanonicalMap()
	assert.Equal(t, "snap", m["scenario_name"])
	assert.Equal(t, "tok", m["token"])

	trace, ok := m["trace"].([]any)
	require.True(t, ok)
	require.Len(t, trace, 2)

	first, ok := trace[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1", first["result"])
	assert.NotContains(t, first, "error")

	second, ok := trace[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "InactiveMemberAccess", second["error"])
	assert.NotContains(t, second, "result")
}
