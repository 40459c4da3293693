package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/kestrel-lang/kestrel/internal/types"
)

// TraceSnapshot captures a scenario run for golden comparison. Serialization
// goes through canonical JSON so the golden bytes are stable across Go map
// iteration order.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Token        string       `json:"token"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot to plain maps for canonical JSON
// serialization. Empty event fields are omitted so diagnostics stand out in
// the golden text.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"op": event.Op,
		}
		if event.Target != "" {
			eventMap["target"] = event.Target
		}
		if event.Value != "" {
			eventMap["value"] = event.Value
		}
		if event.Result != "" {
			eventMap["result"] = event.Result
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		if event.Note != "" {
			eventMap["note"] = event.Note
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"token":         s.Token,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario, fails the test on any inline expectation
// failure, and compares the trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Token:        result.Token,
		Trace:        result.Trace,
	}
	traceJSON, err := types.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
