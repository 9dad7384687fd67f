package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/distlab/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Content hashes (evaluation, outcome and cache key IDs) are left out so a
// snapshot only changes when observable behavior does.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Spec != "" {
			eventMap["spec"] = event.Spec
		}
		if event.Function != "" {
			eventMap["function"] = event.Function
		}
		if len(event.Points) > 0 {
			eventMap["points"] = event.Points.IR()
		}
		if event.Draws > 0 {
			eventMap["draws"] = event.Draws
		}
		if event.Status != "" {
			eventMap["status"] = event.Status
		}
		if len(event.Values) > 0 {
			eventMap["values"] = event.Values.IR()
		}
		if event.ErrorCode != "" {
			eventMap["error_code"] = event.ErrorCode
		}
		if event.Type == EventOutcome {
			eventMap["cached"] = event.Cached
		}
		if event.Count > 0 {
			eventMap["count"] = event.Count
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"trace":         traceList,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		RunID:        result.RunID,
		Trace:        result.Trace,
	}
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
