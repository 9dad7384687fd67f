package harness

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/distlab/internal/testutil"
)

// modelSpecs returns the absolute path of the shared model specs.
// Tests run from the package directory, so go up two levels to the root.
func modelSpecs(t *testing.T) string {
	t.Helper()
	dir, err := filepath.Abs("../../testdata/specs")
	require.NoError(t, err)
	return dir
}

func TestRun_PassingChecks(t *testing.T) {
	scenario := &Scenario{
		Name:        "passing",
		Description: "closed forms",
		Specs:       modelSpecs(t),
		RunID:       "test-run-passing",
		Checks: []Check{
			{Spec: "income", Function: "cdf", Points: ValueList{2}, Expect: ValueList{0.75}, Tolerance: 1e-12},
			{Spec: "income", Function: "lpdf", Points: ValueList{0.5}, Expect: ValueList{math.Inf(-1)}},
			{Spec: "coin", Function: "lpdf", Points: ValueList{1}, ExpectError: "UNKNOWN_FUNCTION"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "test-run-passing", result.RunID)

	// One evaluation and one outcome per check, read back from the store.
	require.Len(t, result.Trace, 6)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}
	assert.Equal(t, EventEvaluation, result.Trace[0].Type)
	assert.Equal(t, "income", result.Trace[0].Spec)
	assert.Equal(t, EventOutcome, result.Trace[5].Type)
	assert.Equal(t, "error", result.Trace[5].Status)
	assert.Equal(t, "UNKNOWN_FUNCTION", result.Trace[5].ErrorCode)
}

func TestRun_DefaultRunID(t *testing.T) {
	scenario := &Scenario{
		Name:        "default_run",
		Description: "no run_id",
		Specs:       modelSpecs(t),
		Checks:      []Check{{Spec: "coin", Function: "mean", Expect: ValueList{0.3}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultRunID, result.RunID)
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatches",
		Description: "every check fails",
		Specs:       modelSpecs(t),
		Checks: []Check{
			{Spec: "income", Function: "cdf", Points: ValueList{2}, Expect: ValueList{0.5}},
			{Spec: "income", Function: "cdf", Points: ValueList{2, 4}, Expect: ValueList{0.75}},
			{Spec: "coin", Function: "mean", ExpectError: "UNKNOWN_FUNCTION"},
			{Spec: "coin", Function: "lpdf", Points: ValueList{1}, Expect: ValueList{0}},
			{Spec: "nope", Function: "mean", Expect: ValueList{1}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "income cdf: value[0]: expected 0.5, got ")
	assert.Contains(t, result.Errors[1], "expected 1 values, got 2")
	assert.Contains(t, result.Errors[2], "expected error UNKNOWN_FUNCTION, got success")
	assert.Contains(t, result.Errors[3], "unexpected error")
	assert.Contains(t, result.Errors[4], `unknown spec "nope"`)

	// The unknown spec never reaches the engine.
	assert.Len(t, result.Trace, 8)
}

func TestRun_SpecLoadFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "spec directory missing",
		Specs:       filepath.Join(t.TempDir(), "absent"),
		Checks:      []Check{{Spec: "coin", Function: "mean", Expect: ValueList{0.3}}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specs")
}

func TestRun_IsolatedAndDeterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "repeat",
		Description: "same scenario twice",
		Specs:       modelSpecs(t),
		Seed:        99,
		Properties: []Property{
			{Type: PropertyMoments, Spec: "coin", Draws: 5000, Stats: []string{StatMean}, Tolerance: 0.2},
		},
	}

	first, err := RunContext(context.Background(), scenario)
	require.NoError(t, err)
	second, err := RunContext(context.Background(), scenario)
	require.NoError(t, err)

	// Fresh store per run: seq restarts and nothing is served from cache.
	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, int64(1), second.Trace[0].Seq)
	assert.False(t, second.Trace[1].Cached)
}

func TestRun_RNGCheck(t *testing.T) {
	scenario := &Scenario{
		Name:        "rng",
		Description: "draws are reproducible",
		Specs:       modelSpecs(t),
		Seed:        5,
		Checks:      []Check{{Spec: "income", Function: "rng", Expect: ValueList{0, 0, 0}}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	// The draws themselves are not zero, but the request is sized by Expect.
	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, int64(3), result.Trace[0].Draws)
	assert.Len(t, result.Trace[1].Values, 3)
	for _, v := range result.Trace[1].Values {
		assert.GreaterOrEqual(t, v, 1.0)
	}
}

func TestTraceFromRecords_TruncatesLongLists(t *testing.T) {
	scenario := &Scenario{
		Name:        "long",
		Description: "quadrature grid",
		Specs:       modelSpecs(t),
		Properties:  []Property{{Type: PropertyIntegratesToOne, Spec: "income"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	// quantile, lpdf and lccdf; only the quadrature grid is truncated.
	require.Len(t, result.Trace, 6)
	assert.Equal(t, "quantile", result.Trace[0].Function)
	assert.Len(t, result.Trace[0].Points, 2)
	assert.Nil(t, result.Trace[2].Points)
	assert.Equal(t, 2*quadratureNodes, result.Trace[2].Count)
	assert.Nil(t, result.Trace[3].Values)
	assert.Equal(t, 2*quadratureNodes, result.Trace[3].Count)
	assert.Equal(t, "lccdf", result.Trace[4].Function)
}

func TestApproxEqual(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		got, want, tol float64
		ok             bool
	}{
		{0.75, 0.75, 0, true},
		{0.7500001, 0.75, 1e-6, true},
		{0.751, 0.75, 1e-6, false},
		{1000.0005, 1000, 1e-6, true}, // relative above 1
		{1000.01, 1000, 1e-6, false},
		{inf, inf, 0, true},
		{-inf, inf, 0, false},
		{1e300, inf, 1, false},
		{inf, 1, 1, false},
		{math.NaN(), math.NaN(), 0, true},
		{0, math.NaN(), 1, false},
		{math.NaN(), 0, 1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, approxEqual(tt.got, tt.want, tt.tol), "approxEqual(%v, %v, %v)", tt.got, tt.want, tt.tol)
	}
}
