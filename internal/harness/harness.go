package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/distlab/internal/compiler"
	"github.com/roach88/distlab/internal/engine"
	"github.com/roach88/distlab/internal/ir"
	"github.com/roach88/distlab/internal/store"
	"github.com/roach88/distlab/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios through a real engine with a deterministic clock and
// run ID, so the recorded trace is reproducible byte for byte.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	specs  *compiler.LoadResult
	runID  string
	seed   int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load and validate the CUE specs
// 3. Execute checks, then properties, through the engine
// 4. Read the run back from the store as the trace
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	specs, errs := compiler.LoadSpecs(scenario.Specs, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
	}

	runGen := testutil.NewFixedRunGenerator(scenario.RunID)
	h := &Harness{
		store: st,
		engine: engine.New(st,
			engine.WithClock(testutil.NewDeterministicClock()),
			engine.WithRunIDGenerator(runGen),
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
		),
		specs: specs,
		runID: runGen.Generate(),
		seed:  scenario.Seed,
	}

	result := NewResult(h.runID)

	for i, c := range scenario.Checks {
		if err := h.runCheck(ctx, i, c, result); err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}
	}

	for i, p := range scenario.Properties {
		pr, err := h.runProperty(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("properties[%d]: %w", i, err)
		}
		result.addProperty(pr)
	}

	records, err := st.ReadRun(ctx, h.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = traceFromRecords(records)

	return result, nil
}

// runCheck evaluates one check and records mismatches on result.
// Only infrastructure failures are returned as errors.
func (h *Harness) runCheck(ctx context.Context, index int, c Check, result *Result) error {
	spec, ok := h.specs.Dist(c.Spec)
	if !ok {
		result.AddError(fmt.Sprintf("checks[%d]: unknown spec %q", index, c.Spec))
		return nil
	}

	req := engine.Request{
		RunID:    h.runID,
		Spec:     spec,
		Function: c.Function,
		Points:   c.Points,
	}
	if c.Function == engine.FuncRNG {
		req.Draws = len(c.Expect)
		req.Seed = h.seed
	}

	report, err := h.engine.Evaluate(ctx, req)
	code := engine.CodeOf(err)
	if err != nil && code == "" {
		return err
	}

	if c.ExpectError != "" {
		if string(code) != c.ExpectError {
			result.AddError(fmt.Sprintf("checks[%d]: %s %s: expected error %s, got %s",
				index, c.Spec, c.Function, c.ExpectError, describeCode(code)))
		}
		return nil
	}
	if err != nil {
		result.AddError(fmt.Sprintf("checks[%d]: %s %s: unexpected error: %v", index, c.Spec, c.Function, err))
		return nil
	}

	tol := c.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if msg := compareValues(report.Outcome.Values, ir.Values(c.Expect), tol); msg != "" {
		result.AddError(fmt.Sprintf("checks[%d]: %s %s: %s", index, c.Spec, c.Function, msg))
	}
	return nil
}

func describeCode(code engine.RuntimeErrorCode) string {
	if code == "" {
		return "success"
	}
	return string(code)
}

// compareValues returns "" when got matches want within tol, otherwise a
// description of the first mismatch.
func compareValues(got, want ir.Values, tol float64) string {
	if len(got) != len(want) {
		return fmt.Sprintf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if !approxEqual(got[i], want[i], tol) {
			return fmt.Sprintf("value[%d]: expected %s, got %s",
				i, ir.FormatValue(want[i]), ir.FormatValue(got[i]))
		}
	}
	return ""
}

// approxEqual compares with an absolute tolerance for |want| <= 1 and a
// relative one above. Non-finite values must match exactly.
func approxEqual(got, want, tol float64) bool {
	switch {
	case math.IsNaN(want):
		return math.IsNaN(got)
	case math.IsInf(want, 0):
		return got == want
	case math.IsNaN(got) || math.IsInf(got, 0):
		return false
	}
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}
