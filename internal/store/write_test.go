package store

import (
	"context"
	"math"
	"testing"

	"github.com/roach88/distlab/internal/ir"
)

func TestWriteEvaluation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "run-1", 1)
	ev.Function = "rng"
	ev.Draws = 100
	ev.Seed = 42
	ev.Inputs = ir.IRObject{"x": ir.IRArray{ir.IRFloat(0.5), ir.IRFloat(-1.5)}}

	if err := s.WriteEvaluation(ctx, ev); err != nil {
		t.Fatalf("WriteEvaluation() failed: %v", err)
	}

	rec, err := s.ReadEvaluation(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ReadEvaluation() failed: %v", err)
	}

	got := rec.Evaluation
	if got.RunID != "run-1" || got.Function != "rng" || got.Draws != 100 || got.Seed != 42 {
		t.Errorf("evaluation fields mismatch: %+v", got)
	}
	if got.Spec.Name != "income" || got.Spec.Family != "pareto" {
		t.Errorf("spec mismatch: %+v", got.Spec)
	}
	if got.Spec.Params["y_min"] != 1 || got.Spec.Params["alpha"] != 2.5 {
		t.Errorf("params = %v, want y_min=1 alpha=2.5", got.Spec.Params)
	}
	if len(got.Points) != 2 || got.Points[0] != 1.5 || got.Points[1] != 2 {
		t.Errorf("points = %v, want [1.5 2]", got.Points)
	}
	arr, ok := got.Inputs["x"].(ir.IRArray)
	if !ok || len(arr) != 2 || arr[1] != ir.IRFloat(-1.5) {
		t.Errorf("inputs = %v, want x=[0.5 -1.5]", got.Inputs)
	}
	if rec.Outcome != nil {
		t.Errorf("expected no outcome, got %+v", rec.Outcome)
	}
}

func TestWriteEvaluation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvaluation("ev-1", "run-1", 1)
	for i := 0; i < 3; i++ {
		if err := s.WriteEvaluation(ctx, ev); err != nil {
			t.Fatalf("WriteEvaluation() iteration %d failed: %v", i, err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("evaluation count = %d, want 1", count)
	}
}

func TestWriteEvaluation_RejectsNonFiniteParams(t *testing.T) {
	s := createTestStore(t)

	ev := createTestEvaluation("ev-1", "run-1", 1)
	ev.Spec.Params = map[string]float64{"alpha": math.Inf(1)}
	if err := s.WriteEvaluation(context.Background(), ev); err == nil {
		t.Error("expected error for non-finite parameter")
	}
}

func TestWriteOutcome_NonFiniteValues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteEvaluation(ctx, createTestEvaluation("ev-1", "run-1", 1)); err != nil {
		t.Fatalf("WriteEvaluation() failed: %v", err)
	}
	out := createTestOutcome("out-1", "ev-1", 2, math.Inf(-1), -0.5, math.NaN())
	if err := s.WriteOutcome(ctx, out); err != nil {
		t.Fatalf("WriteOutcome() failed: %v", err)
	}

	rec, err := s.ReadEvaluation(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ReadEvaluation() failed: %v", err)
	}
	if rec.Outcome == nil {
		t.Fatal("expected outcome")
	}
	v := rec.Outcome.Values
	if len(v) != 3 || !math.IsInf(v[0], -1) || v[1] != -0.5 || !math.IsNaN(v[2]) {
		t.Errorf("values = %v, want [-inf -0.5 nan]", v)
	}
}

func TestWriteOutcome_ErrorStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.WriteEvaluation(ctx, createTestEvaluation("ev-1", "run-1", 1)); err != nil {
		t.Fatalf("WriteEvaluation() failed: %v", err)
	}
	out := ir.Outcome{
		ID:           "out-1",
		EvaluationID: "ev-1",
		Status:       ir.StatusError,
		ErrorCode:    "INVALID_PARAMETER",
		Message:      "alpha must be positive",
		Seq:          2,
	}
	if err := s.WriteOutcome(ctx, out); err != nil {
		t.Fatalf("WriteOutcome() failed: %v", err)
	}

	rec, err := s.ReadEvaluation(ctx, "ev-1")
	if err != nil {
		t.Fatalf("ReadEvaluation() failed: %v", err)
	}
	if rec.Outcome.Status != ir.StatusError || rec.Outcome.ErrorCode != "INVALID_PARAMETER" {
		t.Errorf("outcome = %+v", rec.Outcome)
	}
	if len(rec.Outcome.Values) != 0 {
		t.Errorf("values = %v, want empty", rec.Outcome.Values)
	}
}

func TestWriteOutcome_RequiresEvaluation(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteOutcome(context.Background(), createTestOutcome("out-1", "missing", 1))
	if err == nil {
		t.Error("expected foreign key error for missing evaluation")
	}
}
