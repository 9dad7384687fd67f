package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/distlab/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvaluation creates a test evaluation with minimal required fields.
func createTestEvaluation(id, runID string, seq int64) ir.Evaluation {
	return ir.Evaluation{
		ID:    id,
		RunID: runID,
		Spec: ir.DistSpec{
			Name:   "income",
			Family: "pareto",
			Params: map[string]float64{"y_min": 1, "alpha": 2.5},
		},
		Function:      "lpdf",
		Points:        ir.Values{1.5, 2},
		CacheKey:      "key-" + id,
		Seq:           seq,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

// createTestOutcome creates a successful test outcome.
func createTestOutcome(id, evaluationID string, seq int64, values ...float64) ir.Outcome {
	return ir.Outcome{
		ID:           id,
		EvaluationID: evaluationID,
		Status:       ir.StatusOK,
		Values:       ir.Values(values),
		Seq:          seq,
	}
}
