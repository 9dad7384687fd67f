package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/distlab/internal/ir"
)

// ErrRunNotFound is returned by Replay for a run with no records.
var ErrRunNotFound = errors.New("run not found")

// ReplayMismatch is an evaluation whose recomputed outcome differs from the
// stored one.
type ReplayMismatch struct {
	EvaluationID   string    `json:"evaluation_id"`
	Seq            int64     `json:"seq"`
	Function       string    `json:"function"`
	StoredStatus   string    `json:"stored_status"`
	ReplayedStatus string    `json:"replayed_status"`
	Stored         ir.Values `json:"stored"`
	Replayed       ir.Values `json:"replayed"`
}

// ReplayResult summarises a replay of one run.
type ReplayResult struct {
	RunID         string           `json:"run_id"`
	Evaluations   int              `json:"evaluations"`
	Incomplete    int              `json:"incomplete"` // evaluations without an outcome
	Skipped       int              `json:"skipped"`    // rejected by the draw budget, which replay does not track
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches"`
}

// Replay recomputes every completed evaluation of runID through the same
// code path Evaluate uses and compares the result with the stored outcome.
// The store is only read. Cached outcomes are recomputed as well, so a
// replay also checks that memoisation served the right values.
func (e *Engine) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	records, err := e.store.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("replay %s: %w", runID, ErrRunNotFound)
	}

	result := &ReplayResult{RunID: runID, Mismatches: []ReplayMismatch{}}
	for _, rec := range records {
		result.Evaluations++
		if rec.Outcome == nil {
			result.Incomplete++
			continue
		}
		if rec.Outcome.ErrorCode == string(ErrCodeQuotaExceeded) {
			result.Skipped++
			continue
		}

		status := ir.StatusOK
		values, err := compute(rec.Evaluation)
		if err != nil {
			status = ir.StatusError
			values = ir.Values{}
		}
		if status != rec.Outcome.Status || !sameValues(values, rec.Outcome.Values) {
			result.Mismatches = append(result.Mismatches, ReplayMismatch{
				EvaluationID:   rec.Evaluation.ID,
				Seq:            rec.Evaluation.Seq,
				Function:       rec.Evaluation.Function,
				StoredStatus:   rec.Outcome.Status,
				ReplayedStatus: status,
				Stored:         rec.Outcome.Values,
				Replayed:       values,
			})
		}
	}
	result.Deterministic = len(result.Mismatches) == 0

	e.logger.Info("replay complete",
		"run_id", runID,
		"evaluations", result.Evaluations,
		"mismatches", len(result.Mismatches))
	return result, nil
}

// sameValues compares bit-for-bit, treating NaN as equal to NaN.
func sameValues(a, b ir.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}
