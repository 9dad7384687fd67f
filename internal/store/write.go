package store

import (
	"context"
	"fmt"

	"github.com/roach88/distlab/internal/ir"
)

// WriteEvaluation inserts an evaluation record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., NOT NULL) will still return errors.
func (s *Store) WriteEvaluation(ctx context.Context, ev ir.Evaluation) error {
	paramsJSON, err := marshalParams(ev.Spec.Params)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	pointsJSON, err := marshalValues(ev.Points)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	inputsJSON, err := marshalInputs(ev.Inputs)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(id, run_id, spec_name, family, params, function, points, inputs,
		 draws, seed, cache_key, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.RunID,
		ev.Spec.Name,
		ev.Spec.Family,
		paramsJSON,
		ev.Function,
		pointsJSON,
		inputsJSON,
		ev.Draws,
		ev.Seed,
		ev.CacheKey,
		ev.Seq,
		ev.EngineVersion,
		ev.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	return nil
}

// WriteOutcome inserts an outcome record into the store.
// Each evaluation has exactly ONE outcome (UNIQUE on evaluation_id); a
// second write for the same evaluation is silently ignored.
//
// Note: The evaluation referenced by EvaluationID must exist (foreign key constraint).
func (s *Store) WriteOutcome(ctx context.Context, out ir.Outcome) error {
	resultJSON, err := marshalValues(out.Values)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO outcomes
		(id, evaluation_id, status, result, error_code, message, seq, cached)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		out.ID,
		out.EvaluationID,
		out.Status,
		resultJSON,
		out.ErrorCode,
		out.Message,
		out.Seq,
		boolToInt(out.Cached),
	)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}

	return nil
}
