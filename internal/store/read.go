package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/distlab/internal/ir"
)

// recordColumns selects an evaluation joined with its (optional) outcome.
const recordColumns = `
	e.id, e.run_id, e.spec_name, e.family, e.params, e.function, e.points, e.inputs,
	e.draws, e.seed, e.cache_key, e.seq, e.engine_version, e.ir_version,
	o.id, o.status, o.result, o.error_code, o.message, o.seq, o.cached`

// ReadRun returns every evaluation recorded under runID with its outcome.
// Results are ordered deterministically: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the run has no records.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]ir.Record, error) {
	return s.Query(ctx, Filter{RunID: runID})
}

// ReadEvaluation returns a single evaluation by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvaluation(ctx context.Context, id string) (ir.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM evaluations e
		LEFT JOIN outcomes o ON o.evaluation_id = e.id
		WHERE e.id = ?
	`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Record{}, err
		}
		return ir.Record{}, fmt.Errorf("read evaluation %s: %w", id, err)
	}
	return rec, nil
}

// LookupCached returns the earliest successful outcome recorded under
// cacheKey. The boolean is false when nothing is cached.
func (s *Store) LookupCached(ctx context.Context, cacheKey string) (ir.Outcome, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.evaluation_id, o.status, o.result, o.error_code, o.message, o.seq, o.cached
		FROM outcomes o
		JOIN evaluations e ON o.evaluation_id = e.id
		WHERE e.cache_key = ? AND o.status = 'ok'
		ORDER BY o.seq ASC, o.id COLLATE BINARY ASC
		LIMIT 1
	`, cacheKey)

	var (
		out        ir.Outcome
		resultJSON string
		cached     int
	)
	err := row.Scan(&out.ID, &out.EvaluationID, &out.Status, &resultJSON,
		&out.ErrorCode, &out.Message, &out.Seq, &cached)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Outcome{}, false, nil
	}
	if err != nil {
		return ir.Outcome{}, false, fmt.Errorf("lookup cache key: %w", err)
	}

	out.Values, err = unmarshalValues(resultJSON)
	if err != nil {
		return ir.Outcome{}, false, err
	}
	out.Cached = cached != 0
	return out, true, nil
}

// ListRuns summarises every run in the store, ordered by the run's first
// sequence number with run ID as tie-breaker.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.run_id,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN o.status = 'error' THEN 1 ELSE 0 END), 0),
		       MIN(e.seq),
		       MAX(COALESCE(o.seq, e.seq))
		FROM evaluations e
		LEFT JOIN outcomes o ON o.evaluation_id = e.id
		GROUP BY e.run_id
		ORDER BY MIN(e.seq) ASC, e.run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunSummary{}
	for rows.Next() {
		var r ir.RunSummary
		if err := rows.Scan(&r.RunID, &r.Evaluations, &r.Errors, &r.FirstSeq, &r.LastSeq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// MaxSeq returns the highest sequence number stored in either table, or 0
// for an empty store. The engine resumes its logical clock from here.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM evaluations), 0),
			COALESCE((SELECT MAX(seq) FROM outcomes), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (ir.Record, error) {
	var (
		ev                                 ir.Evaluation
		paramsJSON, pointsJSON, inputsJSON string
		outID, outStatus, outResult        sql.NullString
		outCode, outMessage                sql.NullString
		outSeq, outCached                  sql.NullInt64
	)
	err := sc.Scan(
		&ev.ID, &ev.RunID, &ev.Spec.Name, &ev.Spec.Family, &paramsJSON, &ev.Function,
		&pointsJSON, &inputsJSON, &ev.Draws, &ev.Seed, &ev.CacheKey, &ev.Seq,
		&ev.EngineVersion, &ev.IRVersion,
		&outID, &outStatus, &outResult, &outCode, &outMessage, &outSeq, &outCached,
	)
	if err != nil {
		return ir.Record{}, err
	}

	if ev.Spec.Params, err = unmarshalParams(paramsJSON); err != nil {
		return ir.Record{}, err
	}
	if ev.Points, err = unmarshalValues(pointsJSON); err != nil {
		return ir.Record{}, err
	}
	if ev.Inputs, err = unmarshalInputs(inputsJSON); err != nil {
		return ir.Record{}, err
	}

	rec := ir.Record{Evaluation: ev}
	if !outID.Valid {
		return rec, nil
	}

	values, err := unmarshalValues(outResult.String)
	if err != nil {
		return ir.Record{}, err
	}
	rec.Outcome = &ir.Outcome{
		ID:           outID.String,
		EvaluationID: ev.ID,
		Status:       outStatus.String,
		Values:       values,
		ErrorCode:    outCode.String,
		Message:      outMessage.String,
		Seq:          outSeq.Int64,
		Cached:       outCached.Int64 != 0,
	}
	return rec, nil
}
