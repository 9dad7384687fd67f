package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/distlab/internal/ir"
)

// Filter selects evaluation records. Zero-valued fields do not filter.
type Filter struct {
	RunID    string
	SpecName string
	Family   string
	Function string
	Status   string // ir.StatusOK or ir.StatusError
	Limit    int    // 0 = no limit
}

// predicate is a single "column = ?" condition.
type predicate struct {
	column string
	value  any
}

// filterColumns maps filter fields to qualified columns. Only these columns
// may appear in a WHERE clause.
var filterColumns = map[string]string{
	"run_id":    "e.run_id",
	"spec_name": "e.spec_name",
	"family":    "e.family",
	"function":  "e.function",
	"status":    "o.status",
}

func (f Filter) predicates() []predicate {
	var preds []predicate
	add := func(field, value string) {
		if value != "" {
			preds = append(preds, predicate{column: filterColumns[field], value: value})
		}
	}
	add("run_id", f.RunID)
	add("spec_name", f.SpecName)
	add("family", f.Family)
	add("function", f.Function)
	add("status", f.Status)
	return preds
}

// compileFilter converts a Filter to parameterized SQL.
//
// Values are NEVER interpolated - always ? placeholders. Every query ends
// with ORDER BY seq ASC, id COLLATE BINARY ASC.
func compileFilter(f Filter) (string, []any, error) {
	if f.Limit < 0 {
		return "", nil, fmt.Errorf("negative limit %d", f.Limit)
	}
	if f.Status != "" && f.Status != ir.StatusOK && f.Status != ir.StatusError {
		return "", nil, fmt.Errorf("unknown status %q", f.Status)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(recordColumns)
	b.WriteString("\n\tFROM evaluations e\n\tLEFT JOIN outcomes o ON o.evaluation_id = e.id")

	preds := f.predicates()
	params := make([]any, 0, len(preds)+1)
	if len(preds) > 0 {
		parts := make([]string, len(preds))
		for i, p := range preds {
			parts[i] = p.column + " = ?"
			params = append(params, p.value)
		}
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(parts, " AND "))
	}

	b.WriteString("\n\tORDER BY e.seq ASC, e.id COLLATE BINARY ASC")
	if f.Limit > 0 {
		b.WriteString("\n\tLIMIT ?")
		params = append(params, f.Limit)
	}
	return b.String(), params, nil
}

// Query returns the evaluation records matching f.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Query(ctx context.Context, f Filter) ([]ir.Record, error) {
	query, params, err := compileFilter(f)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return records, nil
}
