package harness

import "github.com/roach88/distlab/internal/ir"

// Trace event types.
const (
	EventEvaluation = "evaluation"
	EventOutcome    = "outcome"
)

// maxTraceValues bounds how many points or values a trace event lists.
// Longer lists (quadrature grids, rng draws) are recorded by count only.
const maxTraceValues = 16

// TraceEvent is one recorded evaluation or outcome, in seq order.
type TraceEvent struct {
	Type     string    `json:"type"` // "evaluation" or "outcome"
	Seq      int64     `json:"seq"`
	Spec     string    `json:"spec,omitempty"`
	Function string    `json:"function,omitempty"`
	Points   ir.Values `json:"points,omitempty"`
	Draws    int64     `json:"draws,omitempty"`

	Status    string    `json:"status,omitempty"`
	Values    ir.Values `json:"values,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Cached    bool      `json:"cached,omitempty"`

	// Count is the number of points (evaluation) or values (outcome)
	// when the list itself is too long to keep.
	Count int `json:"count,omitempty"`
}

// PropertyResult is the outcome of one property check.
type PropertyResult struct {
	Type    string `json:"type"`
	Spec    string `json:"spec"`
	Pass    bool   `json:"pass"`
	Skipped bool   `json:"skipped,omitempty"` // property undefined for this distribution
	Detail  string `json:"detail,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// RunID is the run every evaluation was recorded under.
	RunID string `json:"run_id"`

	// Trace contains every recorded evaluation and outcome in seq order,
	// read back from the store after the scenario ran.
	Trace []TraceEvent `json:"trace"`

	// Properties holds one entry per scenario property.
	Properties []PropertyResult `json:"properties,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addProperty records a property result; failures also become errors.
func (r *Result) addProperty(p PropertyResult) {
	r.Properties = append(r.Properties, p)
	if !p.Pass {
		r.AddError(p.Type + " " + p.Spec + ": " + p.Detail)
	}
}

// traceFromRecords flattens store records into evaluation/outcome events.
func traceFromRecords(records []ir.Record) []TraceEvent {
	trace := make([]TraceEvent, 0, 2*len(records))
	for _, rec := range records {
		ev := rec.Evaluation
		evEvent := TraceEvent{
			Type:     EventEvaluation,
			Seq:      ev.Seq,
			Spec:     ev.Spec.Name,
			Function: ev.Function,
			Draws:    ev.Draws,
		}
		if len(ev.Points) > maxTraceValues {
			evEvent.Count = len(ev.Points)
		} else {
			evEvent.Points = ev.Points
		}
		trace = append(trace, evEvent)

		if rec.Outcome == nil {
			continue
		}
		out := rec.Outcome
		outEvent := TraceEvent{
			Type:      EventOutcome,
			Seq:       out.Seq,
			Status:    out.Status,
			ErrorCode: out.ErrorCode,
			Cached:    out.Cached,
		}
		if len(out.Values) > maxTraceValues {
			outEvent.Count = len(out.Values)
		} else {
			outEvent.Values = out.Values
		}
		trace = append(trace, outEvent)
	}
	return trace
}
