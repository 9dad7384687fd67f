package ir

// NOTE: These are store-layer views, not part of the canonical IR.

// RunSummary aggregates the evaluations recorded under one run ID.
type RunSummary struct {
	RunID       string `json:"run_id"`
	Evaluations int64  `json:"evaluations"`
	Errors      int64  `json:"errors"`
	FirstSeq    int64  `json:"first_seq"`
	LastSeq     int64  `json:"last_seq"`
}

// Record pairs an evaluation with its outcome. Outcome is nil when the
// evaluation was recorded but never completed.
type Record struct {
	Evaluation Evaluation `json:"evaluation"`
	Outcome    *Outcome   `json:"outcome,omitempty"`
}
