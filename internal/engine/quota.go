package engine

import "fmt"

// DefaultMaxDraws is the default per-run budget of random draws.
// This keeps a mistyped --draws from allocating unbounded memory.
const DefaultMaxDraws = 10_000_000

// QuotaEnforcer tracks the number of random draws consumed by one run
// and enforces a maximum.
//
// Each run has its own QuotaEnforcer instance. The quota is charged before
// an rng evaluation allocates its output.
type QuotaEnforcer struct {
	maxDraws int64 // Maximum allowed draws for this run
	current  int64 // Draws consumed so far
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxDraws int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxDraws: maxDraws}
}

// Charge reserves n draws for runID.
//
// Returns a QUOTA_EXCEEDED RuntimeError if the reservation would exceed the
// limit; a rejected charge consumes nothing.
func (q *QuotaEnforcer) Charge(runID string, n int64) error {
	if q.current+n > q.maxDraws {
		return &RuntimeError{
			Code:    ErrCodeQuotaExceeded,
			Message: fmt.Sprintf("run would draw %d samples, limit is %d", q.current+n, q.maxDraws),
			RunID:   runID,
			Details: map[string]string{
				"draws":     fmt.Sprintf("%d", q.current+n),
				"max_draws": fmt.Sprintf("%d", q.maxDraws),
			},
		}
	}
	q.current += n
	return nil
}

// Current returns the number of draws consumed.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxDraws returns the limit.
func (q *QuotaEnforcer) MaxDraws() int64 {
	return q.maxDraws
}
