package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/distlab/internal/ir"
	"github.com/roach88/distlab/internal/store"
)

// Engine evaluates distribution functions and records every evaluation and
// its outcome in the store.
//
// Thread-safety model:
//   - Evaluate / EvaluateGLM / PredictGP: safe from any goroutine; records
//     are written one evaluation at a time so seq numbers follow write order
//   - NewRun(): safe from any goroutine (delegates to thread-safe generator)
type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	clock   Sequencer
	runGen  RunIDGenerator
	logger  *slog.Logger
	metrics *Metrics
	cache   bool

	// Draw budget per run.
	maxDraws int64
	quotas   map[string]*QuotaEnforcer
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// Sequencer is a monotonic source of seq numbers. Implemented by Clock
// and by testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// WithClock sets the logical clock. Used to resume after existing records.
func WithClock(c Sequencer) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRunIDGenerator sets the run ID source (default: UUIDv7Generator).
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.runGen = g }
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics sink (default: a fresh private registry).
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxDraws sets the per-run draw budget (default: DefaultMaxDraws).
func WithMaxDraws(n int64) Option {
	return func(e *Engine) { e.maxDraws = n }
}

// WithCache enables or disables memoisation of deterministic functions
// (default: enabled).
func WithCache(enabled bool) Option {
	return func(e *Engine) { e.cache = enabled }
}

// New creates an Engine writing to s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		clock:    NewClock(),
		runGen:   UUIDv7Generator{},
		logger:   slog.Default(),
		cache:    true,
		maxDraws: DefaultMaxDraws,
		quotas:   make(map[string]*QuotaEnforcer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}
	return e
}

// Resume creates an Engine whose clock continues after the highest seq
// already in s, so records from earlier sessions keep their order.
// An explicit WithClock option takes precedence.
func Resume(ctx context.Context, s *store.Store, opts ...Option) (*Engine, error) {
	seq, err := s.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume engine: %w", err)
	}
	return New(s, append([]Option{WithClock(NewClockAt(seq))}, opts...)...), nil
}

// NewRun generates a new run ID.
func (e *Engine) NewRun() string {
	return e.runGen.Generate()
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() Sequencer {
	return e.clock
}

// Request asks for one function of a univariate distribution.
type Request struct {
	RunID    string // generated when empty
	Spec     ir.DistSpec
	Function string    // see Functions()
	Points   []float64 // pointwise functions only
	Draws    int       // rng only
	Seed     int64     // rng only
}

// Report is the recorded evaluation and its outcome.
type Report struct {
	RunID      string        `json:"run_id"`
	Evaluation ir.Evaluation `json:"evaluation"`
	Outcome    ir.Outcome    `json:"outcome"`
	Summary    *Summary      `json:"summary,omitempty"` // rng only
}

// Evaluate evaluates and records a request.
//
// A request that cannot be recorded (e.g. non-finite parameters) returns a
// nil Report. Otherwise the Report is always returned; when the outcome is
// an error the returned error is the matching *RuntimeError.
func (e *Engine) Evaluate(ctx context.Context, req Request) (*Report, error) {
	runID := req.RunID
	if runID == "" {
		runID = e.NewRun()
	}
	ev := ir.Evaluation{
		RunID:    runID,
		Spec:     cloneSpec(req.Spec),
		Function: req.Function,
		Points:   ir.Values(slices.Clone(req.Points)),
		Draws:    int64(req.Draws),
		Seed:     req.Seed,
	}
	return e.execute(ctx, ev, ev.Draws)
}

// execute stamps, records and computes one evaluation. draws is the number
// of random values the evaluation will consume from the run's budget.
func (e *Engine) execute(ctx context.Context, ev ir.Evaluation, draws int64) (*Report, error) {
	cacheKey, err := ir.CacheKey(ev.Spec, ev.Function, ev.Points, ev.Inputs)
	if err != nil {
		return nil, &RuntimeError{Code: ErrCodeInvalidRequest, Message: err.Error(), RunID: ev.RunID, err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ev.CacheKey = cacheKey
	ev.Seq = e.clock.Next()
	ev.EngineVersion = ir.EngineVersion
	ev.IRVersion = ir.IRVersion
	if ev.ID, err = ir.EvaluationID(ev.RunID, cacheKey, ev.Draws, ev.Seed, ev.Seq); err != nil {
		return nil, fmt.Errorf("evaluation id: %w", err)
	}
	if err := e.store.WriteEvaluation(ctx, ev); err != nil {
		return nil, err
	}

	values, cached, runErr := e.outcomeValues(ctx, ev, draws)

	out := ir.Outcome{
		EvaluationID: ev.ID,
		Status:       ir.StatusOK,
		Values:       values,
		Cached:       cached,
		Seq:          e.clock.Next(),
	}
	if runErr != nil {
		out.Status = ir.StatusError
		out.Values = ir.Values{}
		out.ErrorCode = string(runErr.Code)
		out.Message = runErr.Message
	}
	if out.ID, err = ir.OutcomeID(out.EvaluationID, out.Status, out.Values, out.Seq); err != nil {
		return nil, fmt.Errorf("outcome id: %w", err)
	}
	if err := e.store.WriteOutcome(ctx, out); err != nil {
		return nil, err
	}

	report := &Report{RunID: ev.RunID, Evaluation: ev, Outcome: out}
	if runErr == nil && ev.Function == FuncRNG {
		if s, err := Summarize(values); err == nil {
			report.Summary = &s
		}
	}
	e.metrics.observe(report)
	e.log(report)

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// outcomeValues serves ev from the cache or computes it.
func (e *Engine) outcomeValues(ctx context.Context, ev ir.Evaluation, draws int64) (ir.Values, bool, *RuntimeError) {
	if e.cache && cacheable(ev.Function) {
		hit, ok, err := e.store.LookupCached(ctx, ev.CacheKey)
		if err != nil {
			e.logger.Warn("cache lookup failed", "cache_key", ev.CacheKey, "error", err)
		} else if ok {
			return hit.Values, true, nil
		}
	}

	if draws > 0 {
		if err := validate(ev); err != nil {
			return nil, false, classify(err, ev.RunID)
		}
		if err := e.quota(ev.RunID).Charge(ev.RunID, draws); err != nil {
			return nil, false, classify(err, ev.RunID)
		}
	}

	values, err := compute(ev)
	if err != nil {
		return nil, false, classify(err, ev.RunID)
	}
	return values, false, nil
}

func (e *Engine) quota(runID string) *QuotaEnforcer {
	q, ok := e.quotas[runID]
	if !ok {
		q = NewQuotaEnforcer(e.maxDraws)
		e.quotas[runID] = q
	}
	return q
}

func (e *Engine) log(r *Report) {
	attrs := []any{
		"run_id", r.RunID,
		"seq", r.Evaluation.Seq,
		"spec", r.Evaluation.Spec.Name,
		"family", r.Evaluation.Spec.Family,
		"function", r.Evaluation.Function,
		"values", len(r.Outcome.Values),
		"cached", r.Outcome.Cached,
	}
	if r.Outcome.Status == ir.StatusError {
		e.logger.Warn("evaluation failed", append(attrs, "code", r.Outcome.ErrorCode, "error", r.Outcome.Message)...)
		return
	}
	e.logger.Debug("evaluation recorded", attrs...)
}

func cloneSpec(s ir.DistSpec) ir.DistSpec {
	params := make(map[string]float64, len(s.Params))
	for k, v := range s.Params {
		params[k] = v
	}
	return ir.DistSpec{Name: s.Name, Family: s.Family, Params: params}
}
