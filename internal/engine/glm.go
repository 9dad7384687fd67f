package engine

import (
	"context"
	"slices"

	"github.com/roach88/distlab/internal/dist"
	"github.com/roach88/distlab/internal/ir"
)

// GLMRequest evaluates the Bernoulli-Logit GLM. Function is lpmf (requires Y)
// or rng (one outcome per row of X).
type GLMRequest struct {
	RunID    string
	Name     string
	Function string
	X        [][]float64 // n×k predictors, row-major
	Alpha    []float64   // one shared intercept or one per row
	Beta     []float64   // k coefficients
	Y        []int       // lpmf only
	Seed     int64       // rng only
}

// EvaluateGLM evaluates and records a GLM request. For lpmf the outcome is
// the single joint log mass; for rng it is one 0/1 draw per row.
func (e *Engine) EvaluateGLM(ctx context.Context, req GLMRequest) (*Report, error) {
	runID := req.RunID
	if runID == "" {
		runID = e.NewRun()
	}

	var draws int64
	switch req.Function {
	case FuncLPMF:
		if req.Y == nil {
			return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "lpmf requires outcomes y")
		}
	case FuncRNG:
		if req.Y != nil {
			return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "rng takes no outcomes")
		}
		draws = int64(len(req.X))
	default:
		return nil, newRuntimeError(ErrCodeUnknownFunction, runID,
			"unknown function %q for family %s", req.Function, dist.FamilyBernoulliLogitGLM)
	}

	inputs, err := encodeGLMInputs(GLMRequest{
		X:     req.X,
		Alpha: slices.Clone(req.Alpha),
		Beta:  slices.Clone(req.Beta),
		Y:     slices.Clone(req.Y),
	})
	if err != nil {
		return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "%v", err)
	}

	ev := ir.Evaluation{
		RunID:    runID,
		Spec:     ir.DistSpec{Name: req.Name, Family: dist.FamilyBernoulliLogitGLM, Params: map[string]float64{}},
		Function: req.Function,
		Points:   ir.Values{},
		Inputs:   inputs,
		Draws:    draws,
		Seed:     req.Seed,
	}
	return e.execute(ctx, ev, draws)
}
