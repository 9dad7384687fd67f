package engine

import (
	"context"

	"github.com/roach88/distlab/internal/ir"
)

// GPRequest evaluates a Gaussian process regression model conditioned on
// training data (X1, Y1). Function is predict (requires X2) or lml.
type GPRequest struct {
	RunID    string
	Spec     ir.GPSpec
	Function string
	X1       [][]float64
	Y1       []float64
	X2       [][]float64 // predict only
}

// GPReport adds the decoded prediction to a Report.
type GPReport struct {
	*Report
	Mean                  []float64 `json:"mean,omitempty"`
	Variance              []float64 `json:"variance,omitempty"`
	LogMarginalLikelihood *float64  `json:"log_marginal_likelihood,omitempty"`
}

// PredictGP evaluates and records a GP request.
//
// The stored outcome of predict is the predictive means followed by the
// predictive variances; lml stores the single log marginal likelihood.
func (e *Engine) PredictGP(ctx context.Context, req GPRequest) (*GPReport, error) {
	runID := req.RunID
	if runID == "" {
		runID = e.NewRun()
	}

	switch req.Function {
	case FuncPredict:
		if len(req.X2) == 0 {
			return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "predict requires test inputs x2")
		}
	case FuncLML:
		if req.X2 != nil {
			return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "lml takes no test inputs")
		}
	default:
		return nil, newRuntimeError(ErrCodeUnknownFunction, runID,
			"unknown function %q for family %s", req.Function, FamilyGP)
	}

	inputs, err := encodeGPInputs(req)
	if err != nil {
		return nil, newRuntimeError(ErrCodeInvalidRequest, runID, "%v", err)
	}

	ev := ir.Evaluation{
		RunID: runID,
		Spec: ir.DistSpec{
			Name:   req.Spec.Name,
			Family: FamilyGP,
			Params: map[string]float64{
				"alpha":  req.Spec.Alpha,
				"sigma":  req.Spec.Sigma,
				"jitter": req.Spec.Jitter,
			},
		},
		Function: req.Function,
		Points:   ir.Values{},
		Inputs:   inputs,
	}

	report, err := e.execute(ctx, ev, 0)
	if report == nil {
		return nil, err
	}
	out := &GPReport{Report: report}
	if err != nil {
		return out, err
	}

	values := report.Outcome.Values
	switch req.Function {
	case FuncPredict:
		n := len(values) / 2
		out.Mean = append([]float64(nil), values[:n]...)
		out.Variance = append([]float64(nil), values[n:]...)
	case FuncLML:
		lml := values[0]
		out.LogMarginalLikelihood = &lml
	}
	return out, nil
}
