package gp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// FitResult holds MAP hyperparameters and the objective at the optimum.
type FitResult struct {
	Hyperparams
	LogPosterior float64 `json:"log_posterior"`
	Evaluations  int     `json:"evaluations"`
}

// logPosterior is the unnormalised log posterior of exp-quad regression
// hyperparameters.
func logPosterior(x [][]float64, y []float64, h Hyperparams, prior Hyperprior, jitter float64) float64 {
	lp := prior.LogDensity(h)
	if math.IsInf(lp, -1) {
		return lp
	}
	model := Regression{Kernel: ExpQuad{Alpha: h.Alpha, Rho: h.Rho}, Sigma: h.Sigma, Jitter: jitter}
	ll, err := model.LogMarginalLikelihood(x, y)
	if err != nil {
		return math.Inf(-1)
	}
	return lp + ll
}

// FitMAP finds maximum a posteriori hyperparameters for exp-quad regression.
// The search runs Nelder-Mead over log(α), log(ρ), log(σ) starting from initial;
// the log transform is not Jacobian-adjusted, so the optimum is the mode of
// the posterior on the original scale.
func FitMAP(x [][]float64, y []float64, initial Hyperparams, prior Hyperprior, jitter float64) (*FitResult, error) {
	if len(y) != len(x) {
		return nil, fmt.Errorf("y has %d elements, x has %d points: %w", len(y), len(x), ErrDimensionMismatch)
	}
	if err := checkInputs(ExpQuad{}, x); err != nil {
		return nil, err
	}
	if !(initial.Alpha > 0 && initial.Rho > 0 && initial.Sigma > 0) {
		return nil, fmt.Errorf("initial hyperparameters must be positive, got %+v", initial)
	}

	unpack := func(theta []float64) Hyperparams {
		return Hyperparams{Alpha: math.Exp(theta[0]), Rho: math.Exp(theta[1]), Sigma: math.Exp(theta[2])}
	}
	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			lp := logPosterior(x, y, unpack(theta), prior, jitter)
			if math.IsInf(lp, -1) || math.IsNaN(lp) {
				return math.Inf(1)
			}
			return -lp
		},
	}
	start := []float64{math.Log(initial.Alpha), math.Log(initial.Rho), math.Log(initial.Sigma)}
	if math.IsInf(problem.Func(start), 1) {
		return nil, fmt.Errorf("initial hyperparameters have zero posterior density: %w", ErrNotPositiveDefinite)
	}

	settings := &optimize.Settings{
		FuncEvaluations: 5000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 50,
		},
	}
	res, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if res == nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	// A budget stop still leaves the best point found so far in res.
	return &FitResult{
		Hyperparams:  unpack(res.X),
		LogPosterior: -res.F,
		Evaluations:  res.Stats.FuncEvaluations,
	}, nil
}
