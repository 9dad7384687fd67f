package gp

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/roach88/distlab/internal/dist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Regression is a Gaussian process regression model with a normal outcome
//
//	y ~ MultiNormal(0, K(x | α, ρ) + σ² I)
type Regression struct {
	Kernel Kernel
	Sigma  float64 // observation noise standard deviation
	Jitter float64 // added to every covariance diagonal that is factorised
}

func (r Regression) validate() error {
	if r.Kernel == nil {
		return fmt.Errorf("regression has no kernel: %w", dist.ErrInvalidParameter)
	}
	if err := r.Kernel.Validate(); err != nil {
		return err
	}
	if !(r.Sigma >= 0) || math.IsInf(r.Sigma, 1) {
		return &dist.ParamError{Family: "gp_regression", Param: "sigma", Value: r.Sigma, Constraint: "non-negative finite"}
	}
	if !(r.Jitter >= 0) || math.IsInf(r.Jitter, 1) {
		return &dist.ParamError{Family: "gp_regression", Param: "jitter", Value: r.Jitter, Constraint: "non-negative finite"}
	}
	return nil
}

// trainingFactor factorises K + (σ² + jitter) I over the observed inputs.
func (r Regression) trainingFactor(x [][]float64, y []float64) (*mat.Cholesky, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if len(y) != len(x) {
		return nil, fmt.Errorf("y has %d elements, x has %d points: %w", len(y), len(x), ErrDimensionMismatch)
	}
	cov, err := CovMatrix(r.Kernel, x)
	if err != nil {
		return nil, err
	}
	addDiag(cov, r.Sigma*r.Sigma+r.Jitter)
	return factorize(cov)
}

// LogMarginalLikelihood returns log MultiNormal(y | 0, K + σ² I), evaluated
// through the Cholesky factor as
//
//	−½ (yᵀ K⁻¹ y + log|K| + n log 2π)
func (r Regression) LogMarginalLikelihood(x [][]float64, y []float64) (float64, error) {
	chol, err := r.trainingFactor(x, y)
	if err != nil {
		return 0, err
	}
	yv := mat.NewVecDense(len(y), y)
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, yv); err != nil {
		return 0, fmt.Errorf("solve: %w", ErrNotPositiveDefinite)
	}
	quad := floats.Dot(y, alpha.RawVector().Data)
	n := float64(len(y))
	return -0.5 * (quad + chol.LogDet() + n*math.Log(2*math.Pi)), nil
}

// Prediction is the posterior predictive distribution of the latent function
// at new inputs.
type Prediction struct {
	Mean []float64
	Cov  *mat.SymDense
}

// Variance returns the predictive variance at the i-th new input.
func (p *Prediction) Variance(i int) float64 {
	return p.Cov.At(i, i)
}

// StdDev returns the predictive standard deviations.
func (p *Prediction) StdDev() []float64 {
	out := make([]float64, len(p.Mean))
	for i := range out {
		out[i] = math.Sqrt(math.Max(p.Variance(i), 0))
	}
	return out
}

// Rand draws one function realisation from the predictive distribution.
// It fails with ErrNotPositiveDefinite when the predictive covariance needs
// more jitter to factorise.
func (p *Prediction) Rand(rng *rand.Rand) ([]float64, error) {
	chol, err := factorize(p.Cov)
	if err != nil {
		return nil, err
	}
	z := mat.NewVecDense(len(p.Mean), normals(rng, len(p.Mean)))
	var f mat.VecDense
	f.MulVec(lowerFactor(chol), z)
	out := f.RawVector().Data
	floats.Add(out, p.Mean)
	return out, nil
}

// Predict conditions the model on (x1, y1) and returns the predictive
// distribution of f at x2:
//
//	μ₂ = k₁₂ᵀ K⁻¹ y₁
//	Σ₂ = K₂₂ − vᵀv + jitter·I,  v = L \ k₁₂
func (r Regression) Predict(x1 [][]float64, y1 []float64, x2 [][]float64) (*Prediction, error) {
	chol, err := r.trainingFactor(x1, y1)
	if err != nil {
		return nil, err
	}
	k12, err := CrossCov(r.Kernel, x1, x2)
	if err != nil {
		return nil, err
	}
	k22, err := CovMatrix(r.Kernel, x2)
	if err != nil {
		return nil, err
	}

	var kDivY mat.VecDense
	if err := chol.SolveVecTo(&kDivY, mat.NewVecDense(len(y1), y1)); err != nil {
		return nil, fmt.Errorf("solve: %w", ErrNotPositiveDefinite)
	}
	var mean mat.VecDense
	mean.MulVec(k12.T(), &kDivY)

	var v mat.Dense
	if err := v.Solve(lowerFactor(chol), k12); err != nil {
		return nil, fmt.Errorf("triangular solve: %w", ErrNotPositiveDefinite)
	}
	var vtv mat.SymDense
	vtv.SymOuterK(1, v.T())

	n2 := len(x2)
	for i := 0; i < n2; i++ {
		for j := i; j < n2; j++ {
			k22.SetSym(i, j, k22.At(i, j)-vtv.At(i, j))
		}
	}
	addDiag(k22, r.Jitter)

	return &Prediction{Mean: mean.RawVector().Data, Cov: k22}, nil
}
