package gp

import (
	"fmt"
	"math"

	"github.com/roach88/distlab/internal/dist"
)

// Classification is a latent-variable Gaussian process classifier
//
//	f = L_K η,  z_i ~ BernoulliLogit(a + f_i)
type Classification struct {
	Kernel    Kernel
	Intercept float64 // a
	Jitter    float64
}

func (c Classification) latent(x [][]float64, eta []float64) ([]float64, error) {
	if c.Kernel == nil {
		return nil, fmt.Errorf("classification has no kernel: %w", dist.ErrInvalidParameter)
	}
	if err := c.Kernel.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(c.Intercept) || math.IsInf(c.Intercept, 0) {
		return nil, &dist.ParamError{Family: "gp_classification", Param: "a", Value: c.Intercept, Constraint: "finite"}
	}
	return Latent(c.Kernel, x, eta, c.Jitter)
}

// LogLikelihood returns Σ_i log BernoulliLogit(z_i | a + f_i).
func (c Classification) LogLikelihood(x [][]float64, eta []float64, z []int) (float64, error) {
	if len(z) != len(x) {
		return 0, fmt.Errorf("z has %d elements, x has %d points: %w", len(z), len(x), ErrDimensionMismatch)
	}
	f, err := c.latent(x, eta)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for i, fi := range f {
		total += dist.BernoulliLogit{Alpha: c.Intercept + fi}.LogPMF(z[i])
	}
	return total, nil
}

// Probabilities returns P(z_i = 1) = logit⁻¹(a + f_i).
func (c Classification) Probabilities(x [][]float64, eta []float64) ([]float64, error) {
	f, err := c.latent(x, eta)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f))
	for i, fi := range f {
		out[i] = dist.InvLogit(c.Intercept + fi)
	}
	return out, nil
}
