package gp

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Hyperparams are the exp-quad regression hyperparameters.
type Hyperparams struct {
	Alpha float64 `json:"alpha"`
	Rho   float64 `json:"rho"`
	Sigma float64 `json:"sigma"`
}

// Hyperprior places an inverse-gamma prior on the length scale and
// half-normal priors on the marginal and noise standard deviations:
//
//	ρ ~ InvGamma(RhoShape, RhoScale)
//	α ~ Normal⁺(0, AlphaSD)
//	σ ~ Normal⁺(0, SigmaSD)
type Hyperprior struct {
	RhoShape float64
	RhoScale float64
	AlphaSD  float64
	SigmaSD  float64
}

// DefaultHyperprior is weakly informative for inputs and outputs of unit scale.
var DefaultHyperprior = Hyperprior{RhoShape: 5, RhoScale: 5, AlphaSD: 1, SigmaSD: 1}

// LogDensity returns the joint prior log density of h, or -Inf when any
// hyperparameter is not positive.
func (p Hyperprior) LogDensity(h Hyperparams) float64 {
	if !(h.Alpha > 0 && h.Rho > 0 && h.Sigma > 0) {
		return math.Inf(-1)
	}
	return distuv.InverseGamma{Alpha: p.RhoShape, Beta: p.RhoScale}.LogProb(h.Rho) +
		halfNormalLogPDF(h.Alpha, p.AlphaSD) +
		halfNormalLogPDF(h.Sigma, p.SigmaSD)
}

func halfNormalLogPDF(x, sd float64) float64 {
	return math.Ln2 + distuv.Normal{Mu: 0, Sigma: sd}.LogProb(x)
}
