package dist

import (
	"math"
	"math/rand/v2"
)

// Bernoulli is the Bernoulli distribution over {0, 1} with chance of success Theta.
type Bernoulli struct {
	Theta float64
}

// NewBernoulli validates 0 ≤ θ ≤ 1.
func NewBernoulli(theta float64) (Bernoulli, error) {
	if err := checkProbability(FamilyBernoulli, "theta", theta); err != nil {
		return Bernoulli{}, err
	}
	return Bernoulli{Theta: theta}, nil
}

// Name returns the registry name of the family.
func (Bernoulli) Name() string { return FamilyBernoulli }

// Discrete is true.
func (Bernoulli) Discrete() bool { return true }

// Support returns [0, 1].
func (Bernoulli) Support() Support { return Support{Lower: 0, Upper: 1} }

// LogPMF returns log θ for n = 1, log(1 - θ) for n = 0 and -Inf otherwise.
func (b Bernoulli) LogPMF(n int) float64 {
	switch n {
	case 1:
		return math.Log(b.Theta)
	case 0:
		return math.Log1p(-b.Theta)
	default:
		return negInf
	}
}

// LogPMFSum returns the joint log mass of independent outcomes.
func (b Bernoulli) LogPMFSum(ns []int) float64 {
	total := 0.0
	for _, n := range ns {
		total += b.LogPMF(n)
	}
	return total
}

// LogDensity is LogPMF for integer-valued x and -Inf for anything else.
func (b Bernoulli) LogDensity(x float64) float64 {
	if math.IsNaN(x) {
		return nan
	}
	n, ok := asCount(x)
	if !ok {
		return negInf
	}
	return b.LogPMF(n)
}

// CDF returns P(Y ≤ x).
func (b Bernoulli) CDF(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return nan
	case x < 0:
		return 0
	case x < 1:
		return 1 - b.Theta
	default:
		return 1
	}
}

// LogCDF returns log P(Y ≤ x).
func (b Bernoulli) LogCDF(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return nan
	case x < 0:
		return negInf
	case x < 1:
		return math.Log1p(-b.Theta)
	default:
		return 0
	}
}

// LogCCDF returns log P(Y > x).
func (b Bernoulli) LogCCDF(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return nan
	case x < 0:
		return 0
	case x < 1:
		return math.Log(b.Theta)
	default:
		return negInf
	}
}

// RandInt draws 1 with probability θ and 0 otherwise.
func (b Bernoulli) RandInt(rng *rand.Rand) int {
	if rng.Float64() < b.Theta {
		return 1
	}
	return 0
}

// Rand is RandInt as a float64.
func (b Bernoulli) Rand(rng *rand.Rand) float64 {
	return float64(b.RandInt(rng))
}

// Mean is θ.
func (b Bernoulli) Mean() float64 { return b.Theta }

// Variance is θ (1 - θ).
func (b Bernoulli) Variance() float64 { return b.Theta * (1 - b.Theta) }
