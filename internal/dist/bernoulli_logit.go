package dist

import (
	"math"
	"math/rand/v2"
)

// BernoulliLogit is the Bernoulli distribution parameterised on the
// log-odds scale: BernoulliLogit(y | α) = Bernoulli(y | logit⁻¹(α)).
type BernoulliLogit struct {
	Alpha float64
}

// NewBernoulliLogit validates that α is finite.
func NewBernoulliLogit(alpha float64) (BernoulliLogit, error) {
	if err := checkFinite(FamilyBernoulliLogit, "alpha", alpha); err != nil {
		return BernoulliLogit{}, err
	}
	return BernoulliLogit{Alpha: alpha}, nil
}

// Name returns the registry name of the family.
func (BernoulliLogit) Name() string { return FamilyBernoulliLogit }

// Discrete is true.
func (BernoulliLogit) Discrete() bool { return true }

// Support returns [0, 1].
func (BernoulliLogit) Support() Support { return Support{Lower: 0, Upper: 1} }

// Theta returns the chance of success logit⁻¹(α).
func (b BernoulliLogit) Theta() float64 {
	return InvLogit(b.Alpha)
}

// Bernoulli returns the equivalent probability-scale distribution.
func (b BernoulliLogit) Bernoulli() Bernoulli {
	return Bernoulli{Theta: b.Theta()}
}

// logTheta is log logit⁻¹(α) = -log1p(exp(-α)).
func (b BernoulliLogit) logTheta() float64 { return -log1pExp(-b.Alpha) }

// log1mTheta is log(1 - logit⁻¹(α)) = -log1p(exp(α)).
func (b BernoulliLogit) log1mTheta() float64 { return -log1pExp(b.Alpha) }

// LogPMF is computed on the log-odds scale so that large |α| does not
// round θ to exactly 0 or 1.
func (b BernoulliLogit) LogPMF(n int) float64 {
	switch n {
	case 1:
		return b.logTheta()
	case 0:
		return b.log1mTheta()
	default:
		return negInf
	}
}

// LogPMFSum returns the joint log mass of independent outcomes.
func (b BernoulliLogit) LogPMFSum(ns []int) float64 {
	total := 0.0
	for _, n := range ns {
		total += b.LogPMF(n)
	}
	return total
}

// LogDensity is LogPMF for integer-valued x and -Inf for anything else.
func (b BernoulliLogit) LogDensity(x float64) float64 {
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
func (b BernoulliLogit) CDF(x float64) float64 {
	return b.Bernoulli().CDF(x)
}

// LogCDF returns log P(Y ≤ x) on the log-odds scale.
func (b BernoulliLogit) LogCDF(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return nan
	case x < 0:
		return negInf
	case x < 1:
		return b.log1mTheta()
	default:
		return 0
	}
}

// LogCCDF returns log P(Y > x) on the log-odds scale.
func (b BernoulliLogit) LogCCDF(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return nan
	case x < 0:
		return 0
	case x < 1:
		return b.logTheta()
	default:
		return negInf
	}
}

// RandInt draws 1 with probability logit⁻¹(α) and 0 otherwise.
func (b BernoulliLogit) RandInt(rng *rand.Rand) int {
	return b.Bernoulli().RandInt(rng)
}

// Rand is RandInt as a float64.
func (b BernoulliLogit) Rand(rng *rand.Rand) float64 {
	return float64(b.RandInt(rng))
}

// Mean is logit⁻¹(α).
func (b BernoulliLogit) Mean() float64 { return b.Theta() }

// Variance is θ (1 - θ) with θ = logit⁻¹(α).
func (b BernoulliLogit) Variance() float64 { return b.Bernoulli().Variance() }
