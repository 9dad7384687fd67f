package dist

import (
	"math"
	"math/rand/v2"
)

// ParetoType2 is the Pareto Type 2 (Lomax with location) distribution:
//
//	ParetoType2(y | μ, λ, α) = α/λ (1 + (y - μ)/λ)^-(α+1)   for y ≥ μ
type ParetoType2 struct {
	Mu     float64
	Lambda float64
	Alpha  float64
}

// NewParetoType2 validates μ finite, λ > 0 and α > 0.
func NewParetoType2(mu, lambda, alpha float64) (ParetoType2, error) {
	if err := checkFinite(FamilyParetoType2, "mu", mu); err != nil {
		return ParetoType2{}, err
	}
	if err := checkPositiveFinite(FamilyParetoType2, "lambda", lambda); err != nil {
		return ParetoType2{}, err
	}
	if err := checkPositiveFinite(FamilyParetoType2, "alpha", alpha); err != nil {
		return ParetoType2{}, err
	}
	return ParetoType2{Mu: mu, Lambda: lambda, Alpha: alpha}, nil
}

// Name returns the registry name of the family.
func (ParetoType2) Name() string { return FamilyParetoType2 }

// Discrete is false; Pareto Type 2 is continuous.
func (ParetoType2) Discrete() bool { return false }

// Support returns [μ, +Inf).
func (p ParetoType2) Support() Support { return Support{Lower: p.Mu, Upper: inf} }

// scaled returns (y - μ) / λ.
func (p ParetoType2) scaled(y float64) float64 {
	return (y - p.Mu) / p.Lambda
}

// LogPDF returns log α - log λ - (α + 1) log1p((y - μ) / λ).
func (p ParetoType2) LogPDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.Mu {
		return negInf
	}
	return math.Log(p.Alpha) - math.Log(p.Lambda) - (p.Alpha+1)*math.Log1p(p.scaled(y))
}

// LogDensity is LogPDF.
func (p ParetoType2) LogDensity(y float64) float64 { return p.LogPDF(y) }

// CDF returns 1 - (1 + (y - μ) / λ)^-α.
func (p ParetoType2) CDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.Mu {
		return 0
	}
	return -math.Expm1(p.LogCCDF(y))
}

// LogCDF returns log(1 - (1 + (y - μ) / λ)^-α).
func (p ParetoType2) LogCDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.Mu {
		return negInf
	}
	return log1mExp(p.LogCCDF(y))
}

// LogCCDF returns -α log1p((y - μ) / λ).
func (p ParetoType2) LogCCDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.Mu {
		return 0
	}
	return -p.Alpha * math.Log1p(p.scaled(y))
}

// Quantile is the inverse CDF; it returns NaN for q outside [0, 1].
func (p ParetoType2) Quantile(q float64) float64 {
	if !(q >= 0 && q <= 1) {
		return nan
	}
	return p.Mu + p.Lambda*math.Expm1(-math.Log1p(-q)/p.Alpha)
}

// Rand draws μ + λ · expm1(E / α) with E ~ Exponential(1).
func (p ParetoType2) Rand(rng *rand.Rand) float64 {
	return p.Mu + p.Lambda*math.Expm1(rng.ExpFloat64()/p.Alpha)
}

// Mean is μ + λ / (α - 1), or +Inf when α ≤ 1.
func (p ParetoType2) Mean() float64 {
	if p.Alpha <= 1 {
		return inf
	}
	return p.Mu + p.Lambda/(p.Alpha-1)
}

// Variance is λ² α / ((α - 1)² (α - 2)), or +Inf when α ≤ 2.
func (p ParetoType2) Variance() float64 {
	if p.Alpha <= 2 {
		return inf
	}
	am1 := p.Alpha - 1
	return p.Lambda * p.Lambda * p.Alpha / (am1 * am1 * (p.Alpha - 2))
}
