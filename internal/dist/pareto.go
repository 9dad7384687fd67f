package dist

import (
	"math"
	"math/rand/v2"
)

// Pareto is the Pareto distribution with minimum YMin and shape Alpha:
//
//	Pareto(y | y_min, α) = α y_min^α / y^(α+1)   for y ≥ y_min
type Pareto struct {
	YMin  float64
	Alpha float64
}

// NewPareto validates y_min > 0 and α > 0.
func NewPareto(yMin, alpha float64) (Pareto, error) {
	if err := checkPositiveFinite(FamilyPareto, "y_min", yMin); err != nil {
		return Pareto{}, err
	}
	if err := checkPositiveFinite(FamilyPareto, "alpha", alpha); err != nil {
		return Pareto{}, err
	}
	return Pareto{YMin: yMin, Alpha: alpha}, nil
}

// Name returns the registry name of the family.
func (Pareto) Name() string { return FamilyPareto }

// Discrete is false; Pareto is continuous.
func (Pareto) Discrete() bool { return false }

// Support returns [y_min, +Inf).
func (p Pareto) Support() Support { return Support{Lower: p.YMin, Upper: inf} }

// LogPDF returns log Pareto(y | y_min, α).
func (p Pareto) LogPDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.YMin {
		return negInf
	}
	return math.Log(p.Alpha) + p.Alpha*math.Log(p.YMin) - (p.Alpha+1)*math.Log(y)
}

// LogDensity is LogPDF.
func (p Pareto) LogDensity(y float64) float64 { return p.LogPDF(y) }

// CDF returns 1 - (y_min / y)^α.
func (p Pareto) CDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.YMin {
		return 0
	}
	return -math.Expm1(p.LogCCDF(y))
}

// LogCDF returns log(1 - (y_min / y)^α).
func (p Pareto) LogCDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.YMin {
		return negInf
	}
	return log1mExp(p.LogCCDF(y))
}

// LogCCDF returns α (log y_min - log y), the log survival function.
func (p Pareto) LogCCDF(y float64) float64 {
	if math.IsNaN(y) {
		return nan
	}
	if y < p.YMin {
		return 0
	}
	return p.Alpha * (math.Log(p.YMin) - math.Log(y))
}

// Quantile is the inverse CDF; it returns NaN for q outside [0, 1].
func (p Pareto) Quantile(q float64) float64 {
	if !(q >= 0 && q <= 1) {
		return nan
	}
	return p.YMin * math.Exp(-math.Log1p(-q)/p.Alpha)
}

// Rand draws y_min · exp(E / α) with E ~ Exponential(1).
func (p Pareto) Rand(rng *rand.Rand) float64 {
	return p.YMin * math.Exp(rng.ExpFloat64()/p.Alpha)
}

// Mean is α y_min / (α - 1), or +Inf when α ≤ 1.
func (p Pareto) Mean() float64 {
	if p.Alpha <= 1 {
		return inf
	}
	return p.Alpha * p.YMin / (p.Alpha - 1)
}

// Variance is y_min² α / ((α - 1)² (α - 2)), or +Inf when α ≤ 2.
func (p Pareto) Variance() float64 {
	if p.Alpha <= 2 {
		return inf
	}
	am1 := p.Alpha - 1
	return p.YMin * p.YMin * p.Alpha / (am1 * am1 * (p.Alpha - 2))
}
