package dist

import "math"

var (
	inf    = math.Inf(1)
	negInf = math.Inf(-1)
	nan    = math.NaN()
)

// log1pExp returns log(1 + exp(x)) without overflow for large x.
func log1pExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// log1mExp returns log(1 - exp(x)) for x <= 0.
// Switches formulation at -ln 2 to keep full precision on both sides.
func log1mExp(x float64) float64 {
	switch {
	case x > 0:
		return nan
	case x > -math.Ln2:
		return math.Log(-math.Expm1(x))
	default:
		return math.Log1p(-math.Exp(x))
	}
}

// InvLogit is the logistic sigmoid 1 / (1 + exp(-x)).
func InvLogit(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Logit is the inverse of InvLogit, log(p / (1 - p)).
func Logit(p float64) float64 {
	return math.Log(p) - math.Log1p(-p)
}

// asCount reports whether x is an integer value and returns it.
func asCount(x float64) (int, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
		return 0, false
	}
	// Counts beyond this range are outside every supported support anyway.
	const limit = 1 << 30
	return int(math.Max(-limit, math.Min(limit, x))), true
}
