package dist

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Registered family names.
const (
	FamilyPareto            = "pareto"
	FamilyParetoType2       = "pareto_type_2"
	FamilyBernoulli         = "bernoulli"
	FamilyBernoulliLogit    = "bernoulli_logit"
	FamilyBernoulliLogitGLM = "bernoulli_logit_glm"
)

// Support is the closed interval [Lower, Upper] that carries all the mass.
type Support struct {
	Lower float64
	Upper float64
}

// Family is the common surface of the univariate families.
// The GLM is multivariate and is used directly through BernoulliLogitGLM.
type Family interface {
	Name() string
	Discrete() bool
	Support() Support

	// LogDensity is the log PDF for continuous families and the log PMF
	// for discrete ones.
	LogDensity(x float64) float64
	CDF(x float64) float64
	LogCDF(x float64) float64
	LogCCDF(x float64) float64
	Rand(rng *rand.Rand) float64

	Mean() float64
	Variance() float64
}

var (
	_ Family = Pareto{}
	_ Family = ParetoType2{}
	_ Family = Bernoulli{}
	_ Family = BernoulliLogit{}
)

// paramNames lists parameters in the order the reference documents them.
var paramNames = map[string][]string{
	FamilyPareto:         {"y_min", "alpha"},
	FamilyParetoType2:    {"mu", "lambda", "alpha"},
	FamilyBernoulli:      {"theta"},
	FamilyBernoulliLogit: {"alpha"},
}

// Families returns the registered univariate family names, sorted.
func Families() []string {
	names := make([]string, 0, len(paramNames))
	for name := range paramNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParamNames returns the parameter names of a family.
func ParamNames(family string) ([]string, error) {
	names, ok := paramNames[family]
	if !ok {
		return nil, fmt.Errorf("%q: %w", family, ErrUnknownFamily)
	}
	return slices.Clone(names), nil
}

// New constructs a family by name. Every documented parameter must be
// present and no others are accepted.
func New(family string, params map[string]float64) (Family, error) {
	names, err := ParamNames(family)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := params[name]; !ok {
			return nil, fmt.Errorf("%s: missing parameter %q: %w", family, name, ErrInvalidParameter)
		}
	}
	for name := range params {
		if !slices.Contains(names, name) {
			return nil, fmt.Errorf("%s: unknown parameter %q: %w", family, name, ErrInvalidParameter)
		}
	}

	var f Family
	switch family {
	case FamilyPareto:
		f, err = NewPareto(params["y_min"], params["alpha"])
	case FamilyParetoType2:
		f, err = NewParetoType2(params["mu"], params["lambda"], params["alpha"])
	case FamilyBernoulli:
		f, err = NewBernoulli(params["theta"])
	case FamilyBernoulliLogit:
		f, err = NewBernoulliLogit(params["alpha"])
	default:
		err = fmt.Errorf("%q: %w", family, ErrUnknownFamily)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
