package engine

import "slices"

// Function names accepted by Evaluate.
const (
	FuncLPDF     = "lpdf"
	FuncLPMF     = "lpmf"
	FuncCDF      = "cdf"
	FuncLCDF     = "lcdf"
	FuncLCCDF    = "lccdf"
	FuncQuantile = "quantile"
	FuncRNG      = "rng"
	FuncMean     = "mean"
	FuncVariance = "variance"

	// Gaussian process functions.
	FuncPredict = "predict"
	FuncLML     = "lml"
)

// FamilyGP is the family recorded for Gaussian process evaluations.
const FamilyGP = "gaussian_process"

// pointwise functions map each point to one value.
var pointwise = []string{FuncLPDF, FuncLPMF, FuncCDF, FuncLCDF, FuncLCCDF, FuncQuantile}

// Functions returns the univariate function names, sorted.
func Functions() []string {
	names := append(slices.Clone(pointwise), FuncRNG, FuncMean, FuncVariance)
	slices.Sort(names)
	return names
}

func isPointwise(function string) bool {
	return slices.Contains(pointwise, function)
}

// cacheable reports whether repeated evaluations may reuse a stored outcome.
// Random draws are never memoised: the cache key does not cover the seed.
func cacheable(function string) bool {
	return function != FuncRNG
}
