package engine

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultQuantiles are the probabilities reported by Summarize.
var DefaultQuantiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// QuantilePoint is one empirical quantile.
type QuantilePoint struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// Summary describes a sample of draws.
type Summary struct {
	N         int             `json:"n"`
	Mean      float64         `json:"mean"`
	Variance  float64         `json:"variance"` // unbiased; 0 for a single draw
	StdDev    float64         `json:"std_dev"`
	Min       float64         `json:"min"`
	Max       float64         `json:"max"`
	Quantiles []QuantilePoint `json:"quantiles"`
}

// Summarize computes sample moments and empirical quantiles of xs.
func Summarize(xs []float64) (Summary, error) {
	if len(xs) == 0 {
		return Summary{}, errors.New("summarize: no draws")
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  floats.Min(xs),
		Max:  floats.Max(xs),
	}
	if len(xs) > 1 {
		s.Variance = stat.Variance(xs, nil)
	}
	s.StdDev = math.Sqrt(s.Variance)

	s.Quantiles = make([]QuantilePoint, len(DefaultQuantiles))
	for i, p := range DefaultQuantiles {
		s.Quantiles[i] = QuantilePoint{P: p, Value: stat.Quantile(p, stat.Empirical, sorted, nil)}
	}
	return s, nil
}
