package harness

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/roach88/distlab/internal/dist"
	"github.com/roach88/distlab/internal/engine"
	"github.com/roach88/distlab/internal/ir"
)

// Default property tolerances.
const (
	DefaultIntegralTolerance   = 1e-6
	DefaultComplementTolerance = 1e-9
	DefaultMomentTolerance     = 0.05
)

// quadratureNodes is the Gauss-Legendre rule size for integrates_to_one.
const quadratureNodes = 256

// maxDiscreteSupport caps the PMF sum for discrete families.
const maxDiscreteSupport = 10_000

// PropertyError describes a failed property with enough context to debug it.
type PropertyError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// runProperty checks one property. Property failures are reported in the
// PropertyResult; only infrastructure failures are returned as errors.
func (h *Harness) runProperty(ctx context.Context, p Property) (PropertyResult, error) {
	res := PropertyResult{Type: p.Type, Spec: p.Spec}

	spec, ok := h.specs.Dist(p.Spec)
	if !ok {
		res.Detail = fmt.Sprintf("unknown spec %q", p.Spec)
		return res, nil
	}
	family, err := dist.New(spec.Family, spec.Params)
	if err != nil {
		res.Detail = err.Error()
		return res, nil
	}

	switch p.Type {
	case PropertyIntegratesToOne:
		err = h.integratesToOne(ctx, spec, family, p)
	case PropertyCDFMonotone:
		err = h.cdfMonotone(ctx, spec, family, p)
	case PropertyComplement:
		err = h.complement(ctx, spec, family, p)
	case PropertyMoments:
		res.Skipped, err = h.moments(ctx, spec, family, p)
	default:
		err = &PropertyError{Type: p.Type, Expected: "a known property type", Actual: p.Type}
	}
	if err != nil {
		if !isPropertyFailure(err) {
			return res, err
		}
		res.Detail = err.Error()
		return res, nil
	}
	res.Pass = true
	if res.Skipped {
		res.Detail = "moment is not finite"
	}
	return res, nil
}

// isPropertyFailure separates property violations and runtime errors from
// infrastructure failures such as a broken store.
func isPropertyFailure(err error) bool {
	var pe *PropertyError
	return errors.As(err, &pe) || engine.CodeOf(err) != ""
}

// evaluate runs one engine request under the scenario's run.
func (h *Harness) evaluate(ctx context.Context, spec ir.DistSpec, function string, points []float64, draws int) (*engine.Report, error) {
	report, err := h.engine.Evaluate(ctx, engine.Request{
		RunID:    h.runID,
		Spec:     spec,
		Function: function,
		Points:   points,
		Draws:    draws,
		Seed:     h.seed,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	return report, nil
}

// evaluateValues is evaluate for callers that only need the values.
func (h *Harness) evaluateValues(ctx context.Context, spec ir.DistSpec, function string, points []float64) (ir.Values, error) {
	report, err := h.evaluate(ctx, spec, function, points, 0)
	if err != nil {
		return nil, err
	}
	return report.Outcome.Values, nil
}

func densityFunction(f dist.Family) string {
	if f.Discrete() {
		return engine.FuncLPMF
	}
	return engine.FuncLPDF
}

// integratesToOne sums the PMF over the support, or integrates the PDF with
// Gauss-Legendre quadrature. A half-infinite support [a, ∞) is integrated
// directly next to a and in v = log(y - a) beyond, where power-law tails
// decay exponentially; the mass beyond the upper limit u is lccdf(u).
func (h *Harness) integratesToOne(ctx context.Context, spec ir.DistSpec, f dist.Family, p Property) error {
	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultIntegralTolerance
	}
	sup := f.Support()

	var (
		points, weights []float64
		upper           float64
		tail            bool
	)
	switch {
	case f.Discrete():
		hi := sup.Upper
		if math.IsInf(hi, 1) || hi-sup.Lower > maxDiscreteSupport {
			hi = sup.Lower + maxDiscreteSupport
		}
		for n := sup.Lower; n <= hi; n++ {
			points = append(points, n)
			weights = append(weights, 1)
		}
	case math.IsInf(sup.Lower, 0):
		return &PropertyError{Type: PropertyIntegratesToOne, Expected: "a finite lower support bound", Actual: "-inf"}
	case math.IsInf(sup.Upper, 1):
		var err error
		points, weights, upper, err = h.tailNodes(ctx, spec, sup.Lower)
		if err != nil {
			return err
		}
		tail = true
	default:
		points = make([]float64, quadratureNodes)
		weights = make([]float64, quadratureNodes)
		quad.Legendre{}.FixedLocations(points, weights, sup.Lower, sup.Upper)
	}

	logDensity, err := h.evaluateValues(ctx, spec, densityFunction(f), points)
	if err != nil {
		return err
	}

	var total float64
	for i, lp := range logDensity {
		total += weights[i] * math.Exp(lp)
	}
	if tail {
		lccdf, err := h.evaluateValues(ctx, spec, engine.FuncLCCDF, []float64{upper})
		if err != nil {
			return err
		}
		total += math.Exp(lccdf[0])
	}
	if math.IsNaN(total) || math.Abs(total-1) > tol {
		return &PropertyError{
			Type:     PropertyIntegratesToOne,
			Expected: fmt.Sprintf("total mass 1 ± %g", tol),
			Actual:   ir.FormatValue(total),
		}
	}
	return nil
}

// tailProbability is the CDF level of the upper quadrature limit.
const tailProbability = 1 - 1e-9

// Quadrature limits relative to the median m: the direct panel ends at
// a + headSpan(m - a) and u is at most a + maxTailSpan(m - a).
const (
	headSpan    = 1e-3
	maxTailSpan = 1e30
)

// tailNodes returns quadrature nodes and weights on [a, u] for a density
// supported on [a, ∞), together with u.
func (h *Harness) tailNodes(ctx context.Context, spec ir.DistSpec, a float64) ([]float64, []float64, float64, error) {
	q, err := h.evaluateValues(ctx, spec, engine.FuncQuantile, []float64{0.5, tailProbability})
	if err != nil {
		return nil, nil, 0, err
	}
	m, u := q[0], q[1]
	if !(m > a) || math.IsNaN(u) || u <= m {
		return nil, nil, 0, &PropertyError{
			Type:     PropertyIntegratesToOne,
			Expected: "increasing quantiles above the support bound",
			Actual:   fmt.Sprintf("median %s, upper %s", ir.FormatValue(m), ir.FormatValue(u)),
		}
	}
	if math.IsInf(u, 1) || (u-a)/(m-a) > maxTailSpan {
		u = a + (m-a)*maxTailSpan
	}

	points := make([]float64, 2*quadratureNodes)
	weights := make([]float64, 2*quadratureNodes)
	head := (m - a) * headSpan
	quad.Legendre{}.FixedLocations(points[:quadratureNodes], weights[:quadratureNodes], a, a+head)

	v, wv := points[quadratureNodes:], weights[quadratureNodes:]
	quad.Legendre{}.FixedLocations(v, wv, math.Log(head), math.Log(u-a))
	for i := range v {
		d := math.Exp(v[i])
		v[i] = a + d
		wv[i] *= d
	}
	return points, weights, u, nil
}

// defaultGrid spans the lower edge of the support out into the tail,
// including one point below it.
func defaultGrid(f dist.Family) []float64 {
	lo := f.Support().Lower
	offsets := []float64{-1, 0, 0.25, 0.5, 1, 2, 5, 10, 100}
	grid := make([]float64, len(offsets))
	for i, d := range offsets {
		grid[i] = lo + d
	}
	return grid
}

func propertyPoints(f dist.Family, p Property) []float64 {
	if len(p.Points) > 0 {
		return p.Points
	}
	return defaultGrid(f)
}

// cdfMonotone checks that the CDF stays in [0, 1] and never decreases
// along the (sorted) grid.
func (h *Harness) cdfMonotone(ctx context.Context, spec ir.DistSpec, f dist.Family, p Property) error {
	points := propertyPoints(f, p)
	for i := 1; i < len(points); i++ {
		if points[i] < points[i-1] {
			return &PropertyError{Type: PropertyCDFMonotone, Expected: "points sorted ascending", Actual: "unsorted points"}
		}
	}

	cdf, err := h.evaluateValues(ctx, spec, engine.FuncCDF, points)
	if err != nil {
		return err
	}

	for i, c := range cdf {
		if math.IsNaN(c) || c < 0 || c > 1 {
			return &PropertyError{
				Type:     PropertyCDFMonotone,
				Expected: fmt.Sprintf("cdf(%s) in [0, 1]", ir.FormatValue(points[i])),
				Actual:   ir.FormatValue(c),
			}
		}
		if i > 0 && c < cdf[i-1] {
			return &PropertyError{
				Type:     PropertyCDFMonotone,
				Expected: fmt.Sprintf("cdf(%s) >= %s", ir.FormatValue(points[i]), ir.FormatValue(cdf[i-1])),
				Actual:   ir.FormatValue(c),
			}
		}
	}
	return nil
}

// complement checks exp(lcdf(x)) + exp(lccdf(x)) = 1 at every grid point.
func (h *Harness) complement(ctx context.Context, spec ir.DistSpec, f dist.Family, p Property) error {
	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultComplementTolerance
	}
	points := propertyPoints(f, p)

	lcdf, err := h.evaluateValues(ctx, spec, engine.FuncLCDF, points)
	if err != nil {
		return err
	}
	lccdf, err := h.evaluateValues(ctx, spec, engine.FuncLCCDF, points)
	if err != nil {
		return err
	}

	for i := range points {
		sum := math.Exp(lcdf[i]) + math.Exp(lccdf[i])
		if math.IsNaN(sum) || math.Abs(sum-1) > tol {
			return &PropertyError{
				Type:     PropertyComplement,
				Expected: fmt.Sprintf("exp(lcdf) + exp(lccdf) = 1 ± %g at %s", tol, ir.FormatValue(points[i])),
				Actual:   ir.FormatValue(sum),
			}
		}
	}
	return nil
}

// moments compares sample moments of seeded draws with the closed forms.
// Skipped is true when a requested moment is infinite.
func (h *Harness) moments(ctx context.Context, spec ir.DistSpec, f dist.Family, p Property) (bool, error) {
	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultMomentTolerance
	}
	stats := p.Stats
	if len(stats) == 0 {
		stats = []string{StatMean, StatVariance}
	}

	type target struct {
		name  string
		exact float64
	}
	targets := make([]target, 0, len(stats))
	for _, stat := range stats {
		vals, err := h.evaluateValues(ctx, spec, stat, nil)
		if err != nil {
			return false, err
		}
		if math.IsInf(vals[0], 0) || math.IsNaN(vals[0]) {
			return true, nil
		}
		targets = append(targets, target{name: stat, exact: vals[0]})
	}

	report, err := h.evaluate(ctx, spec, engine.FuncRNG, nil, p.Draws)
	if err != nil {
		return false, err
	}
	if report.Summary == nil {
		return false, &PropertyError{Type: PropertyMoments, Expected: "a draw summary", Actual: "none"}
	}

	for _, tg := range targets {
		sample := report.Summary.Mean
		if tg.name == StatVariance {
			sample = report.Summary.Variance
		}
		if math.Abs(sample-tg.exact) > tol*math.Max(math.Abs(tg.exact), 1e-12) {
			return false, &PropertyError{
				Type:     PropertyMoments,
				Expected: fmt.Sprintf("sample %s within %g of %s", tg.name, tol, ir.FormatValue(tg.exact)),
				Actual:   ir.FormatValue(sample),
			}
		}
	}
	return false, nil
}
