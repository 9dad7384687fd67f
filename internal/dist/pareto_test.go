package dist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestNewPareto_RejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		yMin  float64
		alpha float64
		param string
	}{
		{"zero y_min", 0, 1, "y_min"},
		{"negative y_min", -1, 1, "y_min"},
		{"NaN y_min", math.NaN(), 1, "y_min"},
		{"infinite y_min", math.Inf(1), 1, "y_min"},
		{"zero alpha", 1, 0, "alpha"},
		{"negative alpha", 1, -2, "alpha"},
		{"infinite alpha", 1, math.Inf(1), "alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPareto(tt.yMin, tt.alpha)
			require.ErrorIs(t, err, ErrInvalidParameter)

			var pe *ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.param, pe.Param)
			assert.Equal(t, FamilyPareto, pe.Family)
		})
	}
}

func TestPareto_LogPDFKnownValue(t *testing.T) {
	p, err := NewPareto(1, 3)
	require.NoError(t, err)

	// log 3 + 3 log 1 - 4 log 2
	assert.InDelta(t, math.Log(3)-4*math.Log(2), p.LogPDF(2), 1e-12)
	assert.InDelta(t, math.Log(3), p.LogPDF(1), 1e-12)
}

func TestPareto_MatchesGonum(t *testing.T) {
	p, err := NewPareto(1.5, 2.5)
	require.NoError(t, err)
	oracle := distuv.Pareto{Xm: 1.5, Alpha: 2.5}

	for _, y := range []float64{1.5, 1.7, 2, 3.25, 10, 1e3} {
		assert.InDelta(t, oracle.LogProb(y), p.LogPDF(y), 1e-10, "LogPDF(%v)", y)
		assert.InDelta(t, oracle.CDF(y), p.CDF(y), 1e-12, "CDF(%v)", y)
		assert.InDelta(t, math.Log(oracle.Survival(y)), p.LogCCDF(y), 1e-10, "LogCCDF(%v)", y)
	}
	assert.InDelta(t, oracle.Mean(), p.Mean(), 1e-12)
	assert.InDelta(t, oracle.Variance(), p.Variance(), 1e-12)
}

func TestPareto_OutsideSupport(t *testing.T) {
	p, err := NewPareto(2, 1)
	require.NoError(t, err)

	assert.True(t, math.IsInf(p.LogPDF(1.99), -1))
	assert.Equal(t, 0.0, p.CDF(1))
	assert.True(t, math.IsInf(p.LogCDF(1), -1))
	assert.Equal(t, 0.0, p.LogCCDF(1))

	assert.True(t, math.IsInf(p.LogCDF(2), -1), "no mass strictly below y_min")
	assert.Equal(t, 1.0, p.CDF(math.Inf(1)))
	assert.True(t, math.IsNaN(p.LogPDF(math.NaN())))
}

func TestPareto_LogCDFAndLogCCDFCompose(t *testing.T) {
	p, err := NewPareto(0.5, 1.2)
	require.NoError(t, err)

	for _, y := range []float64{0.5000001, 0.6, 1, 4, 100, 1e8} {
		sum := math.Exp(p.LogCDF(y)) + math.Exp(p.LogCCDF(y))
		assert.InDelta(t, 1.0, sum, 1e-12, "y=%v", y)
	}
}

func TestPareto_LogCCDFKeepsTailPrecision(t *testing.T) {
	p, err := NewPareto(1, 2)
	require.NoError(t, err)

	// CDF rounds to 1 far in the tail, the log survival does not.
	assert.Equal(t, 1.0, p.CDF(1e20))
	assert.InDelta(t, -2*math.Log(1e20), p.LogCCDF(1e20), 1e-9)
}

func TestPareto_QuantileInvertsCDF(t *testing.T) {
	p, err := NewPareto(3, 4)
	require.NoError(t, err)

	for _, q := range []float64{0, 0.01, 0.25, 0.5, 0.9, 0.999} {
		assert.InDelta(t, q, p.CDF(p.Quantile(q)), 1e-12, "q=%v", q)
	}
	assert.True(t, math.IsNaN(p.Quantile(-0.1)))
	assert.True(t, math.IsInf(p.Quantile(1), 1))
}

func TestPareto_InfiniteMoments(t *testing.T) {
	p, err := NewPareto(1, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(p.Mean(), 1))
	assert.True(t, math.IsInf(p.Variance(), 1))

	p, err = NewPareto(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, p.Mean(), 1e-12)
	assert.True(t, math.IsInf(p.Variance(), 1))
}

func TestPareto_SampleMomentsConverge(t *testing.T) {
	p, err := NewPareto(1, 6)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 11))
	draws := make([]float64, 200000)
	for i := range draws {
		draws[i] = p.Rand(rng)
		require.GreaterOrEqual(t, draws[i], p.YMin)
	}

	mean, variance := stat.MeanVariance(draws, nil)
	assert.InDelta(t, p.Mean(), mean, 0.005)
	assert.InDelta(t, p.Variance(), variance, 0.005)
}

func TestPareto_RandIsReproducible(t *testing.T) {
	p, err := NewPareto(2, 3)
	require.NoError(t, err)

	a := rand.New(rand.NewPCG(42, 42))
	b := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, p.Rand(a), p.Rand(b))
	}
}
