package dist

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestNewBernoulli_Validation(t *testing.T) {
	for _, theta := range []float64{0, 0.5, 1} {
		_, err := NewBernoulli(theta)
		assert.NoError(t, err, "theta=%v", theta)
	}
	for _, theta := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := NewBernoulli(theta)
		assert.ErrorIs(t, err, ErrInvalidParameter, "theta=%v", theta)
	}
}

func TestBernoulli_LogPMF(t *testing.T) {
	b, err := NewBernoulli(0.3)
	require.NoError(t, err)
	oracle := distuv.Bernoulli{P: 0.3}

	assert.InDelta(t, oracle.LogProb(1), b.LogPMF(1), 1e-12)
	assert.InDelta(t, oracle.LogProb(0), b.LogPMF(0), 1e-12)
	assert.True(t, math.IsInf(b.LogPMF(2), -1))
	assert.True(t, math.IsInf(b.LogPMF(-1), -1))

	assert.True(t, math.IsInf(b.LogDensity(0.5), -1), "non-integer outcome")
	assert.InDelta(t, math.Log(0.3), b.LogDensity(1), 1e-12)
}

func TestBernoulli_DegenerateTheta(t *testing.T) {
	b, err := NewBernoulli(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.LogPMF(0))
	assert.True(t, math.IsInf(b.LogPMF(1), -1))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, b.RandInt(rng))
	}
}

func TestBernoulli_CDFFamily(t *testing.T) {
	b, err := NewBernoulli(0.25)
	require.NoError(t, err)

	tests := []struct {
		x                float64
		cdf, lcdf, lccdf float64
	}{
		{-1, 0, math.Inf(-1), 0},
		{0, 0.75, math.Log(0.75), math.Log(0.25)},
		{0.5, 0.75, math.Log(0.75), math.Log(0.25)},
		{1, 1, 0, math.Inf(-1)},
		{3, 1, 0, math.Inf(-1)},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.cdf, b.CDF(tt.x), 1e-12, "CDF(%v)", tt.x)
		assertLogEqual(t, tt.lcdf, b.LogCDF(tt.x), "LogCDF(%v)", tt.x)
		assertLogEqual(t, tt.lccdf, b.LogCCDF(tt.x), "LogCCDF(%v)", tt.x)
	}
}

func TestBernoulli_LogPMFSum(t *testing.T) {
	b, err := NewBernoulli(0.6)
	require.NoError(t, err)

	got := b.LogPMFSum([]int{1, 1, 0})
	assert.InDelta(t, 2*math.Log(0.6)+math.Log(0.4), got, 1e-12)
	assert.Equal(t, 0.0, b.LogPMFSum(nil))
}

func TestBernoulli_SampleMeanConverges(t *testing.T) {
	b, err := NewBernoulli(0.35)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(99, 1))
	const n = 100000
	ones := 0
	for i := 0; i < n; i++ {
		ones += b.RandInt(rng)
	}
	assert.InDelta(t, b.Mean(), float64(ones)/n, 0.01)
	assert.InDelta(t, 0.35*0.65, b.Variance(), 1e-12)
}

// assertLogEqual compares log-scale values, treating equal infinities as equal.
func assertLogEqual(t *testing.T, want, got float64, msgAndArgs ...any) {
	t.Helper()
	if math.IsInf(want, 0) {
		assert.Equal(t, want, got, msgAndArgs...)
		return
	}
	assert.InDelta(t, want, got, 1e-12, msgAndArgs...)
}
