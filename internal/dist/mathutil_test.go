package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog1pExp(t *testing.T) {
	assert.InDelta(t, math.Ln2, log1pExp(0), 1e-15)
	assert.InDelta(t, 1000.0, log1pExp(1000), 1e-12, "no overflow")
	assert.InDelta(t, math.Exp(-50), log1pExp(-50), 1e-30)
	assert.InDelta(t, math.Log(1+math.E), log1pExp(1), 1e-15)
}

func TestLog1mExp(t *testing.T) {
	for _, x := range []float64{-1e-10, -0.1, -math.Ln2, -3, -40} {
		want := math.Log(1 - math.Exp(x))
		if x == -1e-10 {
			want = math.Log(1e-10)
		}
		assert.InDelta(t, want, log1mExp(x), 1e-9, "x=%v", x)
	}
	assert.True(t, math.IsInf(log1mExp(0), -1))
	assert.True(t, math.IsNaN(log1mExp(0.5)))
}

func TestAsCount(t *testing.T) {
	n, ok := asCount(3)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	for _, x := range []float64{0.5, math.NaN(), math.Inf(1)} {
		_, ok := asCount(x)
		assert.False(t, ok, "x=%v", x)
	}

	n, ok = asCount(1e300)
	assert.True(t, ok)
	assert.Equal(t, 1<<30, n)
}
