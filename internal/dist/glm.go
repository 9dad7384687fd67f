package dist

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// BernoulliLogitGLM is the Bernoulli-Logit generalised linear model
//
//	BernoulliLogitGLM(y | x, α, β) = Π_i BernoulliLogit(y_i | α_i + x_i · β)
//
// where x is an n×k predictor matrix, β has k coefficients and α is either
// a single intercept shared by every row or one intercept per row.
type BernoulliLogitGLM struct {
	x     mat.Matrix
	alpha []float64
	beta  []float64
}

// NewBernoulliLogitGLM validates dimensions and finiteness of the inputs.
// The slices are copied.
func NewBernoulliLogitGLM(x mat.Matrix, alpha, beta []float64) (*BernoulliLogitGLM, error) {
	n, k := x.Dims()
	if len(beta) != k {
		return nil, fmt.Errorf("%s: beta has %d elements, x has %d columns: %w",
			FamilyBernoulliLogitGLM, len(beta), k, ErrDimensionMismatch)
	}
	if len(alpha) != 1 && len(alpha) != n {
		return nil, fmt.Errorf("%s: alpha has %d elements, want 1 or %d: %w",
			FamilyBernoulliLogitGLM, len(alpha), n, ErrDimensionMismatch)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			if err := checkFinite(FamilyBernoulliLogitGLM, fmt.Sprintf("x[%d,%d]", i, j), x.At(i, j)); err != nil {
				return nil, err
			}
		}
	}
	for i, a := range alpha {
		if err := checkFinite(FamilyBernoulliLogitGLM, fmt.Sprintf("alpha[%d]", i), a); err != nil {
			return nil, err
		}
	}
	for j, b := range beta {
		if err := checkFinite(FamilyBernoulliLogitGLM, fmt.Sprintf("beta[%d]", j), b); err != nil {
			return nil, err
		}
	}
	return &BernoulliLogitGLM{
		x:     x,
		alpha: append([]float64(nil), alpha...),
		beta:  append([]float64(nil), beta...),
	}, nil
}

// Rows returns the number of observations n.
func (g *BernoulliLogitGLM) Rows() int {
	n, _ := g.x.Dims()
	return n
}

// LinearPredictor returns η = α + xβ.
func (g *BernoulliLogitGLM) LinearPredictor() []float64 {
	n, k := g.x.Dims()
	eta := mat.NewVecDense(n, nil)
	eta.MulVec(g.x, mat.NewVecDense(k, g.beta))

	out := make([]float64, n)
	for i := range out {
		out[i] = eta.AtVec(i) + g.intercept(i)
	}
	return out
}

func (g *BernoulliLogitGLM) intercept(i int) float64 {
	if len(g.alpha) == 1 {
		return g.alpha[0]
	}
	return g.alpha[i]
}

// LogPMF returns the joint log mass of the outcome vector y.
func (g *BernoulliLogitGLM) LogPMF(y []int) (float64, error) {
	if len(y) != g.Rows() {
		return 0, fmt.Errorf("%s: y has %d elements, x has %d rows: %w",
			FamilyBernoulliLogitGLM, len(y), g.Rows(), ErrDimensionMismatch)
	}
	total := 0.0
	for i, eta := range g.LinearPredictor() {
		total += BernoulliLogit{Alpha: eta}.LogPMF(y[i])
	}
	return total, nil
}

// Rand draws one outcome per row.
func (g *BernoulliLogitGLM) Rand(rng *rand.Rand) []int {
	eta := g.LinearPredictor()
	out := make([]int, len(eta))
	for i, e := range eta {
		out[i] = BernoulliLogit{Alpha: e}.RandInt(rng)
	}
	return out
}
