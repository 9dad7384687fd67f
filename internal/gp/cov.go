package gp

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Points1D turns scalar inputs into one-dimensional points.
func Points1D(xs []float64) [][]float64 {
	out := make([][]float64, len(xs))
	for i, x := range xs {
		out[i] = []float64{x}
	}
	return out
}

// checkInputs verifies that every point set is non-empty and that all points
// share one dimension compatible with the kernel.
func checkInputs(k Kernel, sets ...[][]float64) error {
	dim := k.Dim()
	for _, x := range sets {
		if len(x) == 0 {
			return fmt.Errorf("no input points: %w", ErrDimensionMismatch)
		}
		for i, p := range x {
			if len(p) == 0 {
				return fmt.Errorf("point %d is empty: %w", i, ErrDimensionMismatch)
			}
			if dim == 0 {
				dim = len(p)
			}
			if len(p) != dim {
				return fmt.Errorf("point %d has dimension %d, want %d: %w", i, len(p), dim, ErrDimensionMismatch)
			}
		}
	}
	return nil
}

// CovMatrix returns the n×n covariance matrix K_ij = k(x_i, x_j).
func CovMatrix(k Kernel, x [][]float64) (*mat.SymDense, error) {
	if err := checkInputs(k, x); err != nil {
		return nil, err
	}
	n := len(x)
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, k.Cov(x[i], x[j]))
		}
	}
	return cov, nil
}

// CrossCov returns the n1×n2 matrix of covariances between two point sets.
func CrossCov(k Kernel, x1, x2 [][]float64) (*mat.Dense, error) {
	if err := checkInputs(k, x1, x2); err != nil {
		return nil, err
	}
	out := mat.NewDense(len(x1), len(x2), nil)
	for i := range x1 {
		for j := range x2 {
			out.Set(i, j, k.Cov(x1[i], x2[j]))
		}
	}
	return out, nil
}

func addDiag(s *mat.SymDense, v float64) {
	if v == 0 {
		return
	}
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}

func factorize(s mat.Symmetric) (*mat.Cholesky, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return nil, ErrNotPositiveDefinite
	}
	return &chol, nil
}

func lowerFactor(chol *mat.Cholesky) *mat.TriDense {
	var l mat.TriDense
	chol.LTo(&l)
	return &l
}

// choleskyCov builds K + jitter·I and returns its lower Cholesky factor.
func choleskyCov(k Kernel, x [][]float64, jitter float64) (*mat.TriDense, error) {
	cov, err := CovMatrix(k, x)
	if err != nil {
		return nil, err
	}
	addDiag(cov, jitter)
	chol, err := factorize(cov)
	if err != nil {
		return nil, err
	}
	return lowerFactor(chol), nil
}

func normals(rng *rand.Rand, n int) []float64 {
	z := make([]float64, n)
	for i := range z {
		z[i] = rng.NormFloat64()
	}
	return z
}

// SamplePrior draws f ~ MultiNormal(0, K + jitter·I) as f = L z.
func SamplePrior(k Kernel, x [][]float64, jitter float64, rng *rand.Rand) ([]float64, error) {
	return Latent(k, x, normals(rng, len(x)), jitter)
}

// Latent maps standard normal variates eta to the latent function values
// f = L_K η, where L_K is the Cholesky factor of K + jitter·I.
func Latent(k Kernel, x [][]float64, eta []float64, jitter float64) ([]float64, error) {
	if len(eta) != len(x) {
		return nil, fmt.Errorf("eta has %d elements, x has %d points: %w", len(eta), len(x), ErrDimensionMismatch)
	}
	l, err := choleskyCov(k, x, jitter)
	if err != nil {
		return nil, err
	}
	var f mat.VecDense
	f.MulVec(l, mat.NewVecDense(len(eta), eta))
	return f.RawVector().Data, nil
}

// SampleMultiOutput computes D correlated latent functions over n points,
//
//	f = L_K η (diag(τ) L_Ω)ᵀ
//
// where eta is n×D standard normal, tau holds the D output scales and
// lOmega is the D×D Cholesky factor of the output correlation matrix.
func SampleMultiOutput(k Kernel, x [][]float64, tau []float64, lOmega, eta mat.Matrix, jitter float64) (*mat.Dense, error) {
	n := len(x)
	d := len(tau)
	if r, c := eta.Dims(); r != n || c != d {
		return nil, fmt.Errorf("eta is %d×%d, want %d×%d: %w", r, c, n, d, ErrDimensionMismatch)
	}
	if r, c := lOmega.Dims(); r != d || c != d {
		return nil, fmt.Errorf("L_Omega is %d×%d, want %d×%d: %w", r, c, d, d, ErrDimensionMismatch)
	}
	l, err := choleskyCov(k, x, jitter)
	if err != nil {
		return nil, err
	}

	var scale mat.Dense
	scale.Mul(mat.NewDiagDense(d, tau), lOmega)

	var le, f mat.Dense
	le.Mul(l, eta)
	f.Mul(&le, scale.T())
	return &f, nil
}
