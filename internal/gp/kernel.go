package gp

import (
	"fmt"
	"math"

	"github.com/roach88/distlab/internal/dist"
	"gonum.org/v1/gonum/floats"
)

// Kernel names accepted by NewKernel.
const (
	KernelExpQuad = "exp_quad"
	KernelARD     = "ard"
)

// Kernel is a covariance function k(a, b) over input points.
type Kernel interface {
	Name() string

	// Cov returns the covariance between two points of equal dimension.
	Cov(a, b []float64) float64

	// Dim is the required input dimension, or 0 when any dimension is accepted.
	Dim() int

	Validate() error
}

// ExpQuad is the exponentiated quadratic kernel
//
//	k(x, x') = α² exp(−|x − x'|² / (2ρ²))
type ExpQuad struct {
	Alpha float64 // marginal standard deviation
	Rho   float64 // length scale
}

func (ExpQuad) Name() string { return KernelExpQuad }
func (ExpQuad) Dim() int     { return 0 }

func (k ExpQuad) Cov(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return k.Alpha * k.Alpha * math.Exp(-d*d/(2*k.Rho*k.Rho))
}

func (k ExpQuad) Validate() error {
	if err := checkHyper(KernelExpQuad, "alpha", k.Alpha); err != nil {
		return err
	}
	return checkHyper(KernelExpQuad, "rho", k.Rho)
}

// ARD is the exponentiated quadratic kernel with one length scale per input
// dimension (automatic relevance determination).
type ARD struct {
	Alpha float64
	Rho   []float64
}

func (ARD) Name() string { return KernelARD }
func (k ARD) Dim() int   { return len(k.Rho) }

func (k ARD) Cov(a, b []float64) float64 {
	sum := 0.0
	for d, rho := range k.Rho {
		z := (a[d] - b[d]) / rho
		sum += z * z
	}
	return k.Alpha * k.Alpha * math.Exp(-sum/2)
}

func (k ARD) Validate() error {
	if len(k.Rho) == 0 {
		return fmt.Errorf("%s: rho needs at least one length scale: %w", KernelARD, ErrDimensionMismatch)
	}
	if err := checkHyper(KernelARD, "alpha", k.Alpha); err != nil {
		return err
	}
	for d, rho := range k.Rho {
		if err := checkHyper(KernelARD, fmt.Sprintf("rho[%d]", d), rho); err != nil {
			return err
		}
	}
	return nil
}

// NewKernel builds a validated kernel by name. The exp_quad kernel takes a
// single length scale.
func NewKernel(name string, alpha float64, rho []float64) (Kernel, error) {
	var k Kernel
	switch name {
	case KernelExpQuad:
		if len(rho) != 1 {
			return nil, fmt.Errorf("%s: rho has %d elements, want 1: %w", name, len(rho), ErrDimensionMismatch)
		}
		k = ExpQuad{Alpha: alpha, Rho: rho[0]}
	case KernelARD:
		k = ARD{Alpha: alpha, Rho: append([]float64(nil), rho...)}
	default:
		return nil, fmt.Errorf("unknown kernel %q", name)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func checkHyper(kernel, param string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &dist.ParamError{Family: kernel, Param: param, Value: v, Constraint: "positive finite"}
	}
	return nil
}
