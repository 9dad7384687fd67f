package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/distlab/internal/gp"
	"github.com/roach88/distlab/internal/ir"
)

// DefaultJitter is added to covariance diagonals when a gp declaration
// does not set jitter.
const DefaultJitter = 1e-9

// CompileGP parses a CUE value into a GPSpec:
//
//	gp: trend: {
//		kernel: "exp_quad" // optional, "exp_quad" or "ard"
//		alpha:  1.0
//		rho:    0.8        // a number, or a list for "ard"
//		sigma:  0.1
//		jitter: 1e-9       // optional
//	}
func CompileGP(v cue.Value) (*ir.GPSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.GPSpec{Name: labelOf(v), Kernel: gp.KernelExpQuad, Jitter: DefaultJitter}

	if kv := v.LookupPath(cue.ParsePath("kernel")); kv.Exists() {
		kernel, err := kv.String()
		if err != nil {
			return nil, &CompileError{Field: "kernel", Message: "kernel must be a string", Pos: kv.Pos()}
		}
		spec.Kernel = kernel
	}

	var err error
	if spec.Alpha, err = requiredNumber(v, "alpha"); err != nil {
		return nil, err
	}
	if spec.Sigma, err = requiredNumber(v, "sigma"); err != nil {
		return nil, err
	}

	rhoVal := v.LookupPath(cue.ParsePath("rho"))
	if !rhoVal.Exists() {
		return nil, &CompileError{Field: "rho", Message: "rho is required", Pos: v.Pos()}
	}
	if rhoVal.IncompleteKind() == cue.ListKind {
		list, err := rhoVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for list.Next() {
			x, err := list.Value().Float64()
			if err != nil {
				return nil, &CompileError{Field: "rho", Message: "rho entries must be numbers", Pos: list.Value().Pos()}
			}
			spec.Rho = append(spec.Rho, x)
		}
	} else {
		x, err := rhoVal.Float64()
		if err != nil {
			return nil, &CompileError{Field: "rho", Message: "rho must be a number or a list of numbers", Pos: rhoVal.Pos()}
		}
		spec.Rho = []float64{x}
	}

	if jv := v.LookupPath(cue.ParsePath("jitter")); jv.Exists() {
		x, err := jv.Float64()
		if err != nil {
			return nil, &CompileError{Field: "jitter", Message: "jitter must be a number", Pos: jv.Pos()}
		}
		spec.Jitter = x
	}

	return spec, nil
}

func requiredNumber(v cue.Value, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	x, err := fv.Float64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: field + " must be a number", Pos: fv.Pos()}
	}
	return x, nil
}
