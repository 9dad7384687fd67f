package dist

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is wrapped by every parameter validation failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrUnknownFamily indicates a family name that is not registered.
var ErrUnknownFamily = errors.New("unknown distribution family")

// ErrDimensionMismatch indicates vector or matrix arguments of incompatible sizes.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// ParamError describes a parameter that violates its domain constraint.
type ParamError struct {
	Family     string  // family that rejected the parameter
	Param      string  // parameter name as documented (e.g. "y_min")
	Value      float64 // offending value
	Constraint string  // human-readable constraint (e.g. "positive finite")
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s is %v, but must be %s", e.Family, e.Param, e.Value, e.Constraint)
}

// Unwrap lets callers match any ParamError with errors.Is(err, ErrInvalidParameter).
func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

func checkPositiveFinite(family, param string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &ParamError{Family: family, Param: param, Value: v, Constraint: "positive finite"}
	}
	return nil
}

func checkFinite(family, param string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParamError{Family: family, Param: param, Value: v, Constraint: "finite"}
	}
	return nil
}

func checkProbability(family, param string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return &ParamError{Family: family, Param: param, Value: v, Constraint: "in the interval [0, 1]"}
	}
	return nil
}
