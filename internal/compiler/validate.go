package compiler

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"

	"github.com/roach88/distlab/internal/dist"
	"github.com/roach88/distlab/internal/gp"
	"github.com/roach88/distlab/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// DistSpec errors (E101-E109)
	ErrUnknownFamily     = "E101" // family is not registered
	ErrMissingParameter  = "E102" // documented parameter absent
	ErrUnknownParameter  = "E103" // parameter not documented for the family
	ErrParameterDomain   = "E104" // parameter violates its constraint
	ErrInvalidName       = "E105" // declaration name is not an identifier
	ErrNonFiniteConstant = "E106" // NaN or infinite literal

	// GPSpec errors (E110-E119)
	ErrUnknownKernel    = "E110" // kernel is not exp_quad or ard
	ErrInvalidHyper     = "E111" // alpha, rho, sigma or jitter out of domain
	ErrLengthScaleArity = "E112" // rho count does not fit the kernel
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled specs against domain rules.
// Returns all errors found (does not fail-fast).
// Supports DistSpec and GPSpec types.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.DistSpec:
		return validateDistSpec(spec)
	case ir.DistSpec:
		return validateDistSpec(&spec)
	case *ir.GPSpec:
		return validateGPSpec(spec)
	case ir.GPSpec:
		return validateGPSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func validateName(name string) []ValidationError {
	if namePattern.MatchString(name) {
		return nil
	}
	return []ValidationError{{
		Field:   "name",
		Message: fmt.Sprintf("%q must start with a letter and contain only letters, digits and underscores", name),
		Code:    ErrInvalidName,
	}}
}

func validateDistSpec(spec *ir.DistSpec) []ValidationError {
	errs := validateName(spec.Name)

	names, err := dist.ParamNames(spec.Family)
	if err != nil {
		return append(errs, ValidationError{
			Field:   "family",
			Message: fmt.Sprintf("unknown family %q (known: %v)", spec.Family, dist.Families()),
			Code:    ErrUnknownFamily,
		})
	}

	for _, name := range names {
		if _, ok := spec.Params[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   "params." + name,
				Message: fmt.Sprintf("%s requires parameter %s", spec.Family, name),
				Code:    ErrMissingParameter,
			})
		}
	}
	for _, name := range sortedKeys(spec.Params) {
		x := spec.Params[name]
		if !slices.Contains(names, name) {
			errs = append(errs, ValidationError{
				Field:   "params." + name,
				Message: fmt.Sprintf("%s has no parameter %s (expected %v)", spec.Family, name, names),
				Code:    ErrUnknownParameter,
			})
			continue
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			errs = append(errs, ValidationError{
				Field:   "params." + name,
				Message: fmt.Sprintf("%v is not a finite number", x),
				Code:    ErrNonFiniteConstant,
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// Structure is sound; let the family constructor check domains.
	if _, err := dist.New(spec.Family, spec.Params); err != nil {
		field := "params"
		var pe *dist.ParamError
		if errors.As(err, &pe) {
			field = "params." + pe.Param
		}
		errs = append(errs, ValidationError{Field: field, Message: err.Error(), Code: ErrParameterDomain})
	}
	return errs
}

func validateGPSpec(spec *ir.GPSpec) []ValidationError {
	errs := validateName(spec.Name)

	switch spec.Kernel {
	case gp.KernelExpQuad:
		if len(spec.Rho) != 1 {
			errs = append(errs, ValidationError{
				Field:   "rho",
				Message: fmt.Sprintf("exp_quad takes one length scale, got %d", len(spec.Rho)),
				Code:    ErrLengthScaleArity,
			})
		}
	case gp.KernelARD:
		if len(spec.Rho) == 0 {
			errs = append(errs, ValidationError{
				Field:   "rho",
				Message: "ard needs one length scale per input dimension",
				Code:    ErrLengthScaleArity,
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "kernel",
			Message: fmt.Sprintf("unknown kernel %q (known: exp_quad, ard)", spec.Kernel),
			Code:    ErrUnknownKernel,
		})
	}

	if !positiveFinite(spec.Alpha) {
		errs = append(errs, hyperError("alpha", spec.Alpha, "positive finite"))
	}
	for i, rho := range spec.Rho {
		if !positiveFinite(rho) {
			errs = append(errs, hyperError(fmt.Sprintf("rho[%d]", i), rho, "positive finite"))
		}
	}
	if !nonNegativeFinite(spec.Sigma) {
		errs = append(errs, hyperError("sigma", spec.Sigma, "non-negative finite"))
	}
	if !nonNegativeFinite(spec.Jitter) {
		errs = append(errs, hyperError("jitter", spec.Jitter, "non-negative finite"))
	}
	if spec.Sigma == 0 && spec.Jitter == 0 {
		errs = append(errs, ValidationError{
			Field:   "jitter",
			Message: "sigma and jitter are both zero; the covariance will not factorise at repeated inputs",
			Code:    ErrInvalidHyper,
		})
	}
	return errs
}

func hyperError(field string, v float64, constraint string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%v must be %s", v, constraint),
		Code:    ErrInvalidHyper,
	}
}

func positiveFinite(x float64) bool    { return x > 0 && !math.IsInf(x, 1) }
func nonNegativeFinite(x float64) bool { return x >= 0 && !math.IsInf(x, 1) }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
