package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/distlab/internal/dist"
	"github.com/roach88/distlab/internal/gp"
)

// RuntimeError represents an error detected while evaluating a request.
//
// Runtime errors include:
//   - Unknown family: the spec names an unregistered family
//   - Invalid parameter: a parameter violates its domain
//   - Unknown function: the function is not defined for the family
//   - Invalid request: malformed points, draws or inputs
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Details contains additional context.
	Details map[string]string

	err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownFamily indicates a family name that is not registered.
	ErrCodeUnknownFamily RuntimeErrorCode = "UNKNOWN_FAMILY"

	// ErrCodeInvalidParameter indicates a parameter outside its domain.
	ErrCodeInvalidParameter RuntimeErrorCode = "INVALID_PARAMETER"

	// ErrCodeUnknownFunction indicates a function the family does not define.
	ErrCodeUnknownFunction RuntimeErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeInvalidRequest indicates malformed request inputs.
	ErrCodeInvalidRequest RuntimeErrorCode = "INVALID_REQUEST"

	// ErrCodeQuotaExceeded indicates a run exceeded its draw budget.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeNumerical indicates a matrix that is not positive definite.
	ErrCodeNumerical RuntimeErrorCode = "NUMERICAL_ERROR"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *RuntimeError) Unwrap() error {
	return e.err
}

// CodeOf returns the RuntimeErrorCode carried by err, or "" if err is not a
// RuntimeError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newRuntimeError(code RuntimeErrorCode, runID, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), RunID: runID}
}

// classify wraps an error from the dist or gp packages in a RuntimeError.
func classify(err error, runID string) *RuntimeError {
	var re *RuntimeError
	if errors.As(err, &re) {
		if re.RunID == "" {
			re.RunID = runID
		}
		return re
	}

	code := ErrCodeInvalidRequest
	switch {
	case errors.Is(err, dist.ErrUnknownFamily):
		code = ErrCodeUnknownFamily
	case errors.Is(err, dist.ErrInvalidParameter):
		code = ErrCodeInvalidParameter
	case errors.Is(err, gp.ErrNotPositiveDefinite):
		code = ErrCodeNumerical
	}

	out := &RuntimeError{Code: code, Message: err.Error(), RunID: runID, err: err}
	var pe *dist.ParamError
	if errors.As(err, &pe) {
		out.Details = map[string]string{
			"family":     pe.Family,
			"param":      pe.Param,
			"constraint": pe.Constraint,
		}
	}
	return out
}
