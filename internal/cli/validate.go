package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/distlab/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Dists  int                        `json:"dists"`
	GPs    int                        `json:"gps"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs without writing IR",
		Long: `Validate CUE dist and gp declarations.

Checks families, parameter domains, kernels and hyperparameters and
reports every error with its line. Nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, err := ValidateSpecsDir(specsDir)
	if err != nil {
		code, message := parseCompileError(err)
		return commandError(formatter, code, message)
	}
	formatter.VerboseLog("Checked %d dist(s), %d gp(s) in %s", result.Dists, result.GPs, specsDir)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d dist(s), %d gp(s))\n", result.Dists, result.GPs)
	return nil
}

// ValidateSpecsDir validates every declaration in a directory. The error is
// non-nil only when the directory could not be loaded at all.
func ValidateSpecsDir(specsDir string) (*ValidationResult, error) {
	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		return nil, loadErrors[0]
	}

	result := &ValidationResult{
		Valid: len(loadErrors) == 0,
		Dists: len(loadResult.Dists),
		GPs:   len(loadResult.GPs),
	}
	for _, err := range loadErrors {
		ve := compiler.ValidationError{Field: "load", Code: compiler.ErrCodeGeneric, Message: err.Error()}
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) {
			ve.Code = loadErr.Code
			ve.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				ve.Line = loadErr.Pos.Line()
			}
		}
		result.Errors = append(result.Errors, ve)
	}
	return result, nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}
	return exitErr
}
