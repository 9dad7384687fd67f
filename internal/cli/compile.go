package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/distlab/internal/compiler"
	"github.com/roach88/distlab/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled declarations.
type CompilationResult struct {
	Dists []ir.DistSpec `json:"dists"`
	GPs   []ir.GPSpec   `json:"gps"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE specs to IR",
		Long: `Compile CUE dist and gp declarations to IR.

The compiler parses CUE files, checks every family and parameter against
its domain, and outputs the compiled declarations as JSON. All errors are
reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		code, message := parseCompileError(loadErrors[0])
		return commandError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, d := range loadResult.Dists {
		formatter.VerboseLog("Compiled dist: %s (%s)", d.Name, d.Family)
	}
	for _, g := range loadResult.GPs {
		formatter.VerboseLog("Compiled gp: %s (%s)", g.Name, g.Kernel)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{
		Dists: loadResult.Dists,
		GPs:   loadResult.GPs,
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return commandError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d dist(s), %d gp(s)\n\n", len(result.Dists), len(result.GPs))

	if len(result.Dists) > 0 {
		fmt.Fprintln(w, "Dists:")
		for _, d := range result.Dists {
			fmt.Fprintf(w, "  %s: %s(%s)\n", d.Name, d.Family, formatParams(d.Params))
		}
		fmt.Fprintln(w)
	}

	if len(result.GPs) > 0 {
		fmt.Fprintln(w, "GPs:")
		for _, g := range result.GPs {
			fmt.Fprintf(w, "  %s: %s(alpha=%g, rho=%v, sigma=%g)\n", g.Name, g.Kernel, g.Alpha, g.Rho, g.Sigma)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote IR to %s\n", outputFile)
	}
	return nil
}

// formatParams renders params as "k=v" pairs in key order.
func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, ir.FormatValue(params[k]))
	}
	return strings.Join(parts, ", ")
}

// outputCompileErrors outputs every compilation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}
	return exitErr
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the compilation result as indented JSON.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
