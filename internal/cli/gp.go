package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/distlab/internal/engine"
	gpkg "github.com/roach88/distlab/internal/gp"
	"github.com/roach88/distlab/internal/ir"
)

// GPOptions holds flags shared by the gp subcommands.
type GPOptions struct {
	*RootOptions
	RunID string
}

// GPData is the YAML input of the gp subcommands. Inputs may be written as
// plain numbers when they are one-dimensional.
type GPData struct {
	X1 PointList `yaml:"x1"`
	Y1 []float64 `yaml:"y1"`
	X2 PointList `yaml:"x2"`
}

// PointList is a list of input points. Each entry is a number (a 1-D point)
// or a list of numbers.
type PointList [][]float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PointList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of points", node.Line)
	}
	points := make([][]float64, len(node.Content))
	for i, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			var x float64
			if err := item.Decode(&x); err != nil {
				return err
			}
			points[i] = []float64{x}
		case yaml.SequenceNode:
			if err := item.Decode(&points[i]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: point must be a number or a list of numbers", item.Line)
		}
	}
	*p = points
	return nil
}

// LoadGPData reads a GP data file. Unknown keys are rejected.
func LoadGPData(path string) (*GPData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var d GPData
	if err := decodeStrictYAML(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	return &d, nil
}

// NewGPCommand creates the gp command and its subcommands.
func NewGPCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GPOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gp",
		Short: "Gaussian process regression",
		Long: `Condition a declared Gaussian process on training data.

Data files are YAML with training inputs x1, training outputs y1 and, for
predict, test inputs x2. One-dimensional inputs may be plain numbers:

  x1: [0.0, 0.5, 1.0]
  y1: [0.1, 0.4, 0.2]
  x2: [0.25, 0.75]`,
	}
	cmd.PersistentFlags().StringVar(&opts.RunID, "run", "", "record under this run ID (default: new run)")

	cmd.AddCommand(newGPEvalCommand(opts, engine.FuncPredict,
		"Predictive mean and variance at the test inputs"))
	cmd.AddCommand(newGPEvalCommand(opts, engine.FuncLML,
		"Log marginal likelihood of the training data"))
	cmd.AddCommand(newGPFitCommand(opts))

	return cmd
}

func newGPEvalCommand(opts *GPOptions, function, short string) *cobra.Command {
	return &cobra.Command{
		Use:           function + " <specs-dir> <gp> <data-file>",
		Short:         short,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGPEval(opts, function, args[0], args[1], args[2], cmd)
		},
	}
}

// loadGP resolves the named gp and its data file, applying the configured
// jitter floor.
func loadGP(opts *GPOptions, f *OutputFormatter, specsDir, name, dataPath string) (ir.GPSpec, *GPData, error) {
	specs, err := loadSpecs(f, specsDir)
	if err != nil {
		return ir.GPSpec{}, nil, err
	}
	spec, ok := specs.GP(name)
	if !ok {
		return ir.GPSpec{}, nil, commandError(f, ErrCodeUnknownSpec, fmt.Sprintf("no gp named %q in %s", name, specsDir))
	}
	if spec.Jitter < opts.Config.Jitter {
		spec.Jitter = opts.Config.Jitter
	}
	d, err := LoadGPData(dataPath)
	if err != nil {
		return ir.GPSpec{}, nil, commandError(f, ErrCodeBadInput, err.Error())
	}
	return spec, d, nil
}

func runGPEval(opts *GPOptions, function, specsDir, name, dataPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spec, d, err := loadGP(opts, formatter, specsDir, name, dataPath)
	if err != nil {
		return err
	}
	req := engine.GPRequest{
		RunID:    opts.RunID,
		Spec:     spec,
		Function: function,
		X1:       d.X1,
		Y1:       d.Y1,
	}
	if function == engine.FuncPredict {
		req.X2 = d.X2
	}

	ctx := commandContext(cmd.Context())
	sess, err := openSession(ctx, opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := sess.engine.PredictGP(ctx, req)
	if err != nil {
		return evaluationError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return writeGPText(formatter.Writer, report, d)
}

func writeGPText(w io.Writer, r *engine.GPReport, d *GPData) error {
	ev := r.Evaluation
	fmt.Fprintf(w, "%s %s(%s) [run %s, seq %d]\n", ev.Spec.Name, ev.Function, ev.Spec.Family, r.RunID, ev.Seq)

	if r.LogMarginalLikelihood != nil {
		fmt.Fprintf(w, "  log marginal likelihood: %s\n", ir.FormatValue(*r.LogMarginalLikelihood))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  x2\tmean\tvariance")
	for i := range r.Mean {
		fmt.Fprintf(tw, "  %v\t%s\t%s\n", d.X2[i], ir.FormatValue(r.Mean[i]), ir.FormatValue(r.Variance[i]))
	}
	return tw.Flush()
}

// GPFitResult is the output of gp fit.
type GPFitResult struct {
	Name    string           `json:"name"`
	Initial gpkg.Hyperparams `json:"initial"`
	Fit     *gpkg.FitResult  `json:"fit"`
	LML     *engine.GPReport `json:"lml"`
}

func newGPFitCommand(opts *GPOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fit <specs-dir> <gp> <data-file>",
		Short: "Fit exp-quad hyperparameters by maximum a posteriori",
		Long: `Fit alpha, rho and sigma of an exp_quad gp to the training data.

The declared hyperparameters are the starting point. Priors are
rho ~ InvGamma(5, 5), alpha ~ Normal+(0, 1), sigma ~ Normal+(0, 1).
The log marginal likelihood at the fitted values is recorded.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGPFit(opts, args[0], args[1], args[2], cmd)
		},
	}
}

func runGPFit(opts *GPOptions, specsDir, name, dataPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spec, d, err := loadGP(opts, formatter, specsDir, name, dataPath)
	if err != nil {
		return err
	}
	if spec.Kernel != gpkg.KernelExpQuad || len(spec.Rho) != 1 {
		return commandError(formatter, ErrCodeUsage, fmt.Sprintf("gp %q: fit supports the %s kernel only", name, gpkg.KernelExpQuad))
	}

	start := gpkg.Hyperparams{Alpha: spec.Alpha, Rho: spec.Rho[0], Sigma: spec.Sigma}
	formatter.VerboseLog("Fitting %s from alpha=%g rho=%g sigma=%g", name, start.Alpha, start.Rho, start.Sigma)
	fit, err := gpkg.FitMAP(d.X1, d.Y1, start, gpkg.DefaultHyperprior, spec.Jitter)
	if err != nil {
		_ = formatter.Error(ErrCodeFitFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "fit failed", err)
	}

	fitted := spec
	fitted.Alpha = fit.Alpha
	fitted.Rho = []float64{fit.Rho}
	fitted.Sigma = fit.Sigma

	ctx := commandContext(cmd.Context())
	sess, err := openSession(ctx, opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := sess.engine.PredictGP(ctx, engine.GPRequest{
		RunID:    opts.RunID,
		Spec:     fitted,
		Function: engine.FuncLML,
		X1:       d.X1,
		Y1:       d.Y1,
	})
	if err != nil {
		return evaluationError(formatter, err)
	}

	result := GPFitResult{Name: name, Initial: start, Fit: fit, LML: report}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s fit [run %s, %d evaluations]\n", name, report.RunID, fit.Evaluations)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  \tinitial\tfitted")
	fmt.Fprintf(tw, "  alpha\t%g\t%g\n", start.Alpha, fit.Alpha)
	fmt.Fprintf(tw, "  rho\t%g\t%g\n", start.Rho, fit.Rho)
	fmt.Fprintf(tw, "  sigma\t%g\t%g\n", start.Sigma, fit.Sigma)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "  log posterior: %s\n", ir.FormatValue(fit.LogPosterior))
	fmt.Fprintf(w, "  log marginal likelihood: %s\n", ir.FormatValue(*report.LogMarginalLikelihood))
	return nil
}
