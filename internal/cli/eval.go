package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/distlab/internal/engine"
	"github.com/roach88/distlab/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	RunID string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <specs-dir> <spec> <function> [points...]",
		Short: "Evaluate a distribution function",
		Long: `Evaluate one function of a declared distribution and record it.

Functions: ` + strings.Join(engine.Functions(), ", ") + `.
Pointwise functions take one or more points; mean and variance take none.
Points accept inf, -inf and nan. Put -- before the points when the first
one is negative. Random draws are taken with the sample command.

Examples:
  distlab eval ./specs income lpdf 0.5 1 2
  distlab eval ./specs coin lpmf 0 1 2
  distlab eval ./specs waiting_time cdf -- -1 0 10
  distlab eval ./specs income mean --db history.db --run exp-1`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1], args[2], args[3:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "record under this run ID (default: new run)")

	return cmd
}

func runEval(opts *EvalOptions, specsDir, specName, function string, rawPoints []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if function == engine.FuncRNG {
		return commandError(formatter, ErrCodeUsage, "rng is evaluated with the sample command")
	}
	points, err := parsePoints(rawPoints)
	if err != nil {
		return commandError(formatter, ErrCodeBadInput, err.Error())
	}

	specs, err := loadSpecs(formatter, specsDir)
	if err != nil {
		return err
	}
	spec, ok := specs.Dist(specName)
	if !ok {
		return commandError(formatter, ErrCodeUnknownSpec, fmt.Sprintf("no dist named %q in %s", specName, specsDir))
	}

	ctx := commandContext(cmd.Context())
	sess, err := openSession(ctx, opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := sess.engine.Evaluate(ctx, engine.Request{
		RunID:    opts.RunID,
		Spec:     spec,
		Function: function,
		Points:   points,
	})
	if err != nil {
		return evaluationError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return writeReportText(formatter.Writer, report)
}

// parsePoints parses command-line points, accepting inf, -inf and nan.
func parsePoints(raw []string) ([]float64, error) {
	points := make([]float64, len(raw))
	for i, s := range raw {
		v, err := ir.ParseValue(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("point %d: %v", i, err)
		}
		points[i] = v
	}
	return points, nil
}

// writeReportText prints an evaluation as "point  value" rows, or a single
// value for functions that take no points.
func writeReportText(w io.Writer, r *engine.Report) error {
	ev := r.Evaluation
	cached := ""
	if r.Outcome.Cached {
		cached = ", cached"
	}
	fmt.Fprintf(w, "%s %s(%s) [run %s, seq %d%s]\n",
		ev.Spec.Name, ev.Function, ev.Spec.Family, r.RunID, ev.Seq, cached)

	if len(ev.Points) == 0 {
		for _, v := range r.Outcome.Values {
			fmt.Fprintf(w, "  %s\n", ir.FormatValue(v))
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  point\tvalue")
	for i, x := range ev.Points {
		fmt.Fprintf(tw, "  %s\t%s\n", ir.FormatValue(x), ir.FormatValue(r.Outcome.Values[i]))
	}
	return tw.Flush()
}
