package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/distlab/internal/ir"
	"github.com/roach88/distlab/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Filter store.Filter
}

// HistoryResult holds the history output. Exactly one of Runs and Records
// is set.
type HistoryResult struct {
	Runs    []ir.RunSummary `json:"runs,omitempty"`
	Records []ir.Record     `json:"records,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs and evaluations",
		Long: `List the runs recorded in a history database, or query its evaluations.

Without filters every run is summarised. Any filter switches to listing the
matching evaluations and their outcomes in seq order.

Examples:
  distlab history --db history.db
  distlab history --db history.db --run exp-1
  distlab history --db history.db --family pareto --status error --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter.RunID, "run", "", "only this run")
	cmd.Flags().StringVar(&opts.Filter.SpecName, "spec", "", "only this spec name")
	cmd.Flags().StringVar(&opts.Filter.Family, "family", "", "only this family")
	cmd.Flags().StringVar(&opts.Filter.Function, "function", "", "only this function")
	cmd.Flags().StringVar(&opts.Filter.Status, "status", "", "only this outcome status (ok|error)")
	cmd.Flags().IntVar(&opts.Filter.Limit, "limit", 0, "at most this many evaluations (0 = all)")

	return cmd
}

// openHistory opens an existing history database read for reporting.
func openHistory(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	path := opts.Config.DB
	if path == "" {
		return nil, commandError(f, ErrCodeUsage, "no history database: set --db or db in the config")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, commandError(f, ErrCodeStore, fmt.Sprintf("history database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, commandError(f, ErrCodeStore, fmt.Sprintf("failed to open history: %v", err))
	}
	return st, nil
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd.Context())

	st, err := openHistory(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	var result HistoryResult
	if opts.Filter == (store.Filter{}) {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		result.Runs = runs
	} else {
		records, err := st.Query(ctx, opts.Filter)
		if err != nil {
			return commandError(formatter, ErrCodeUsage, err.Error())
		}
		result.Records = records
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Runs != nil {
		return writeRunsText(formatter.Writer, result.Runs)
	}
	return writeRecordsText(formatter.Writer, result.Records)
}

func writeRunsText(w io.Writer, runs []ir.RunSummary) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tEVALUATIONS\tERRORS\tSEQ")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d-%d\n", r.RunID, r.Evaluations, r.Errors, r.FirstSeq, r.LastSeq)
	}
	return tw.Flush()
}

func writeRecordsText(w io.Writer, records []ir.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No matching evaluations.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tSPEC\tFAMILY\tFUNCTION\tSTATUS\tRESULT")
	for _, rec := range records {
		ev := rec.Evaluation
		status, detail := "pending", ""
		if out := rec.Outcome; out != nil {
			status = out.Status
			switch {
			case out.Status == ir.StatusError:
				detail = out.ErrorCode
			case len(out.Values) == 1:
				detail = ir.FormatValue(out.Values[0])
			default:
				detail = fmt.Sprintf("%d values", len(out.Values))
			}
			if out.Cached {
				detail += " (cached)"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.Seq, ev.RunID, ev.Spec.Name, ev.Spec.Family, ev.Function, status, detail)
	}
	return tw.Flush()
}
