package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/distlab/internal/engine"
	"github.com/roach88/distlab/internal/ir"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	RunID string // optional - specific run only
}

// ReplaySummary holds the replay results of every requested run.
type ReplaySummary struct {
	Runs             []*engine.ReplayResult `json:"runs"`
	TotalRuns        int                    `json:"total_runs"`
	AllDeterministic bool                   `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompute recorded runs and verify determinism",
		Long: `Recompute every recorded evaluation and compare it with its stored outcome.

Values must match bit for bit, including random draws, which are
reproduced from their recorded seed. The history is only read.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  distlab replay --db history.db
  distlab replay --db history.db --run exp-1
  distlab replay --db history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay this run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd.Context())

	st, err := openHistory(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := engine.Resume(ctx, st, engine.WithLogger(newLogger(opts.RootOptions, formatter)))
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	runIDs := []string{opts.RunID}
	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		runIDs = runIDs[:0]
		for _, r := range runs {
			runIDs = append(runIDs, r.RunID)
		}
	}

	summary := ReplaySummary{Runs: []*engine.ReplayResult{}, AllDeterministic: true}
	for _, runID := range runIDs {
		formatter.VerboseLog("Replaying run %s", runID)
		res, err := eng.Replay(ctx, runID)
		if errors.Is(err, engine.ErrRunNotFound) {
			return commandError(formatter, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", runID))
		}
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		summary.Runs = append(summary.Runs, res)
		summary.AllDeterministic = summary.AllDeterministic && res.Deterministic
	}
	summary.TotalRuns = len(summary.Runs)

	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: summary}
		if !summary.AllDeterministic {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeDeterminism, Message: "replay produced different outcomes"}
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}
	} else {
		writeReplayText(formatter.Writer, summary)
	}

	if !summary.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func writeReplayText(w io.Writer, summary ReplaySummary) {
	if summary.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range summary.Runs {
		mark := "✓"
		if !r.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s: %d evaluation(s), %d incomplete, %d skipped, %d mismatch(es)\n",
			mark, r.RunID, r.Evaluations, r.Incomplete, r.Skipped, len(r.Mismatches))
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "    seq %d %s: stored %s %s, replayed %s %s\n",
				m.Seq, m.Function, m.StoredStatus, formatValues(m.Stored), m.ReplayedStatus, formatValues(m.Replayed))
		}
	}
	fmt.Fprintln(w)
	if summary.AllDeterministic {
		fmt.Fprintf(w, "✓ All %d run(s) deterministic\n", summary.TotalRuns)
	} else {
		fmt.Fprintln(w, "✗ Determinism verification failed")
	}
}

// formatValues renders a short value list, eliding long ones.
func formatValues(v ir.Values) string {
	const maxShown = 4
	if len(v) > maxShown {
		return fmt.Sprintf("[%d values]", len(v))
	}
	s := "["
	for i, x := range v {
		if i > 0 {
			s += " "
		}
		s += ir.FormatValue(x)
	}
	return s + "]"
}
