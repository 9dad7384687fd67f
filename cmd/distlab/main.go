// Command distlab evaluates probability distributions and Gaussian process
// regressions declared in CUE and records every evaluation in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/distlab/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
