// internal/cli/collect.go
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"commit-evidence/internal/config"
	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
	"commit-evidence/internal/runner"
	"commit-evidence/internal/store"
)

// addOutputFlags registers the flags shared by the collecting commands.
func addOutputFlags(f *pflag.FlagSet, persist *bool) {
	f.String("output-dir", "output", "directory the CSV and text evidence files are written to")
	f.Int("concurrency", 1, "number of repositories collected in parallel")
	f.BoolVar(persist, "store", false, "also store the commits in the evidence database (DB_URL)")
	f.String("db-url", "", "Postgres connection URL used with --store")
	f.String("changelog-url", "", "changelog viewer URL template with {repo} and {revision} slots")
}

// collect runs jobs into the report writers (and the store when requested)
// and prints a per-target summary.
func collect(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, persist bool, window *model.DateRange, jobs []runner.Job) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	csvOut := report.NewCSVWriter(cfg.OutputDir, logger)
	sinks := []runner.Sink{csvOut, report.NewTextWriter(cfg.OutputDir, logger)}
	if persist {
		if err := cfg.ValidateStore(); err != nil {
			return usageError(err)
		}
		st, err := store.Open(ctx, cfg.DBURL, logger)
		if err != nil {
			return Wrap(ExitFailure, "evidence store unavailable", err)
		}
		defer st.Close()
		sinks = append(sinks, st)
	}

	if window != nil {
		fmt.Fprintf(out, "Collecting commits from %s...\n", window)
	} else {
		fmt.Fprintln(out, "Collecting commits...")
	}

	results, err := runner.New(logger, cfg.Concurrency, sinks...).Run(ctx, jobs)
	if err != nil {
		return collectionError(ctx, err)
	}

	for _, r := range results {
		fmt.Fprintf(out, "%s: %d commit(s) in %s -> %s\n",
			r.Target, r.Commits, r.Elapsed.Round(time.Millisecond), csvOut.Path(r.Target))
	}
	fmt.Fprintln(out, "done!")
	return nil
}
