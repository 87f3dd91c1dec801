// internal/cli/root.go

// Package cli implements the commit-evidence command-line interface.
//
// The github and svn commands collect one author's commits and write them as
// CSV and text evidence files, optionally storing them in Postgres. The serve
// command exposes stored evidence over HTTP. Configuration comes from flags,
// the environment and an optional .env file (see internal/config).
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"commit-evidence/internal/config"
	"commit-evidence/internal/svn"
)

var version = "0.0.0-dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

type rootOptions struct {
	configFile string
	verbose    bool

	// svnRunner replaces the svn binary; nil runs the real command.
	svnRunner svn.CommandRunner
}

// NewRootCmd constructs the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-evidence",
		Short: "Collect an author's commits as timesheet evidence",
		Long: `commit-evidence collects the commits of one author from GitHub repositories or
Subversion checkouts over an optional date range and writes them as a CSV
calendar and a chronological text log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "read configuration from this file instead of ./.env")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(newGithubCmd(opts))
	cmd.AddCommand(newSvnCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of commit-evidence",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit-evidence version %s\n", version)
		},
	})

	return cmd
}

// load resolves configuration for cmd and builds the logger it runs with.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return nil, nil, usageError(err)
	}

	level := cfg.SlogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogFormat, level)
	logger.Debug("Configuration loaded", "command", cmd.Name(), "output_dir", cfg.OutputDir)
	return cfg, logger, nil
}
