// internal/cli/svn.go
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
	"commit-evidence/internal/runner"
	"commit-evidence/internal/svn"
)

type svnOptions struct {
	author   string
	path     string
	alias    string
	dateFrom string
	dateTo   string
	persist  bool
}

func newSvnCmd(root *rootOptions) *cobra.Command {
	o := &svnOptions{}
	cmd := &cobra.Command{
		Use:     "svn",
		Short:   "Collect an author's commits from a Subversion checkout",
		Example: `  commit-evidence svn -a alice -r ~/work/ontology-tools -n ONTOLOGY -f 01/01/2021 -t 31/12/2021`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, root)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.author, "author", "a", "", "svn username of the author (required)")
	f.StringVarP(&o.path, "repo", "r", "", "local path of the checkout (required)")
	f.StringVarP(&o.alias, "fisheye-repo-name", "n", "", "changelog viewer repository name (required)")
	f.StringVarP(&o.dateFrom, "date-from", "f", "", "first day to collect, dd/mm/yyyy")
	f.StringVarP(&o.dateTo, "date-to", "t", "", "last day to collect, dd/mm/yyyy")
	f.String("svn-binary", "svn", "svn command line client")
	addOutputFlags(f, &o.persist)

	return cmd
}

func (o *svnOptions) run(cmd *cobra.Command, root *rootOptions) error {
	cfg, logger, err := root.load(cmd)
	if err != nil {
		return err
	}

	if o.author == "" {
		return usageError(custom_errors.ErrMissingAuthor)
	}
	if o.path == "" || o.alias == "" {
		return usageError(errors.New("--repo and --fisheye-repo-name are required"))
	}
	if err := cfg.ValidateSvn(); err != nil {
		return usageError(err)
	}
	window, err := model.ParseDateRange(o.dateFrom, o.dateTo)
	if err != nil {
		return usageError(err)
	}

	collector, err := svn.NewCollector(svn.Options{
		Binary:            cfg.SvnBinary,
		ChangelogTemplate: cfg.ChangelogURLTemplate,
		Runner:            root.svnRunner,
	}, logger)
	if err != nil {
		return usageError(err)
	}

	job := runner.Job{
		Target: report.Target{Source: model.SourceSVN, Author: o.author, Repository: o.path},
		Collector: collector.ForCheckout(svn.Query{
			Author:       o.author,
			Path:         o.path,
			FrontEndRepo: o.alias,
			Window:       window,
		}),
	}
	return collect(cmd, cfg, logger, o.persist, window, []runner.Job{job})
}
