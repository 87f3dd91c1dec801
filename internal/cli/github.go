// internal/cli/github.go
package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/github"
	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
	"commit-evidence/internal/runner"
)

type githubOptions struct {
	author   string
	owner    string
	repos    []string
	alias    string
	dateFrom string
	dateTo   string
	persist  bool
}

func newGithubCmd(root *rootOptions) *cobra.Command {
	o := &githubOptions{}
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Collect an author's commits from GitHub repositories",
		Example: `  commit-evidence github -a alice -o EBISPOT -r goci -u alice -t $TOKEN
  commit-evidence github -a alice -r EBISPOT/goci -r EBISPOT/zooma -f 01/01/2021 --date-to 31/12/2021`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, root)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.author, "author", "a", "", "login of the author whose commits are collected (required)")
	f.StringVarP(&o.owner, "owner", "o", "", "owner of repositories given by bare name")
	f.StringSliceVarP(&o.repos, "repo", "r", nil, "repository as name or owner/name; repeatable (required)")
	f.StringP("username", "u", "", "GitHub username for basic authentication (GITHUB_USERNAME)")
	f.StringP("auth-token", "t", "", "GitHub personal access token (GITHUB_TOKEN)")
	f.StringVarP(&o.alias, "fisheye-repo-name", "n", "", "changelog viewer repository name used for commit links")
	f.StringVarP(&o.dateFrom, "date-from", "f", "", "first day to collect, dd/mm/yyyy")
	f.StringVar(&o.dateTo, "date-to", "", "last day to collect, dd/mm/yyyy")
	f.String("api-url", github.DefaultBaseURL, "GitHub API root")
	f.Duration("timeout", 30*time.Second, "per-request timeout; 0 disables it")
	f.Int("page-size", 100, "commits requested per page (1-100)")
	addOutputFlags(f, &o.persist)

	return cmd
}

func (o *githubOptions) run(cmd *cobra.Command, root *rootOptions) error {
	cfg, logger, err := root.load(cmd)
	if err != nil {
		return err
	}

	if o.author == "" {
		return usageError(custom_errors.ErrMissingAuthor)
	}
	if len(o.repos) == 0 {
		return usageError(errors.New("at least one --repo is required"))
	}
	if err := cfg.ValidateGithub(); err != nil {
		return usageError(err)
	}
	window, err := model.ParseDateRange(o.dateFrom, o.dateTo)
	if err != nil {
		return usageError(err)
	}
	ids, err := runner.ParseRepoIdentifiers(o.repos, o.owner)
	if err != nil {
		return usageError(err)
	}
	if o.alias != "" && len(ids) > 1 {
		return usageError(errors.New("--fisheye-repo-name can only be used with a single --repo"))
	}

	client, err := github.NewClient(github.Options{
		BaseURL:           cfg.GithubAPIURL,
		Credentials:       github.Credentials{Username: cfg.GithubUsername, Token: cfg.GithubToken},
		Timeout:           cfg.RequestTimeout,
		PageSize:          cfg.PageSize,
		ChangelogTemplate: cfg.ChangelogURLTemplate,
	}, logger)
	if err != nil {
		return usageError(err)
	}

	jobs := make([]runner.Job, len(ids))
	for i, id := range ids {
		jobs[i] = runner.Job{
			Target: report.Target{Source: model.SourceGit, Author: o.author, Owner: id.Owner, Repository: id.Name},
			Collector: client.ForRepository(github.Query{
				Author:       o.author,
				Owner:        id.Owner,
				Repo:         id.Name,
				FrontEndRepo: o.alias,
				Window:       window,
			}),
		}
	}

	return collect(cmd, cfg, logger, o.persist, window, jobs)
}
