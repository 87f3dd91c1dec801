// internal/github/commits.go
package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/go-github/v62/github"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/model"
)

// Query selects the commits of one author in one repository.
type Query struct {
	Author string
	Owner  string
	Repo   string
	// FrontEndRepo is the changelog viewer's name for the repository. When
	// set, commit links point at the viewer instead of GitHub.
	FrontEndRepo string
	Window       *model.DateRange
}

// Validate checks that the query names an author and a repository.
func (q Query) Validate() error {
	switch {
	case q.Author == "":
		return custom_errors.ErrMissingAuthor
	case q.Owner == "" || q.Repo == "":
		return &custom_errors.ErrInvalidRepoFormat{Repo: q.Owner + "/" + q.Repo}
	}
	return nil
}

// CollectCommits returns every commit matching q, enriched with change
// statistics, in the order the API lists them. Any failed request aborts the
// whole collection and no commits are returned.
func (c *Client) CollectCommits(ctx context.Context, q Query) ([]model.Commit, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	logger := c.logger.With("owner", q.Owner, "repo", q.Repo, "author", q.Author)

	tmpl, err := c.RepositoryTemplate(ctx)
	if err != nil {
		return nil, err
	}
	repoURL, err := tmpl.RepositoryURL(q.Owner, q.Repo)
	if err != nil {
		return nil, err
	}

	next := repoURL + "/commits?" + c.listParams(q).Encode()
	visited := make(map[string]bool)
	var allCommits []model.Commit

	for page := 1; next != ""; page++ {
		if visited[next] {
			return nil, fmt.Errorf("%w: %s", custom_errors.ErrPaginationLoop, next)
		}
		visited[next] = true

		logger.Debug("Fetching commits page", "page", page)
		var summaries []*github.RepositoryCommit
		header, err := c.fetch(ctx, next, &summaries)
		if err != nil {
			return nil, err
		}
		next, err = NextPageURL(header)
		if err != nil {
			return nil, err
		}

		for _, s := range summaries {
			commit, err := c.enrich(ctx, s, q.FrontEndRepo)
			if err != nil {
				return nil, err
			}
			allCommits = append(allCommits, commit)
		}
		logger.Debug("Commits page collected", "page", page, "count", len(summaries))
	}

	logger.Info("Collected commits", "count", len(allCommits))
	return allCommits, nil
}

func (c *Client) listParams(q Query) url.Values {
	params := url.Values{}
	params.Set("author", q.Author)
	if q.Window != nil {
		params.Set("since", q.Window.Since())
		params.Set("until", q.Window.Until())
	}
	params.Set("per_page", strconv.Itoa(c.pageSize))
	return params
}

// enrich fetches the detail resource of one listed commit and maps it to the
// internal model.
func (c *Client) enrich(ctx context.Context, summary *github.RepositoryCommit, frontEndRepo string) (model.Commit, error) {
	if summary.GetSHA() == "" || summary.GetURL() == "" {
		return model.Commit{}, fmt.Errorf("%w: commit summary without sha or url", custom_errors.ErrIncompleteCommit)
	}

	var detail github.RepositoryCommit
	if _, err := c.fetch(ctx, summary.GetURL(), &detail); err != nil {
		return model.Commit{}, err
	}

	link, err := c.commitLink(summary, &detail, frontEndRepo)
	if err != nil {
		return model.Commit{}, err
	}
	return toInternalCommit(summary, &detail, link)
}

func (c *Client) commitLink(summary, detail *github.RepositoryCommit, frontEndRepo string) (string, error) {
	if frontEndRepo != "" && !c.changelog.IsZero() {
		return c.changelog.ChangelogURL(frontEndRepo, summary.GetSHA())
	}
	return firstNonEmpty(detail.GetHTMLURL(), summary.GetHTMLURL()), nil
}

// toInternalCommit translates a listed commit and its detail into our internal model.Commit.
func toInternalCommit(summary, detail *github.RepositoryCommit, link string) (model.Commit, error) {
	meta := detail.GetCommit()
	if meta == nil {
		meta = summary.GetCommit()
	}
	committer := meta.GetCommitter()
	date := committer.GetDate().Time
	if date.IsZero() {
		date = meta.GetAuthor().GetDate().Time
	}

	stats := model.CommitStats{
		Files:     len(detail.Files),
		Additions: detail.GetStats().GetAdditions(),
		Deletions: detail.GetStats().GetDeletions(),
		Total:     detail.GetStats().GetTotal(),
	}

	message := firstNonEmpty(meta.GetMessage(), summary.GetCommit().GetMessage())
	name := firstNonEmpty(committer.GetName(), summary.GetCommit().GetCommitter().GetName())

	return model.NewCommit(summary.GetSHA(), date, name, message, stats, link)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RepoCollector binds a Client to one Query.
type RepoCollector struct {
	client *Client
	query  Query
}

// ForRepository returns a collector for q.
func (c *Client) ForRepository(q Query) *RepoCollector {
	return &RepoCollector{client: c, query: q}
}

// Collect runs the query.
func (r *RepoCollector) Collect(ctx context.Context) ([]model.Commit, error) {
	return r.client.CollectCommits(ctx, r.query)
}
