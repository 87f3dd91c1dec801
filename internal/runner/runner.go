// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/model"
	"commit-evidence/internal/report"
)

// Collector gathers the commits of one target.
type Collector interface {
	Collect(ctx context.Context) ([]model.Commit, error)
}

// Sink receives the commits collected for a target.
type Sink interface {
	Write(ctx context.Context, t report.Target, commits []model.Commit) error
}

// Job pairs a collector with the target its output is reported under.
type Job struct {
	Target    report.Target
	Collector Collector
}

// Result summarises one finished job.
type Result struct {
	Target  report.Target
	Commits int
	Elapsed time.Duration
}

// Runner collects every job and hands the commits to all sinks.
type Runner struct {
	sinks       []Sink
	concurrency int
	logger      *slog.Logger
}

// New creates a Runner. A concurrency below one runs jobs sequentially.
func New(logger *slog.Logger, concurrency int, sinks ...Sink) *Runner {
	return &Runner{
		sinks:       sinks,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// Run executes jobs with bounded parallelism. The first failure cancels the
// remaining jobs and is returned; no sink sees a partial result for a
// failed job.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	r.logger.Info("Starting collection", "jobs", len(jobs), "concurrency", r.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	results := make([]Result, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.runJob(gctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Info("Collection finished", "jobs", len(jobs))
	return results, nil
}

func (r *Runner) runJob(ctx context.Context, job Job) (Result, error) {
	logger := r.logger.With("target", job.Target.String(), "source", job.Target.Source, "author", job.Target.Author)
	logger.Info("Collecting commits")
	start := time.Now()

	commits, err := job.Collector.Collect(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("collecting %s: %w", job.Target, err)
	}
	logger.Info("Collected commits", "count", len(commits))

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, job.Target, commits); err != nil {
			return Result{}, fmt.Errorf("writing %s: %w", job.Target, err)
		}
	}

	return Result{Target: job.Target, Commits: len(commits), Elapsed: time.Since(start)}, nil
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

// ParseRepoIdentifiers accepts "name" or "owner/name". A bare name takes
// defaultOwner, which must then be set.
func ParseRepoIdentifiers(repos []string, defaultOwner string) ([]RepoIdentifier, error) {
	identifiers := make([]RepoIdentifier, 0, len(repos))
	for _, r := range repos {
		parts := strings.Split(strings.TrimSpace(r), "/")
		switch {
		case len(parts) == 1 && parts[0] != "" && defaultOwner != "":
			identifiers = append(identifiers, RepoIdentifier{Owner: defaultOwner, Name: parts[0]})
		case len(parts) == 2 && parts[0] != "" && parts[1] != "":
			identifiers = append(identifiers, RepoIdentifier{Owner: parts[0], Name: parts[1]})
		default:
			return nil, &custom_errors.ErrInvalidRepoFormat{Repo: r}
		}
	}
	return identifiers, nil
}
