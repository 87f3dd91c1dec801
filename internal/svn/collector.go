// internal/svn/collector.go

// Package svn collects commits from a local Subversion checkout by reading
// the XML output of `svn log`.
package svn

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/model"
	"commit-evidence/internal/urltemplate"
)

const (
	defaultBinary  = "svn"
	svnRevisionDay = "2006-01-02"
)

// CommandRunner executes a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures a Collector.
type Options struct {
	Binary string
	// ChangelogTemplate builds commit links; it must declare {repo} and {revision}.
	ChangelogTemplate string
	Runner            CommandRunner
}

// Query selects the commits of one author in one checkout.
type Query struct {
	Author       string
	Path         string
	FrontEndRepo string
	Window       *model.DateRange
}

// Collector reads commit history through the svn command line client.
type Collector struct {
	binary    string
	changelog urltemplate.Template
	run       CommandRunner
	logger    *slog.Logger
}

// NewCollector creates a Collector.
func NewCollector(opts Options, logger *slog.Logger) (*Collector, error) {
	changelog := urltemplate.Parse(opts.ChangelogTemplate)
	if !changelog.Has("repo") || !changelog.Has("revision") {
		return nil, fmt.Errorf("changelog template %q must contain {repo} and {revision}", opts.ChangelogTemplate)
	}
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.Runner == nil {
		opts.Runner = execRunner
	}
	return &Collector{binary: opts.Binary, changelog: changelog, run: opts.Runner, logger: logger}, nil
}

type logXML struct {
	Entries []logEntry `xml:"logentry"`
}

type logEntry struct {
	Revision string   `xml:"revision,attr"`
	Author   string   `xml:"author"`
	Date     string   `xml:"date"`
	Paths    []string `xml:"paths>path"`
	Msg      string   `xml:"msg"`
}

// CollectCommits returns the author's commits in the order svn lists them.
func (c *Collector) CollectCommits(ctx context.Context, q Query) ([]model.Commit, error) {
	if q.Author == "" {
		return nil, custom_errors.ErrMissingAuthor
	}
	if q.Path == "" || q.FrontEndRepo == "" {
		return nil, errors.New("svn: checkout path and front-end repository name are required")
	}
	logger := c.logger.With("path", q.Path, "author", q.Author)

	args := []string{"log", "--xml", "--verbose"}
	if q.Window != nil {
		// The upper bound is exclusive in svn date revisions, so ask for the next day.
		args = append(args, "-r", fmt.Sprintf("{%s}:{%s}",
			q.Window.From.Format(svnRevisionDay), q.Window.To.AddDate(0, 0, 1).Format(svnRevisionDay)))
	}
	args = append(args, q.Path)

	logger.Debug("Running svn log", "args", strings.Join(args, " "))
	out, err := c.run(ctx, c.binary, args...)
	if err != nil {
		return nil, err
	}

	var history logXML
	if err := xml.Unmarshal(out, &history); err != nil {
		return nil, fmt.Errorf("failed to parse svn log output: %w", err)
	}

	var commits []model.Commit
	for _, e := range history.Entries {
		if e.Author != q.Author {
			continue
		}
		commit, err := c.toInternalCommit(e, q.FrontEndRepo)
		if err != nil {
			return nil, err
		}
		if q.Window != nil && !q.Window.Contains(commit.CommittedAt) {
			continue
		}
		commits = append(commits, commit)
	}

	logger.Info("Collected commits", "count", len(commits), "entries", len(history.Entries))
	return commits, nil
}

func (c *Collector) toInternalCommit(e logEntry, frontEndRepo string) (model.Commit, error) {
	date, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(e.Date))
	if err != nil {
		return model.Commit{}, fmt.Errorf("%w: revision %s has invalid date %q", custom_errors.ErrIncompleteCommit, e.Revision, e.Date)
	}
	link, err := c.changelog.ChangelogURL(frontEndRepo, e.Revision)
	if err != nil {
		return model.Commit{}, err
	}
	stats := model.CommitStats{Files: len(e.Paths)}
	return model.NewCommit(e.Revision, date, e.Author, e.Msg, stats, link)
}

// CheckoutCollector binds a Collector to one Query.
type CheckoutCollector struct {
	collector *Collector
	query     Query
}

// ForCheckout returns a collector for q.
func (c *Collector) ForCheckout(q Query) *CheckoutCollector {
	return &CheckoutCollector{collector: c, query: q}
}

// Collect runs the query.
func (cc *CheckoutCollector) Collect(ctx context.Context) ([]model.Commit, error) {
	return cc.collector.CollectCommits(ctx, cc.query)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, &custom_errors.VCSCommandError{
			Command: name + " " + strings.Join(args, " "),
			Output:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return out, nil
}
