// internal/report/report.go

// Package report writes collected commits as evidence files: a CSV calendar
// for timesheet tools and a plain-text chronological log.
package report

import (
	"path/filepath"
	"regexp"
	"strings"

	"commit-evidence/internal/model"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._@+-]+`)

// Target identifies the run a set of commits belongs to.
type Target struct {
	Source model.Source
	Author string
	// Owner is empty for svn checkouts.
	Owner string
	// Repository is the repository name, or the checkout path for svn.
	Repository string
}

// RepositoryName returns the last path element of the repository.
func (t Target) RepositoryName() string {
	return filepath.Base(strings.TrimRight(t.Repository, `/\`))
}

// Key returns the owner/name identity used by the evidence store.
func (t Target) Key() (owner, name string) {
	if t.Source == model.SourceSVN {
		return string(model.SourceSVN), t.RepositoryName()
	}
	return t.Owner, t.Repository
}

// FileStem returns the base file name shared by all reports of the target,
// e.g. "alice_EBISPOT_goci_git_commits".
func (t Target) FileStem() string {
	parts := []string{t.Author}
	if t.Source == model.SourceSVN {
		parts = append(parts, t.RepositoryName())
	} else {
		parts = append(parts, t.Owner, t.Repository)
	}
	parts = append(parts, string(t.Source), "commits")

	for i, p := range parts {
		parts[i] = unsafeFileChars.ReplaceAllString(p, "-")
	}
	return strings.Join(parts, "_")
}

// String describes the target for logs.
func (t Target) String() string {
	owner, name := t.Key()
	return owner + "/" + name
}
