// internal/model/models.go
package model

import (
	"fmt"
	"time"

	custom_errors "commit-evidence/internal/errors"
)

const (
	// DisplayDateLayout is the day/month/year format used in reports and on the command line.
	DisplayDateLayout = "02/01/2006"
	// FilterTimeLayout is the ISO 8601 UTC format the provider expects for since/until.
	FilterTimeLayout = "2006-01-02T15:04:05Z"

	// ShortExplanation is the one-line summary attached to every commit.
	ShortExplanation = "1 commit"
)

// Source identifies where a commit was collected from.
type Source string

const (
	SourceGit Source = "git"
	SourceSVN Source = "svn"
)

// Commit is the normalized record for one revision. It is built once by a
// collector and passed around by value; nothing modifies it afterwards.
type Commit struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	CommittedAt      time.Time `json:"committed_at"`
	CommitterName    string    `json:"committer_name"`
	CommitMessage    string    `json:"commit_message"`
	ChangedFileCount int       `json:"changed_file_count"`
	AdditionCount    int       `json:"addition_count"`
	DeletionCount    int       `json:"deletion_count"`
	ShortExplanation string    `json:"short_explanation"`
	LongExplanation  string    `json:"long_explanation"`
	LinkURL          string    `json:"link_url"`
}

// CommitStats holds the change counters of a commit.
type CommitStats struct {
	Files     int
	Additions int
	Deletions int
	Total     int
}

// NewCommit builds a Commit, deriving the display date and both explanations.
func NewCommit(id string, committedAt time.Time, committer, message string, stats CommitStats, link string) (Commit, error) {
	if id == "" {
		return Commit{}, fmt.Errorf("%w: empty revision id", custom_errors.ErrIncompleteCommit)
	}
	if committedAt.IsZero() {
		return Commit{}, fmt.Errorf("%w: commit %s has no date", custom_errors.ErrIncompleteCommit, id)
	}
	stats = clampStats(stats)

	return Commit{
		ID:               id,
		Date:             committedAt.UTC().Format(DisplayDateLayout),
		CommittedAt:      committedAt.UTC(),
		CommitterName:    committer,
		CommitMessage:    message,
		ChangedFileCount: stats.Files,
		AdditionCount:    stats.Additions,
		DeletionCount:    stats.Deletions,
		ShortExplanation: ShortExplanation,
		LongExplanation:  LongExplanation(stats, message),
		LinkURL:          link,
	}, nil
}

// LongExplanation renders the sentence used by the text report.
func LongExplanation(stats CommitStats, message string) string {
	return fmt.Sprintf("%d modified files, %d total changes (%d additions and %d deletions): %s",
		stats.Files, stats.Total, stats.Additions, stats.Deletions, message)
}

func clampStats(s CommitStats) CommitStats {
	s.Files = max(s.Files, 0)
	s.Additions = max(s.Additions, 0)
	s.Deletions = max(s.Deletions, 0)
	s.Total = max(s.Total, 0)
	return s
}
