package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-evidence/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func mustCommit(t *testing.T, id string, at time.Time, name, message string, stats model.CommitStats, link string) model.Commit {
	t.Helper()
	c, err := model.NewCommit(id, at, name, message, stats, link)
	require.NoError(t, err)
	return c
}

func sampleCommits(t *testing.T) []model.Commit {
	// Newest first, as the provider lists them.
	return []model.Commit{
		mustCommit(t, "a1", time.Date(2021, 6, 15, 10, 0, 0, 0, time.UTC), "Alice", "fix bug\n\nwith, commas and \"quotes\"",
			model.CommitStats{Files: 3, Additions: 5, Deletions: 2, Total: 7}, "http://x/a1"),
		mustCommit(t, "b2", time.Date(2021, 6, 14, 9, 0, 0, 0, time.UTC), "Bob", "init",
			model.CommitStats{Files: 1, Additions: 1, Total: 1}, ""),
	}
}

func TestTarget_FileStem(t *testing.T) {
	git := Target{Source: model.SourceGit, Author: "alice@ebi.ac.uk", Owner: "EBISPOT", Repository: "goci"}
	assert.Equal(t, "alice@ebi.ac.uk_EBISPOT_goci_git_commits", git.FileStem())
	assert.Equal(t, "EBISPOT/goci", git.String())

	svn := Target{Source: model.SourceSVN, Author: "alice", Repository: "/home/alice/work/ontology-tools/"}
	assert.Equal(t, "alice_ontology-tools_svn_commits", svn.FileStem())
	owner, name := svn.Key()
	assert.Equal(t, "svn", owner)
	assert.Equal(t, "ontology-tools", name)

	odd := Target{Source: model.SourceGit, Author: "a b", Owner: "o:x", Repository: "r"}
	assert.Equal(t, "a-b_o-x_r_git_commits", odd.FileStem())
}

func TestCSVWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	w := NewCSVWriter(dir, testLogger())
	target := Target{Source: model.SourceGit, Author: "alice", Owner: "EBISPOT", Repository: "goci"}
	commits := sampleCommits(t)

	require.NoError(t, w.Write(context.Background(), target, commits))
	require.NoError(t, w.Write(context.Background(), target, commits[:1]))

	f, err := os.Open(w.Path(target))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4, "header once, then appended rows")
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"15/06/2021", "15/06/2021", "", "Code commit", "1 commit", "Alice",
		"fix bug\n\nwith, commas and \"quotes\"", "", "http://x/a1",
	}, rows[1])
	assert.Equal(t, []string{"14/06/2021", "14/06/2021", "", "Code commit", "1 commit", "Bob", "init", "", ""}, rows[2])
	assert.Equal(t, rows[1], rows[3])
}

func TestWriteCSV_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, false))
	assert.Empty(t, buf.String())

	require.NoError(t, WriteCSV(&buf, nil, true))
	assert.Equal(t, "Start Date,End Date,Work package,Evidence,Short Description,Person,Long description,File,Evidence URL\n", buf.String())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	target := Target{Source: model.SourceGit, Author: "alice", Owner: "o", Repository: "r"}
	commits := sampleCommits(t)

	require.NoError(t, WriteText(&buf, target, commits))

	want := "Commit evidence for alice in o/r\n" +
		"2 commit(s), oldest first\n" +
		"\n" +
		"14/06/2021  b2  Bob\n" +
		"    1 modified files, 1 total changes (1 additions and 0 deletions): init\n" +
		"\n" +
		"15/06/2021  a1  Alice\n" +
		"    3 modified files, 7 total changes (5 additions and 2 deletions): fix bug\n" +
		"    \n" +
		"    with, commas and \"quotes\"\n" +
		"    http://x/a1\n" +
		"\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "a1", commits[0].ID, "input order is untouched")
}

func TestTextWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewTextWriter(dir, testLogger())
	target := Target{Source: model.SourceSVN, Author: "alice", Repository: "/work/tools"}

	require.NoError(t, w.Write(context.Background(), target, sampleCommits(t)))
	require.NoError(t, w.Write(context.Background(), target, nil))

	data, err := os.ReadFile(filepath.Join(dir, "alice_tools_svn_commits.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Commit evidence for alice in svn/tools\n0 commit(s), oldest first\n\n", string(data), "each run replaces the log")
}
