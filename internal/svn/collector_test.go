package svn

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/model"
)

const changelogTemplate = "http://viewer.local:10002/changelog/{repo}?cs={revision}"

const sampleLog = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="1203">
<author>alice</author>
<date>2020-01-31T18:04:11.528011Z</date>
<paths>
<path action="M" prop-mods="false" text-mods="true" kind="file">/trunk/src/Main.java</path>
<path action="A" prop-mods="false" text-mods="true" kind="file">/trunk/src/Util.java</path>
</paths>
<msg>Add util
with a second line</msg>
</logentry>
<logentry revision="1202">
<author>bob</author>
<date>2020-01-20T09:00:00.000000Z</date>
<paths>
<path action="M" kind="file">/trunk/README</path>
</paths>
<msg>docs</msg>
</logentry>
<logentry revision="1190">
<author>alice</author>
<date>2020-02-01T00:30:00.000000Z</date>
<paths>
<path action="D" kind="file">/trunk/old.txt</path>
</paths>
<msg>cleanup</msg>
</logentry>
</log>`

type recordedRun struct {
	name string
	args []string
}

func fakeRunner(out string, err error, calls *[]recordedRun) CommandRunner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedRun{name: name, args: args})
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}
}

func newTestCollector(t *testing.T, runner CommandRunner) *Collector {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := NewCollector(Options{ChangelogTemplate: changelogTemplate, Runner: runner}, logger)
	require.NoError(t, err)
	return c
}

func TestCollector_CollectCommits(t *testing.T) {
	var calls []recordedRun
	c := newTestCollector(t, fakeRunner(sampleLog, nil, &calls))

	commits, err := c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/work/goci", FrontEndRepo: "goci"})

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "svn", calls[0].name)
	assert.Equal(t, []string{"log", "--xml", "--verbose", "/work/goci"}, calls[0].args)

	require.Len(t, commits, 2)
	first := commits[0]
	assert.Equal(t, "1203", first.ID)
	assert.Equal(t, "31/01/2020", first.Date)
	assert.Equal(t, "alice", first.CommitterName)
	assert.Equal(t, "Add util\nwith a second line", first.CommitMessage)
	assert.Equal(t, 2, first.ChangedFileCount)
	assert.Zero(t, first.AdditionCount)
	assert.Equal(t, "http://viewer.local:10002/changelog/goci?cs=1203", first.LinkURL)
	assert.Equal(t, "1190", commits[1].ID, "svn order is preserved")
}

func TestCollector_CollectCommits_Window(t *testing.T) {
	var calls []recordedRun
	c := newTestCollector(t, fakeRunner(sampleLog, nil, &calls))
	window, err := model.ParseDateRange("01/01/2020", "31/01/2020")
	require.NoError(t, err)

	commits, err := c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/work/goci", FrontEndRepo: "goci", Window: window})

	require.NoError(t, err)
	assert.Equal(t, []string{"log", "--xml", "--verbose", "-r", "{2020-01-01}:{2020-02-01}", "/work/goci"}, calls[0].args)
	require.Len(t, commits, 1, "commits after the last day are dropped")
	assert.Equal(t, "1203", commits[0].ID)
}

func TestCollector_CollectCommits_Errors(t *testing.T) {
	t.Run("command failure propagates", func(t *testing.T) {
		var calls []recordedRun
		cmdErr := &custom_errors.VCSCommandError{Command: "svn log", Output: "E155007: not a working copy", Err: errors.New("exit status 1")}
		c := newTestCollector(t, fakeRunner("", cmdErr, &calls))

		commits, err := c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/nope", FrontEndRepo: "goci"})

		assert.Nil(t, commits)
		var vcsErr *custom_errors.VCSCommandError
		require.ErrorAs(t, err, &vcsErr)
		assert.Contains(t, vcsErr.Error(), "not a working copy")
	})

	t.Run("invalid xml", func(t *testing.T) {
		var calls []recordedRun
		c := newTestCollector(t, fakeRunner("<log><logentry", nil, &calls))

		_, err := c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/work", FrontEndRepo: "goci"})
		assert.Error(t, err)
	})

	t.Run("invalid entry date", func(t *testing.T) {
		var calls []recordedRun
		out := `<log><logentry revision="3"><author>alice</author><date>yesterday</date><msg>x</msg></logentry></log>`
		c := newTestCollector(t, fakeRunner(out, nil, &calls))

		_, err := c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/work", FrontEndRepo: "goci"})
		assert.ErrorIs(t, err, custom_errors.ErrIncompleteCommit)
	})

	t.Run("missing arguments", func(t *testing.T) {
		var calls []recordedRun
		c := newTestCollector(t, fakeRunner(sampleLog, nil, &calls))

		_, err := c.CollectCommits(context.Background(), Query{Path: "/work", FrontEndRepo: "goci"})
		assert.ErrorIs(t, err, custom_errors.ErrMissingAuthor)

		_, err = c.CollectCommits(context.Background(), Query{Author: "alice", Path: "/work"})
		assert.Error(t, err)
		assert.Empty(t, calls)
	})
}

func TestNewCollector_RequiresChangelogTemplate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	_, err := NewCollector(Options{}, logger)
	assert.Error(t, err)

	_, err = NewCollector(Options{ChangelogTemplate: "http://viewer/{repo}"}, logger)
	assert.Error(t, err)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, err := execRunner(context.Background(), "definitely-not-an-svn-binary-"+time.Now().Format("150405"), "log")

	var vcsErr *custom_errors.VCSCommandError
	require.ErrorAs(t, err, &vcsErr)
	assert.Contains(t, vcsErr.Command, "log")
}
