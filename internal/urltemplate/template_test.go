package urltemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "commit-evidence/internal/errors"
)

func TestTemplate_RepositoryURL(t *testing.T) {
	tmpl := Parse("https://api.github.com/repos/{owner}/{repo}")

	u, err := tmpl.RepositoryURL("EBISPOT", "goci")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/repos/EBISPOT/goci", u)

	t.Run("values are path escaped", func(t *testing.T) {
		u, err := tmpl.RepositoryURL("some org", "a/b")
		require.NoError(t, err)
		assert.Equal(t, "https://api.github.com/repos/some%20org/a%2Fb", u)
	})

	t.Run("missing value fails instead of leaving the placeholder", func(t *testing.T) {
		_, err := tmpl.RepositoryURL("EBISPOT", "")
		var slotErr *custom_errors.TemplateSlotError
		require.ErrorAs(t, err, &slotErr)
		assert.Equal(t, "repo", slotErr.Slot)
	})

	t.Run("template without a required slot fails", func(t *testing.T) {
		_, err := Parse("https://api.example.com/repos/{owner}").RepositoryURL("EBISPOT", "goci")
		var slotErr *custom_errors.TemplateSlotError
		require.ErrorAs(t, err, &slotErr)
		assert.Equal(t, "repo", slotErr.Slot)
	})
}

func TestTemplate_Expand(t *testing.T) {
	tmpl := Parse("http://viewer.local/changelog/{repo}?cs={revision}&again={repo}")
	assert.True(t, tmpl.Has("repo"))
	assert.True(t, tmpl.Has("revision"))
	assert.False(t, tmpl.Has("owner"))

	u, err := tmpl.ChangelogURL("goci", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "http://viewer.local/changelog/goci?cs=abc123&again=goci", u)

	plain := Parse("http://viewer.local/")
	u, err = plain.Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://viewer.local/", u)
	assert.False(t, plain.IsZero())
	assert.True(t, Parse("").IsZero())
}
