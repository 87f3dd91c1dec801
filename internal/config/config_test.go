// internal/config/config_test.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with every known key unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range FlagKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "https://api.github.com/", cfg.GithubAPIURL)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "svn", cfg.SvnBinary)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Empty(t, cfg.GithubUsername, "no built-in credentials")
	assert.Empty(t, cfg.GithubToken, "no built-in credentials")

	assert.ErrorIs(t, cfg.ValidateGithub(), ErrMissingCredentials)
	assert.ErrorIs(t, cfg.ValidateSvn(), ErrMissingChangelogTemplate)
	assert.ErrorIs(t, cfg.ValidateStore(), ErrMissingDBURL)
}

func TestLoad_EnvironmentAndFlags(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_USERNAME", "env-user")
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("username", "", "")
	flags.String("output-dir", "output", "")
	flags.Int("page-size", 100, "")
	require.NoError(t, flags.Parse([]string{"--username", "flag-user", "--page-size", "50"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag-user", cfg.GithubUsername, "flag beats environment")
	assert.Equal(t, "env-token", cfg.GithubToken)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.NoError(t, cfg.ValidateGithub())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("DB_URL=postgres://localhost/evidence\nCHANGELOG_URL_TEMPLATE=https://fisheye.example/changelog/{repo}?cs={revision}\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/evidence", cfg.DBURL)
	assert.NoError(t, cfg.ValidateStore())
	assert.NoError(t, cfg.ValidateSvn())
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.env"), nil)
	assert.Error(t, err)

	path := filepath.Join(dir, "evidence.env")
	require.NoError(t, os.WriteFile(path, []byte("OUTPUT_DIR=reports\nCONCURRENCY=4\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "verbose"}, wantErr: ErrInvalidLogLevel},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: ErrInvalidLogFormat},
		{name: "zero concurrency", env: map[string]string{"CONCURRENCY": "0"}, wantErr: ErrInvalidConcurrency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load("", nil)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestConfig_ValidateGithub(t *testing.T) {
	base := Config{GithubUsername: "u", GithubToken: "t", PageSize: 100, RequestTimeout: time.Second}
	require.NoError(t, base.ValidateGithub())

	tooBig := base
	tooBig.PageSize = 101
	assert.ErrorIs(t, tooBig.ValidateGithub(), ErrInvalidPageSize)

	negative := base
	negative.RequestTimeout = -time.Second
	assert.ErrorIs(t, negative.ValidateGithub(), ErrInvalidTimeout)

	disabled := base
	disabled.RequestTimeout = 0
	assert.NoError(t, disabled.ValidateGithub(), "zero disables the timeout")
}
