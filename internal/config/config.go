// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyLogLevel             = "LOG_LEVEL"
	KeyLogFormat            = "LOG_FORMAT"
	KeyGithubAPIURL         = "GITHUB_API_URL"
	KeyGithubUsername       = "GITHUB_USERNAME"
	KeyGithubToken          = "GITHUB_TOKEN"
	KeyChangelogURLTemplate = "CHANGELOG_URL_TEMPLATE"
	KeyOutputDir            = "OUTPUT_DIR"
	KeyRequestTimeout       = "REQUEST_TIMEOUT"
	KeyPageSize             = "PAGE_SIZE"
	KeyConcurrency          = "CONCURRENCY"
	KeySvnBinary            = "SVN_BINARY"
	KeyDBURL                = "DB_URL"
	KeyListenAddr           = "LISTEN_ADDR"
)

var (
	ErrMissingCredentials       = errors.New("GITHUB_USERNAME and GITHUB_TOKEN are required configuration fields")
	ErrMissingChangelogTemplate = errors.New("CHANGELOG_URL_TEMPLATE is required to link svn revisions")
	ErrMissingDBURL             = errors.New("DB_URL is a required configuration field")
	ErrInvalidPageSize          = errors.New("PAGE_SIZE must be between 1 and 100")
	ErrInvalidConcurrency       = errors.New("CONCURRENCY must be at least 1")
	ErrInvalidTimeout           = errors.New("REQUEST_TIMEOUT must not be negative")
	ErrInvalidLogLevel          = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("LOG_FORMAT must be text or json")
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	LogFormat            string        `mapstructure:"LOG_FORMAT"`
	GithubAPIURL         string        `mapstructure:"GITHUB_API_URL"`
	GithubUsername       string        `mapstructure:"GITHUB_USERNAME"`
	GithubToken          string        `mapstructure:"GITHUB_TOKEN"`
	ChangelogURLTemplate string        `mapstructure:"CHANGELOG_URL_TEMPLATE"`
	OutputDir            string        `mapstructure:"OUTPUT_DIR"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	PageSize             int           `mapstructure:"PAGE_SIZE"`
	Concurrency          int           `mapstructure:"CONCURRENCY"`
	SvnBinary            string        `mapstructure:"SVN_BINARY"`
	DBURL                string        `mapstructure:"DB_URL"`
	ListenAddr           string        `mapstructure:"LISTEN_ADDR"`
}

// FlagKeys maps command-line flag names onto the configuration keys they
// override. Flags missing from the set passed to Load are skipped.
var FlagKeys = map[string]string{
	"log-level":     KeyLogLevel,
	"log-format":    KeyLogFormat,
	"api-url":       KeyGithubAPIURL,
	"username":      KeyGithubUsername,
	"auth-token":    KeyGithubToken,
	"changelog-url": KeyChangelogURLTemplate,
	"output-dir":    KeyOutputDir,
	"timeout":       KeyRequestTimeout,
	"page-size":     KeyPageSize,
	"concurrency":   KeyConcurrency,
	"svn-binary":    KeySvnBinary,
	"db-url":        KeyDBURL,
	"listen":        KeyListenAddr,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyGithubAPIURL, "https://api.github.com/")
	v.SetDefault(KeyOutputDir, "output")
	v.SetDefault(KeyRequestTimeout, "30s")
	v.SetDefault(KeyPageSize, 100)
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeySvnBinary, "svn")
	v.SetDefault(KeyListenAddr, ":8080")

	// Registered so Unmarshal sees values that only come from the environment.
	for _, key := range []string{KeyGithubUsername, KeyGithubToken, KeyChangelogURLTemplate, KeyDBURL} {
		v.SetDefault(key, "")
	}
}

// Load reads configuration from defaults, the config file (or an optional
// .env in the working directory), the environment and flags, each layer
// overriding the previous one.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // Ignore error if file not found
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.validateCommon(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateCommon() error {
	if _, ok := parseLevel(c.LogLevel); !ok {
		return ErrInvalidLogLevel
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	return nil
}

// ValidateGithub checks the settings needed to collect from the hosted git service.
func (c *Config) ValidateGithub() error {
	if c.GithubUsername == "" || c.GithubToken == "" {
		return ErrMissingCredentials
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return ErrInvalidPageSize
	}
	if c.RequestTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// ValidateSvn checks the settings needed to collect from a subversion checkout.
func (c *Config) ValidateSvn() error {
	if c.ChangelogURLTemplate == "" {
		return ErrMissingChangelogTemplate
	}
	return nil
}

// ValidateStore checks the settings needed to reach the evidence database.
func (c *Config) ValidateStore() error {
	if c.DBURL == "" {
		return ErrMissingDBURL
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
