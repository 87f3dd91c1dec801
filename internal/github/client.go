// internal/github/client.go
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	custom_errors "commit-evidence/internal/errors"
	"commit-evidence/internal/urltemplate"
)

const (
	// DefaultBaseURL is the public GitHub API root.
	DefaultBaseURL  = "https://api.github.com/"
	defaultPageSize = 100
	maxPageSize     = 100
)

// Credentials are sent as HTTP basic auth on every request.
type Credentials struct {
	Username string
	Token    string
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Credentials Credentials
	// Timeout bounds each request; zero disables it.
	Timeout  time.Duration
	PageSize int
	// ChangelogTemplate, when set, is used for commit links of queries with a
	// front-end repository alias. It must declare {repo} and {revision}.
	ChangelogTemplate string
	HTTPClient        *http.Client
}

// Client talks to the GitHub REST API with basic authentication.
type Client struct {
	http      *http.Client
	baseURL   string
	creds     Credentials
	timeout   time.Duration
	pageSize  int
	changelog urltemplate.Template
	logger    *slog.Logger
}

// NewClient creates and configures a new Client instance.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Credentials.Username == "" || opts.Credentials.Token == "" {
		return nil, errors.New("github username and token are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = defaultPageSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	changelog := urltemplate.Parse(opts.ChangelogTemplate)
	if !changelog.IsZero() && (!changelog.Has("repo") || !changelog.Has("revision")) {
		return nil, fmt.Errorf("changelog template %q must contain {repo} and {revision}", opts.ChangelogTemplate)
	}

	return &Client{
		http:      opts.HTTPClient,
		baseURL:   opts.BaseURL,
		creds:     opts.Credentials,
		timeout:   opts.Timeout,
		pageSize:  opts.PageSize,
		changelog: changelog,
		logger:    logger,
	}, nil
}

// fetch issues one authenticated GET and decodes a 200 JSON body into v.
// Any other status is returned as an APIRequestError.
func (c *Client) fetch(ctx context.Context, url string, v any) (http.Header, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	c.logger.Debug("Dispatching API request", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(ctx, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &custom_errors.APIRequestError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			URL:        url,
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return resp.Header, nil
}

// classify turns a transport failure into a timeout error when our own
// deadline expired, leaving caller cancellation untouched.
func (c *Client) classify(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &custom_errors.RequestTimeoutError{URL: url, Timeout: c.timeout}
	}
	return fmt.Errorf("request to %s failed: %w", url, err)
}

// RepositoryTemplate reads the repository URL template advertised by the API root.
func (c *Client) RepositoryTemplate(ctx context.Context) (urltemplate.Template, error) {
	var root struct {
		RepositoryURL string `json:"repository_url"`
	}
	if _, err := c.fetch(ctx, c.baseURL, &root); err != nil {
		return urltemplate.Template{}, err
	}
	if root.RepositoryURL == "" {
		return urltemplate.Template{}, custom_errors.ErrMissingRepositoryTemplate
	}
	return urltemplate.Parse(root.RepositoryURL), nil
}
