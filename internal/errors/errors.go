// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingAuthor is returned when a collection is requested without an author.
	ErrMissingAuthor = errors.New("author is required")
	// ErrIncompleteCommit is returned when a commit summary or detail lacks the fields a Commit needs.
	ErrIncompleteCommit = errors.New("incomplete commit data")
	// ErrPaginationLoop is returned when a next-page link points at a page that was already fetched.
	ErrPaginationLoop = errors.New("pagination link points to an already visited page")
	// ErrMissingRepositoryTemplate is returned when the service root does not advertise a repository URL template.
	ErrMissingRepositoryTemplate = errors.New("service root did not provide a repository_url template")
)

// ErrInvalidRepoFormat is returned when a repository argument is not in 'name' or 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'name' or 'owner/name'", e.Repo)
}

// APIRequestError is returned for any non-200 response from the provider API.
type APIRequestError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *APIRequestError) Error() string {
	return fmt.Sprintf("API request did not complete OK (%d: %s)", e.StatusCode, e.Body)
}

// MalformedPaginationHeaderError is returned when a Link header entry is not of the form <url>; rel="name".
type MalformedPaginationHeaderError struct {
	Entry string
}

func (e *MalformedPaginationHeaderError) Error() string {
	return fmt.Sprintf("malformed pagination link entry: %q", e.Entry)
}

// InvalidDateRangeError is returned when a date window cannot be used as a filter.
type InvalidDateRangeError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range (from %q, to %q): %s", e.From, e.To, e.Reason)
}

// TemplateSlotError is returned when a URL template slot cannot be satisfied.
type TemplateSlotError struct {
	Template string
	Slot     string
}

func (e *TemplateSlotError) Error() string {
	return fmt.Sprintf("url template %q: no value for slot {%s}", e.Template, e.Slot)
}

// RequestTimeoutError is returned when a single API request exceeds the configured timeout.
type RequestTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

// VCSCommandError is returned when the local version-control tool fails.
type VCSCommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *VCSCommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s failed: %v: %s", e.Command, e.Err, e.Output)
}

func (e *VCSCommandError) Unwrap() error { return e.Err }
