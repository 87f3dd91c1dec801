// internal/cli/exit.go
package cli

import (
	"context"
	"errors"
	"fmt"

	custom_errors "commit-evidence/internal/errors"
)

const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitCoder is an error that knows the process exit code it maps to.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError carries an explicit process exit code and wraps its cause.
type ExitError struct {
	code      int
	msg       string
	cause     error
	hideCause bool
}

func (e *ExitError) Error() string {
	if e.cause == nil || e.hideCause {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

func (e *ExitError) Unwrap() error { return e.cause }

// Wrap creates an ExitError with a message and an underlying cause.
func Wrap(code int, msg string, cause error) error {
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// usageError reports bad flags or configuration.
func usageError(cause error) error {
	return &ExitError{code: ExitUsage, msg: cause.Error(), cause: cause, hideCause: true}
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}

// collectionError maps a failed run onto the exit code and message shown to the user.
func collectionError(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return Wrap(ExitInterrupted, "interrupted", err)
	}
	var apiErr *custom_errors.APIRequestError
	if errors.As(err, &apiErr) {
		return &ExitError{
			code:      ExitFailure,
			msg:       fmt.Sprintf("Failed to complete API requests - %d: %s", apiErr.StatusCode, apiErr.Body),
			cause:     err,
			hideCause: true,
		}
	}
	return Wrap(ExitFailure, "collection failed", err)
}

func normalize(code int) int {
	if code <= 0 {
		return ExitFailure
	}
	return code
}
