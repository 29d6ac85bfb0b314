package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaMissing indicates required tables are absent from the database.
	ErrSchemaMissing = errors.New("schema missing")

	// ErrRemoteUnavailable indicates the merchant API client could not be initialised.
	ErrRemoteUnavailable = errors.New("remote catalog unavailable")

	// ErrDatabaseUnavailable indicates the shop database could not be reached.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrRetriesExhausted indicates an operation used its whole attempt budget.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigurationError lists every problem found while validating settings.
// It is fatal and reported before any I/O happens.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Add records a problem.
func (e *ConfigurationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// OrNil returns nil when no problem was recorded.
func (e *ConfigurationError) OrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// RejectReason names the validation criterion an item failed.
type RejectReason string

// Rejection criteria, in evaluation order.
const (
	RejectTitle     RejectReason = "title"
	RejectPrice     RejectReason = "price"
	RejectTransform RejectReason = "transform"
)

// ValidationError is a local rejection. The item is never sent.
type ValidationError struct {
	Reason  RejectReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rejected (%s): %s", e.Reason, e.Message)
}

// RemoteError carries the HTTP status of a failed remote call.
// Status 0 means the request never produced a response.
type RemoteError struct {
	Status  int
	Message string

	// RetryAfter is the server's requested pause on a 429, zero if absent.
	RetryAfter time.Duration

	Err error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return "remote: " + e.Message
	}
	return fmt.Sprintf("remote: %d %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// StatusOf extracts the HTTP status from an error chain, or 0.
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// RetryAfterOf extracts the server's requested pause from an error chain, or 0.
func RetryAfterOf(err error) time.Duration {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.RetryAfter
	}
	return 0
}

// IsTransient reports whether a status is a retryable server failure.
func IsTransient(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsRateLimitedStatus reports whether a status asks the caller to slow down.
func IsRateLimitedStatus(status int) bool {
	return status == http.StatusTooManyRequests
}

// IsPermanent reports whether retrying can never help.
func IsPermanent(status int) bool {
	return status == http.StatusForbidden || status == http.StatusNotFound
}

// IsUnrecoverable reports whether a failure can never succeed on retry:
// a permanent remote status or input that is malformed.
func IsUnrecoverable(err error) bool {
	return IsPermanent(StatusOf(err)) || errors.Is(err, ErrInvalidInput)
}

// IsNotFoundStatus reports whether the remote resource is absent.
func IsNotFoundStatus(status int) bool {
	return status == http.StatusNotFound
}
