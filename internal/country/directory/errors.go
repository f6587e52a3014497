package directory

import (
	"errors"
	"fmt"

	"atlas/pkg/platform/sentinel"
)

// ErrorCategory is the normalized failure taxonomy for directory calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the directory took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorOutage indicates the directory is unreachable or returned 5xx
	ErrorOutage ErrorCategory = "outage"

	// ErrorRateLimited indicates the directory answered 429
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorBadData indicates an unexpected status or an undecodable body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorNotFound indicates the requested code doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorCanceled indicates the caller went away
	ErrorCanceled ErrorCategory = "canceled"
)

// Error wraps directory failures with a normalized category.
type Error struct {
	Category   ErrorCategory
	Op         string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("directory %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("directory %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is lets callers test directory errors against infrastructure sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case sentinel.ErrNotFound:
		return e.Category == ErrorNotFound
	case sentinel.ErrUnavailable:
		return e.Category == ErrorOutage || e.Category == ErrorTimeout || e.Category == ErrorRateLimited
	}
	return false
}

// NewError creates a categorized directory error.
func NewError(category ErrorCategory, op, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Op:         op,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == ErrorTimeout || category == ErrorOutage || category == ErrorRateLimited,
	}
}

// IsRetryable reports whether err is a transient directory failure.
func IsRetryable(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to bad data for foreign errors.
func GetCategory(err error) ErrorCategory {
	var de *Error
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrorBadData
}
