package advisor

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized advisor failure taxonomy. The fusion
// engine treats every category the same way (fall back to local rules), but
// categories drive logging and metrics.
type ErrorCategory string

const (
	// ErrorTimeout indicates the advisor took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the advisor returned a malformed or
	// unparsable decision payload.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates missing or rejected credentials.
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the advisor service is unavailable.
	ErrorOutage ErrorCategory = "outage"

	// ErrorInternal indicates an unexpected local failure.
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps advisor failures with normalized categorization.
type Error struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("advisor [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("advisor [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized advisor error.
func NewError(category ErrorCategory, message string, underlying error) *Error {
	return &Error{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from an error chain.
func CategoryOf(err error) ErrorCategory {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ErrorInternal
}

// ErrNotConfigured marks an explicitly absent advisor (no API key). Callers
// treat it like any other advisor fault: fall back.
var ErrNotConfigured = errors.New("advisor not configured")
