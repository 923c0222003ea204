package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type PlutoError struct {
	Message string
	Cause   error
}

func (e *PlutoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PlutoError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// NotConfiguredError signals that broker credentials are absent. Read paths
// degrade to empty results instead; only mutating calls surface this.
type NotConfiguredError struct{ PlutoError }

func NewNotConfigured(what string) *NotConfiguredError {
	return &NotConfiguredError{PlutoError{Message: what + " not configured"}}
}

// -----------------------------------------------------------------------------

// BrokerRejectedError carries the broker's response body verbatim.
type BrokerRejectedError struct {
	PlutoError
	StatusCode int
	Body       string
}

func NewBrokerRejected(statusCode int, body string) *BrokerRejectedError {
	return &BrokerRejectedError{
		PlutoError: PlutoError{Message: fmt.Sprintf("order failed: %s", body)},
		StatusCode: statusCode,
		Body:       body,
	}
}

// -----------------------------------------------------------------------------

// ValidationError rejects malformed signals/orders before any external call.
type ValidationError struct{ PlutoError }

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{PlutoError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------

// NetworkError wraps timeouts and transport failures.
type NetworkError struct{ PlutoError }

func NewNetwork(message string, cause error) *NetworkError {
	return &NetworkError{PlutoError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Predicates
// -----------------------------------------------------------------------------

func IsNotConfigured(err error) bool {
	var e *NotConfiguredError
	return errors.As(err, &e)
}

func IsBrokerRejected(err error) bool {
	var e *BrokerRejectedError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
