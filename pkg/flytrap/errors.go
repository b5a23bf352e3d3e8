// errors.go defines the error types produced by flytrap.

package flytrap

import (
	"errors"
	"fmt"
)

// Origin marks who produced an error.
type Origin string

// OriginSDK tags errors created by flytrap itself. The dispatcher drops
// fatal events carrying this tag so a failed delivery can never be reported
// again.
const OriginSDK Origin = "flytrap"

// Error is returned by the manual capture API when a report could not be
// delivered. It wraps the underlying cause.
type Error struct {
	Origin  Origin
	Message string
	Cause   error
}

func newError(message string, cause error) *Error {
	return &Error{Origin: OriginSDK, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("flytrap: %s: %v", e.Message, e.Cause)
	}
	return "flytrap: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsInternal reports whether err, or any error it wraps, was produced by flytrap.
func IsInternal(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Origin == OriginSDK
}

// PanicError wraps a recovered panic value that is not an error.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Value == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", e.Value)
}

// asError converts a recovered panic value into an error.
func asError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return &PanicError{Value: recovered}
}

// StatusError reports a non-2xx response from the collection endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
