package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity id is not present locally or
// on the server.
var ErrNotFound = errors.New("not found")

// NetworkError wraps a failed round trip to the remote store: a
// transport failure, or a response outside the 2xx range.
type NetworkError struct {
	// Op names the call, e.g. "POST /tasks/update-status/".
	Op string

	// StatusCode is 0 for transport failures.
	StatusCode int

	// Message is the server's error text when it sent one.
	Message string

	Err error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match a 404 response.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// IsNetworkError reports whether err (or any error in its chain) is a
// NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// ValidationError reports a missing or malformed field. It is raised
// before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err (or any error in its chain) is
// a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
