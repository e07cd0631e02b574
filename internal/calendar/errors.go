package calendar

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrNotFound is returned by FindByTitle when no upcoming event matches.
var ErrNotFound = errors.New("event not found")

// ProviderError is a failure reported by, or while talking to, the calendar backend.
type ProviderError struct {
	// Op is the backend operation (list, get, insert, update, delete).
	Op string
	// Message is the backend's own message when one was returned.
	Message string
	// Code is the HTTP status code, zero for transport failures.
	Code int

	err error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("calendar %s failed (%d): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("calendar %s failed: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.err
}

func newProviderError(op string, err error) *ProviderError {
	pe := &ProviderError{Op: op, Message: err.Error(), err: err}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		pe.Code = gerr.Code
		if gerr.Message != "" {
			pe.Message = gerr.Message
		}
	}
	return pe
}
