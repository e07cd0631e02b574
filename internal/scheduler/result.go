package scheduler

import (
	"errors"
	"fmt"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/timeparse"
)

// Result is the outcome of one command. It is one of Success, Conflict,
// AuthRequired, ValidationError or ProviderError.
type Result interface {
	// Text renders the outcome for a conversational caller.
	Text() string
	// Outcome returns the outcome kind used for metrics and audit logs.
	Outcome() string

	result()
}

// Success reports a completed command.
type Success struct {
	Message string
	// Event is the created or updated event, nil for list and delete.
	Event *calendar.Event
}

func (r Success) Text() string    { return r.Message }
func (r Success) Outcome() string { return instrumentation.OutcomeSuccess }
func (Success) result()           {}

// Conflict reports a create refused because the window is taken.
type Conflict struct {
	Existing calendar.Event
	// Window is the span that was requested.
	Window calendar.TimeWindow
}

func (r Conflict) Text() string {
	title := r.Existing.Title
	if title == "" {
		title = "Untitled event"
	}
	return fmt.Sprintf("Conflict with existing event '%s' from %s to %s. Please choose another time.",
		title, timeparse.Format(r.Existing.Start), timeparse.Format(r.Existing.End))
}
func (r Conflict) Outcome() string { return instrumentation.OutcomeConflict }
func (Conflict) result()           {}

// AuthRequired reports that no credential exists for the account.
type AuthRequired struct {
	Account string
}

func (AuthRequired) Text() string      { return "User not authenticated." }
func (r AuthRequired) Outcome() string { return instrumentation.OutcomeAuthRequired }
func (AuthRequired) result()           {}

// ValidationError reports bad input or a missing target. No write was attempted.
type ValidationError struct {
	Reason string
}

func (r ValidationError) Text() string    { return r.Reason }
func (r ValidationError) Outcome() string { return instrumentation.OutcomeValidationError }
func (ValidationError) result()           {}

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) ValidationError {
	return ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ProviderError reports a failed backend call.
type ProviderError struct {
	// Action describes what was being done, e.g. "creating event".
	Action string
	Err    error
}

// Reason returns the backend's own message when there is one.
func (r ProviderError) Reason() string {
	if r.Err == nil {
		return "unknown error"
	}
	var perr *calendar.ProviderError
	if errors.As(r.Err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return r.Err.Error()
}

func (r ProviderError) Text() string {
	return fmt.Sprintf("Error %s: %s", r.Action, r.Reason())
}
func (r ProviderError) Outcome() string { return instrumentation.OutcomeProviderError }
func (ProviderError) result()           {}
