package scheduler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/instrumentation"
)

func TestResultText(t *testing.T) {
	dhaka := time.FixedZone("", 6*3600)
	start := time.Date(2025, 6, 10, 10, 0, 0, 0, dhaka)
	existing := calendar.Event{Title: "Standup", Start: start, End: start.Add(30 * time.Minute)}

	tests := []struct {
		name    string
		result  Result
		text    string
		outcome string
	}{
		{
			name:    "success",
			result:  Success{Message: "done"},
			text:    "done",
			outcome: instrumentation.OutcomeSuccess,
		},
		{
			name:    "conflict",
			result:  Conflict{Existing: existing},
			text:    "Conflict with existing event 'Standup' from 2025-06-10T10:00:00+06:00 to 2025-06-10T10:30:00+06:00. Please choose another time.",
			outcome: instrumentation.OutcomeConflict,
		},
		{
			name:    "conflict untitled",
			result:  Conflict{Existing: calendar.Event{Start: start, End: start.Add(time.Hour)}},
			text:    "Conflict with existing event 'Untitled event' from 2025-06-10T10:00:00+06:00 to 2025-06-10T11:00:00+06:00. Please choose another time.",
			outcome: instrumentation.OutcomeConflict,
		},
		{
			name:    "auth required",
			result:  AuthRequired{Account: "default"},
			text:    "User not authenticated.",
			outcome: instrumentation.OutcomeAuthRequired,
		},
		{
			name:    "validation",
			result:  Invalid("No event found with title '%s'.", "Standup"),
			text:    "No event found with title 'Standup'.",
			outcome: instrumentation.OutcomeValidationError,
		},
		{
			name:    "provider error from plain error",
			result:  ProviderError{Action: "creating event", Err: errors.New("connection reset")},
			text:    "Error creating event: connection reset",
			outcome: instrumentation.OutcomeProviderError,
		},
		{
			name:    "provider error without cause",
			result:  ProviderError{Action: "listing events"},
			text:    "Error listing events: unknown error",
			outcome: instrumentation.OutcomeProviderError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.result.Text())
			assert.Equal(t, tt.outcome, tt.result.Outcome())
		})
	}
}

func TestProviderError_ReasonUsesBackendMessage(t *testing.T) {
	perr := &calendar.ProviderError{Op: "list", Code: 403, Message: "Rate Limit Exceeded"}
	r := ProviderError{Action: "fetching existing events", Err: fmt.Errorf("failed to fetch existing events: %w", perr)}

	assert.Equal(t, "Rate Limit Exceeded", r.Reason())
	assert.Equal(t, "Error fetching existing events: Rate Limit Exceeded", r.Text())
}
