package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/schedai/internal/timeparse"
)

// ListInput holds the arguments of list_events.
type ListInput struct {
	MaxResults int `json:"max_results,omitempty"`
}

// List renders the next upcoming events, one per line.
func (s *Service) List(ctx context.Context, in ListInput) Result {
	token, res := s.credential(ctx)
	if res != nil {
		return res
	}

	max := in.MaxResults
	if max <= 0 {
		max = s.listSize
	}
	if max > MaxListSize {
		return Invalid("max_results must be at most %d.", MaxListSize)
	}

	events, err := s.calendar.List(ctx, token, s.now(), max)
	if err != nil {
		return ProviderError{Action: "listing events", Err: err}
	}
	if len(events) == 0 {
		return Success{Message: "No upcoming events found."}
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		title := e.Title
		if title == "" {
			title = "No Title"
		}
		start := "No start time"
		if !e.Start.IsZero() {
			start = timeparse.Format(e.Start)
		}
		lines = append(lines, fmt.Sprintf("- %s at %s", title, start))
	}
	return Success{Message: strings.Join(lines, "\n")}
}
