package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/logging"
)

// UpdateInput holds the arguments of update_event. Empty fields are left unchanged.
type UpdateInput struct {
	Title        string `json:"title"`
	NewTitle     string `json:"new_summary,omitempty"`
	NewStartTime string `json:"new_start_time,omitempty"`
	NewEndTime   string `json:"new_end_time,omitempty"`
	TimeZone     string `json:"time_zone,omitempty"`
}

// DeleteInput holds the arguments of delete_event.
type DeleteInput struct {
	Title string `json:"title"`
}

// Update changes the first upcoming event titled in.Title. Only supplied
// fields change; everything else is re-sent as stored.
func (s *Service) Update(ctx context.Context, in UpdateInput) Result {
	token, res := s.credential(ctx)
	if res != nil {
		return res
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Invalid("Event title is required.")
	}
	loc, tzName, err := s.location(in.TimeZone)
	if err != nil {
		return Invalid("Invalid time_zone: %q is not a known time zone.", in.TimeZone)
	}

	var patch calendar.Patch
	if v := strings.TrimSpace(in.NewTitle); v != "" {
		patch.Title = &v
	}
	if strings.TrimSpace(in.NewStartTime) != "" {
		t, err := s.normalizer.ParseIn(in.NewStartTime, loc)
		if err != nil {
			return Invalid("Invalid new_start_time: %v", err)
		}
		patch.Start = &t
	}
	if strings.TrimSpace(in.NewEndTime) != "" {
		t, err := s.parseEnd(in.NewEndTime, loc, patch.Start)
		if err != nil {
			return Invalid("Invalid new_end_time: %v", err)
		}
		patch.End = &t
	}
	if patch.Empty() {
		return Invalid("Nothing to update: supply new_summary, new_start_time or new_end_time.")
	}
	// Without an explicit zone the stored zone name is kept.
	if in.TimeZone != "" {
		patch.TimeZone = tzName
	}

	target, res := s.resolve(ctx, token, title)
	if res != nil {
		return res
	}

	// A relative end with no new start is read from the stored start.
	if patch.Start == nil && patch.End != nil && !target.Start.IsZero() {
		t, err := s.parseEnd(in.NewEndTime, loc, &target.Start)
		if err != nil {
			return Invalid("Invalid new_end_time: %v", err)
		}
		patch.End = &t
	}

	window := target.Window()
	if patch.Start != nil {
		window.Start = *patch.Start
	}
	if patch.End != nil {
		window.End = *patch.End
	}
	if !window.Start.IsZero() && !window.End.IsZero() && !window.Start.Before(window.End) {
		return Invalid("The updated event would end before it starts.")
	}

	updated, err := s.calendar.Update(ctx, token, target.ID, patch)
	if err != nil {
		return ProviderError{Action: "updating event", Err: err}
	}

	s.logger.InfoContext(ctx, "event updated", logging.EventID(target.ID))
	return Success{
		Message: fmt.Sprintf("Event '%s' updated successfully.", title),
		Event:   updated,
	}
}

// parseEnd resolves an end time relative to start, or to now without one.
func (s *Service) parseEnd(text string, loc *time.Location, start *time.Time) (time.Time, error) {
	if start == nil {
		return s.normalizer.ParseIn(text, loc)
	}
	return s.normalizer.ParseFrom(text, loc, *start)
}

// Delete removes the first upcoming event titled in.Title.
func (s *Service) Delete(ctx context.Context, in DeleteInput) Result {
	token, res := s.credential(ctx)
	if res != nil {
		return res
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Invalid("Event title is required.")
	}

	target, res := s.resolve(ctx, token, title)
	if res != nil {
		return res
	}

	if err := s.calendar.Delete(ctx, token, target.ID); err != nil {
		return ProviderError{Action: "deleting event", Err: err}
	}

	s.logger.InfoContext(ctx, "event deleted", logging.EventID(target.ID))
	return Success{Message: fmt.Sprintf("Event '%s' deleted successfully.", title)}
}

// resolve finds the target of an update or delete.
func (s *Service) resolve(ctx context.Context, token *oauth2.Token, title string) (*calendar.Event, Result) {
	event, err := s.calendar.FindByTitle(ctx, token, title, s.findLimit)
	if calendar.IsNotFound(err) {
		return nil, Invalid("No event found with title '%s'.", title)
	}
	if err != nil {
		return nil, ProviderError{Action: "looking up event", Err: err}
	}
	return event, nil
}
