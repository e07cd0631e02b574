package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/timeparse"
)

// ReminderInput is one reminder override as supplied by a caller.
type ReminderInput struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CreateInput holds the arguments of create_event.
type CreateInput struct {
	Title       string          `json:"summary"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time,omitempty"`
	TimeZone    string          `json:"time_zone,omitempty"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	Color       string          `json:"color,omitempty"`
	Reminders   []ReminderInput `json:"reminders,omitempty"`
}

// Create schedules a new event unless its window collides with an upcoming one.
func (s *Service) Create(ctx context.Context, in CreateInput) Result {
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

	now := s.now()
	start, err := s.normalizer.ParseIn(in.StartTime, loc)
	if err != nil {
		return Invalid("Invalid start_time: %v", err)
	}
	start = timeparse.CoerceFuture(start, now)
	if start.Before(now) {
		return Invalid("Cannot create events in the past.")
	}

	end := start.Add(s.defaultDuration)
	if strings.TrimSpace(in.EndTime) != "" {
		end, err = s.normalizer.ParseFrom(in.EndTime, loc, start)
		if err != nil {
			return Invalid("Invalid end_time: %v", err)
		}
		end = timeparse.CoerceFuture(end, now)
	}
	if !end.After(start) {
		return Invalid("Invalid end_time: %s is not after start %s.", timeparse.Format(end), timeparse.Format(start))
	}

	event, res := buildEvent(in, title, start, end, tzName)
	if res != nil {
		return res
	}

	window := calendar.TimeWindow{Start: start, End: end}
	existing, err := s.checker.Check(ctx, token, window)
	if err != nil {
		return ProviderError{Action: "fetching existing events", Err: err}
	}
	if existing != nil {
		s.logger.InfoContext(ctx, "schedule conflict",
			logging.EventID(existing.ID),
			logging.Status("conflict"))
		return Conflict{Existing: *existing, Window: window}
	}

	created, err := s.calendar.Create(ctx, token, event)
	if err != nil {
		return ProviderError{Action: "creating event", Err: err}
	}

	s.logger.InfoContext(ctx, "event created", logging.EventID(created.ID))
	return Success{
		Message: fmt.Sprintf("Event '%s' created successfully from %s to %s.",
			title, timeparse.Format(start), timeparse.Format(end)),
		Event: created,
	}
}

// buildEvent validates the optional fields of in and assembles the event body.
func buildEvent(in CreateInput, title string, start, end time.Time, tzName string) (calendar.Event, Result) {
	status, err := calendar.ParseStatus(in.Status)
	if err != nil {
		return calendar.Event{}, Invalid("Invalid status: %v", err)
	}
	color, err := calendar.ParseColorTag(in.Color)
	if err != nil {
		return calendar.Event{}, Invalid("Invalid color: %v", err)
	}

	var reminders []calendar.Reminder
	for _, r := range in.Reminders {
		reminder := calendar.Reminder{
			Method:        strings.ToLower(strings.TrimSpace(r.Method)),
			MinutesBefore: r.Minutes,
		}
		if err := reminder.Validate(); err != nil {
			return calendar.Event{}, Invalid("Invalid reminder: %v", err)
		}
		reminders = append(reminders, reminder)
	}

	return calendar.Event{
		Title:       title,
		Start:       start,
		End:         end,
		TimeZone:    tzName,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Color:       color,
		Reminders:   reminders,
	}, nil
}
