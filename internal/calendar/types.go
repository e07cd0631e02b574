package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Status is the free/busy state an event imposes on the calendar.
type Status string

const (
	StatusBusy Status = "busy"
	StatusFree Status = "free"
)

// ParseStatus maps user input onto a Status. Empty input means busy.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusBusy:
		return StatusBusy, nil
	case StatusFree:
		return StatusFree, nil
	}
	return "", fmt.Errorf("invalid status %q (must be busy or free)", s)
}

// ColorTag is the importance label of an event.
type ColorTag string

const (
	ColorHigh   ColorTag = "high"
	ColorMedium ColorTag = "medium"
	ColorNormal ColorTag = "normal"
)

var colorCodes = map[ColorTag]string{
	ColorHigh:   "11",
	ColorMedium: "7",
	ColorNormal: "5",
}

// Code returns the Google Calendar colorId for the tag.
func (c ColorTag) Code() string {
	if code, ok := colorCodes[c]; ok {
		return code
	}
	return colorCodes[ColorNormal]
}

// ParseColorTag maps user input onto a ColorTag. Empty input means normal.
func ParseColorTag(s string) (ColorTag, error) {
	switch ColorTag(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColorNormal:
		return ColorNormal, nil
	case ColorMedium:
		return ColorMedium, nil
	case ColorHigh:
		return ColorHigh, nil
	}
	return "", fmt.Errorf("invalid color %q (must be high, medium or normal)", s)
}

func colorFromCode(code string) ColorTag {
	for tag, c := range colorCodes {
		if c == code {
			return tag
		}
	}
	return ""
}

// Reminder methods accepted by Google Calendar.
const (
	ReminderPopup = "popup"
	ReminderEmail = "email"
)

// MaxReminderMinutes is the largest lead time Google Calendar accepts (four weeks).
const MaxReminderMinutes = 40320

// Reminder is a single reminder override.
type Reminder struct {
	Method        string
	MinutesBefore int
}

// Validate checks method and lead time against Google Calendar limits.
func (r Reminder) Validate() error {
	if r.Method != ReminderPopup && r.Method != ReminderEmail {
		return fmt.Errorf("invalid reminder method %q (must be popup or email)", r.Method)
	}
	if r.MinutesBefore < 0 || r.MinutesBefore > MaxReminderMinutes {
		return fmt.Errorf("reminder minutes must be between 0 and %d, got %d", MaxReminderMinutes, r.MinutesBefore)
	}
	return nil
}

// Event is a calendar event in domain form.
type Event struct {
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Location    string
	Description string
	Status      Status
	Color       ColorTag

	// Reminders are sent as overrides. With no reminders the calendar default applies.
	Reminders []Reminder
}

// Window returns the event's [Start, End) span.
func (e Event) Window() TimeWindow {
	return TimeWindow{Start: e.Start, End: e.End}
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether both bounds are set and Start precedes End.
func (w TimeWindow) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.Start.Before(w.End)
}

// Overlaps reports whether w and o share any instant. Touching endpoints do not overlap.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// Patch carries the fields of an update. Nil fields keep their remote value.
type Patch struct {
	Title *string
	Start *time.Time
	End   *time.Time

	// TimeZone applies to Start and End when they are set.
	TimeZone string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Start == nil && p.End == nil
}
