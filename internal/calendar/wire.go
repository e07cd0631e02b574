package calendar

import (
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/schedai/internal/timeparse"
)

const (
	transparencyOpaque      = "opaque"
	transparencyTransparent = "transparent"
)

// toWire builds the full Google Calendar body for e. tz names the zone sent with
// start and end.
func toWire(e Event, tz string) *gcal.Event {
	status := e.Status
	if status == "" {
		status = StatusBusy
	}
	color := e.Color
	if color == "" {
		color = ColorNormal
	}

	w := &gcal.Event{
		Summary:     e.Title,
		Location:    e.Location,
		Description: e.Description,
		Start:       dateTime(e.Start, tz),
		End:         dateTime(e.End, tz),
		ColorId:     color.Code(),
	}

	if status == StatusFree {
		w.Transparency = transparencyTransparent
	} else {
		w.Transparency = transparencyOpaque
	}

	w.Reminders = &gcal.EventReminders{UseDefault: true}
	if len(e.Reminders) > 0 {
		overrides := make([]*gcal.EventReminder, 0, len(e.Reminders))
		for _, r := range e.Reminders {
			overrides = append(overrides, &gcal.EventReminder{
				Method:          r.Method,
				Minutes:         int64(r.MinutesBefore),
				ForceSendFields: []string{"Minutes"},
			})
		}
		w.Reminders = &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}

	return w
}

func dateTime(t time.Time, tz string) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: timeparse.Format(t),
		TimeZone: tz,
	}
}

// fromWire converts a backend event. Unparseable start or end times are left zero.
func fromWire(w *gcal.Event) Event {
	if w == nil {
		return Event{}
	}

	e := Event{
		ID:          w.Id,
		Title:       w.Summary,
		Location:    w.Location,
		Description: w.Description,
		Status:      StatusBusy,
		Color:       colorFromCode(w.ColorId),
	}
	if w.Transparency == transparencyTransparent {
		e.Status = StatusFree
	}
	if w.Start != nil {
		e.TimeZone = w.Start.TimeZone
	}
	e.Start = parseWireTime(w.Start)
	e.End = parseWireTime(w.End)

	if w.Reminders != nil && !w.Reminders.UseDefault {
		for _, r := range w.Reminders.Overrides {
			e.Reminders = append(e.Reminders, Reminder{Method: r.Method, MinutesBefore: int(r.Minutes)})
		}
	}

	return e
}

func parseWireTime(dt *gcal.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
		return time.Time{}
	}
	if dt.Date != "" {
		loc := time.UTC
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		if t, err := time.ParseInLocation("2006-01-02", dt.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// applyPatch merges p onto the full remote body w. Fields p leaves nil are not touched.
func applyPatch(w *gcal.Event, p Patch, defaultTZ string) {
	if p.Title != nil {
		w.Summary = *p.Title
	}

	tz := p.TimeZone
	if tz == "" && w.Start != nil && w.Start.TimeZone != "" {
		tz = w.Start.TimeZone
	}
	if tz == "" {
		tz = defaultTZ
	}

	if p.Start != nil {
		w.Start = dateTime(*p.Start, tz)
	}
	if p.End != nil {
		w.End = dateTime(*p.End, tz)
	}
}
