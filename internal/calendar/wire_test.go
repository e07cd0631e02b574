package calendar

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

func TestToWire_Defaults(t *testing.T) {
	start := time.Date(2025, 6, 11, 10, 0, 0, 0, time.FixedZone("", 6*3600))
	w := toWire(Event{Title: "Lunch", Start: start, End: start.Add(30 * time.Minute)}, "Asia/Dhaka")

	assert.Equal(t, "Lunch", w.Summary)
	assert.Equal(t, "2025-06-11T10:00:00+06:00", w.Start.DateTime)
	assert.Equal(t, "2025-06-11T10:30:00+06:00", w.End.DateTime)
	assert.Equal(t, "Asia/Dhaka", w.Start.TimeZone)
	assert.Equal(t, "5", w.ColorId)
	assert.Equal(t, "opaque", w.Transparency)
	require.NotNil(t, w.Reminders)
	assert.True(t, w.Reminders.UseDefault)
	assert.Empty(t, w.Reminders.Overrides)
}

func TestToWire_Overrides(t *testing.T) {
	start := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	w := toWire(Event{
		Title:       "Review",
		Start:       start,
		End:         start.Add(time.Hour),
		Location:    "Room 4",
		Description: "Quarterly",
		Status:      StatusFree,
		Color:       ColorHigh,
		Reminders:   []Reminder{{Method: ReminderPopup, MinutesBefore: 0}, {Method: ReminderEmail, MinutesBefore: 60}},
	}, "UTC")

	assert.Equal(t, "Room 4", w.Location)
	assert.Equal(t, "Quarterly", w.Description)
	assert.Equal(t, "transparent", w.Transparency)
	assert.Equal(t, "11", w.ColorId)
	assert.False(t, w.Reminders.UseDefault)
	assert.Contains(t, w.Reminders.ForceSendFields, "UseDefault")
	require.Len(t, w.Reminders.Overrides, 2)
	assert.Equal(t, int64(60), w.Reminders.Overrides[1].Minutes)

	data, err := w.Reminders.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"useDefault":false`)
	assert.Contains(t, string(data), `"minutes":0`)
}

func TestFromWire(t *testing.T) {
	w := &gcal.Event{
		Id:           "abc",
		Summary:      "Standup",
		ColorId:      "7",
		Transparency: "transparent",
		Start:        &gcal.EventDateTime{DateTime: "2025-06-11T10:00:00+06:00", TimeZone: "Asia/Dhaka"},
		End:          &gcal.EventDateTime{DateTime: "2025-06-11T10:30:00+06:00"},
		Reminders: &gcal.EventReminders{Overrides: []*gcal.EventReminder{
			{Method: "popup", Minutes: 15},
		}},
	}

	e := fromWire(w)
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, "Standup", e.Title)
	assert.Equal(t, ColorMedium, e.Color)
	assert.Equal(t, StatusFree, e.Status)
	assert.Equal(t, "Asia/Dhaka", e.TimeZone)
	assert.True(t, e.Start.Equal(time.Date(2025, 6, 11, 4, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30*time.Minute, e.End.Sub(e.Start))
	assert.Equal(t, []Reminder{{Method: "popup", MinutesBefore: 15}}, e.Reminders)
}

func TestFromWire_UnparseableTimes(t *testing.T) {
	e := fromWire(&gcal.Event{
		Summary: "Broken",
		Start:   &gcal.EventDateTime{DateTime: "not a time"},
	})
	assert.True(t, e.Start.IsZero())
	assert.True(t, e.End.IsZero())
	assert.Equal(t, StatusBusy, e.Status)

	assert.Equal(t, Event{}, fromWire(nil))
}

func TestFromWire_AllDay(t *testing.T) {
	e := fromWire(&gcal.Event{
		Start: &gcal.EventDateTime{Date: "2025-06-11"},
		End:   &gcal.EventDateTime{Date: "2025-06-12"},
	})
	assert.Equal(t, 24*time.Hour, e.End.Sub(e.Start))
}

func TestApplyPatch(t *testing.T) {
	original := func() *gcal.Event {
		return &gcal.Event{
			Id:          "abc",
			Summary:     "Standup",
			Description: "daily",
			Location:    "Room 1",
			ColorId:     "11",
			Start:       &gcal.EventDateTime{DateTime: "2025-06-11T10:00:00+06:00", TimeZone: "Asia/Dhaka"},
			End:         &gcal.EventDateTime{DateTime: "2025-06-11T10:30:00+06:00", TimeZone: "Asia/Dhaka"},
		}
	}

	t.Run("title only leaves everything else", func(t *testing.T) {
		w := original()
		title := "Daily Sync"
		applyPatch(w, Patch{Title: &title}, "UTC")

		assert.Equal(t, "Daily Sync", w.Summary)
		assert.Equal(t, "daily", w.Description)
		assert.Equal(t, "Room 1", w.Location)
		assert.Equal(t, "11", w.ColorId)
		assert.Equal(t, "2025-06-11T10:00:00+06:00", w.Start.DateTime)
	})

	t.Run("times keep the remote zone", func(t *testing.T) {
		w := original()
		start := time.Date(2025, 6, 12, 9, 0, 0, 0, time.FixedZone("", 6*3600))
		end := start.Add(time.Hour)
		applyPatch(w, Patch{Start: &start, End: &end}, "UTC")

		assert.Equal(t, "Standup", w.Summary)
		assert.Equal(t, "2025-06-12T09:00:00+06:00", w.Start.DateTime)
		assert.Equal(t, "2025-06-12T10:00:00+06:00", w.End.DateTime)
		assert.Equal(t, "Asia/Dhaka", w.Start.TimeZone)
	})

	t.Run("explicit zone wins", func(t *testing.T) {
		w := original()
		start := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
		applyPatch(w, Patch{Start: &start, TimeZone: "Europe/Berlin"}, "UTC")
		assert.Equal(t, "Europe/Berlin", w.Start.TimeZone)
		assert.Equal(t, "Asia/Dhaka", w.End.TimeZone)
	})
}

func TestNewProviderError(t *testing.T) {
	perr := newProviderError("insert", &googleapi.Error{Code: 403, Message: "Rate Limit Exceeded"})
	assert.Equal(t, 403, perr.Code)
	assert.Equal(t, "Rate Limit Exceeded", perr.Message)
	assert.Equal(t, "calendar insert failed (403): Rate Limit Exceeded", perr.Error())

	var gerr *googleapi.Error
	assert.True(t, errors.As(perr, &gerr))

	transport := newProviderError("list", fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, 0, transport.Code)
	assert.Equal(t, "calendar list failed: dial tcp: connection refused", transport.Error())
}
