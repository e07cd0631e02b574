package tools

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/scheduler"
)

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func requiredStr(description string) *jsonschema.Schema {
	s := str(description)
	s.MinLength = jsonschema.Ptr(1)
	return s
}

func enum(description string, values ...string) *jsonschema.Schema {
	s := str(description)
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func createSchema() *jsonschema.Schema {
	reminder := object([]string{"method", "minutes"}, map[string]*jsonschema.Schema{
		"method": enum("Reminder delivery method.", calendar.ReminderPopup, calendar.ReminderEmail),
		"minutes": {
			Type:        "integer",
			Description: "Minutes before the event start.",
			Minimum:     jsonschema.Ptr(0.0),
			Maximum:     jsonschema.Ptr(float64(calendar.MaxReminderMinutes)),
		},
	})

	return object([]string{"summary", "start_time"}, map[string]*jsonschema.Schema{
		"summary":     requiredStr("Title of the event."),
		"start_time":  requiredStr("Start time, ISO-8601 (e.g. 2025-06-28T15:00:00) or natural language (e.g. 'tomorrow 3pm')."),
		"end_time":    str("End time in the same forms as start_time. Defaults to 30 minutes after the start."),
		"time_zone":   str("IANA time zone, e.g. 'Asia/Dhaka'. Defaults to the configured zone."),
		"location":    str("Event location."),
		"description": str("Event description."),
		"status":      enum("Whether the event blocks the calendar.", string(calendar.StatusBusy), string(calendar.StatusFree)),
		"color":       enum("Importance label, shown as the event color.", string(calendar.ColorHigh), string(calendar.ColorMedium), string(calendar.ColorNormal)),
		"reminders": {
			Type:        "array",
			Description: "Reminder overrides. Omit to use the calendar's default reminders.",
			Items:       reminder,
		},
	})
}

func listSchema() *jsonschema.Schema {
	return object(nil, map[string]*jsonschema.Schema{
		"max_results": {
			Type:        "integer",
			Description: "Number of upcoming events to return (default 5).",
			Minimum:     jsonschema.Ptr(1.0),
			Maximum:     jsonschema.Ptr(float64(scheduler.MaxListSize)),
		},
	})
}

func updateSchema() *jsonschema.Schema {
	return object([]string{"title"}, map[string]*jsonschema.Schema{
		"title":          requiredStr("Current title of the event to update."),
		"new_summary":    str("New title."),
		"new_start_time": str("New start time, ISO-8601 or natural language."),
		"new_end_time":   str("New end time, ISO-8601 or natural language."),
		"time_zone":      str("IANA time zone for the new times. Defaults to the event's zone."),
	})
}

func deleteSchema() *jsonschema.Schema {
	return object([]string{"title"}, map[string]*jsonschema.Schema{
		"title": requiredStr("Title of the event to delete."),
	})
}
