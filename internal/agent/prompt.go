package agent

import (
	"fmt"
	"time"
)

// DefaultSystemPrompt instructs the model how to use the calendar tools.
const DefaultSystemPrompt = "You are an AI assistant for Google Calendar management. " +
	"You can create, list, update, and delete calendar events by title. " +
	"Always check for conflicting events before scheduling or updating. " +
	"When you need to operate on calendar, use the tools accordingly. " +
	"Pass times exactly as the user phrased them unless they are ambiguous. " +
	"Format your responses clearly for the user."

// systemMessage appends the current time so relative dates can be resolved.
func systemMessage(prompt string, now time.Time) Message {
	return Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf("%s\nThe current time is %s (%s).", prompt, now.Format(time.RFC3339), now.Location()),
	}
}
