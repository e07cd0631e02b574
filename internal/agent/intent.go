package agent

import (
	"strings"
	"unicode"
)

// Intent is the coarse kind of a request.
type Intent string

const (
	IntentCreate  Intent = "create_event"
	IntentUpdate  Intent = "update_event"
	IntentDelete  Intent = "delete_event"
	IntentList    Intent = "list_events"
	IntentUnknown Intent = "unknown"
)

var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentCreate, []string{"create", "schedule", "set up", "make", "book", "add"}},
	{IntentUpdate, []string{"update", "change", "edit", "move", "reschedule", "rename"}},
	{IntentDelete, []string{"delete", "remove", "cancel"}},
	{IntentList, []string{"list", "show", "what", "next", "events", "agenda"}},
}

// ClassifyIntent guesses the intent of text from whole-word keywords. Earlier
// intents win when several match, except that "reschedule" counts as an update.
func ClassifyIntent(text string) Intent {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	padded := " " + strings.Join(words, " ") + " "

	if strings.Contains(padded, " reschedule ") {
		return IntentUpdate
	}
	for _, entry := range intentKeywords {
		for _, k := range entry.keywords {
			if strings.Contains(padded, " "+k+" ") {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}
