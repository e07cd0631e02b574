package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DefaultTimeZone is used when no zone is configured.
const DefaultTimeZone = "Asia/Dhaka"

// ErrUnparseable is wrapped by every ParseError.
var ErrUnparseable = errors.New("unparseable time expression")

// ParseError reports time text from which no instant could be derived.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot parse time %q: %s", e.Text, e.Reason)
	}
	return fmt.Sprintf("cannot parse time %q", e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseable
}

// isoPrefix marks text that must parse as ISO-8601 or not at all.
var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// offsetLayouts are ISO-8601 forms carrying their own offset. Fractional
// seconds are accepted after the seconds field by time.Parse.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04Z07",
}

// naiveLayouts are ISO-8601 forms without an offset, resolved in the target location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalizer turns ISO-8601 or natural-language time text into zone-aware instants.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	loc    *time.Location
	now    func() time.Time
	parser *when.Parser
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the source of "now" used for relative expressions.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// New creates a Normalizer whose default location is timeZone.
// An empty timeZone selects DefaultTimeZone.
func New(timeZone string, opts ...Option) (*Normalizer, error) {
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", timeZone, err)
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	n := &Normalizer{
		loc:    loc,
		now:    time.Now,
		parser: parser,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Location returns the default location.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current instant in the default location.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

// Parse parses text in the default location.
func (n *Normalizer) Parse(text string) (time.Time, error) {
	return n.ParseIn(text, n.loc)
}

// ParseIn parses text, resolving naive and relative expressions in loc.
// Explicit offsets in ISO input are kept as given.
func (n *Normalizer) ParseIn(text string, loc *time.Location) (time.Time, error) {
	return n.ParseFrom(text, loc, n.now())
}

// ParseFrom is ParseIn with relative expressions resolved against ref instead
// of now. An end time parsed from its start keeps "8am" to "10am" on one day.
func (n *Normalizer) ParseFrom(text string, loc *time.Location, ref time.Time) (time.Time, error) {
	if loc == nil {
		loc = n.loc
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, &ParseError{Text: text, Reason: "empty"}
	}

	if isoPrefix.MatchString(trimmed) {
		return parseISO(text, trimmed, loc)
	}

	ref = ref.In(loc)
	r, err := n.parser.Parse(trimmed, ref)
	if err != nil {
		return time.Time{}, &ParseError{Text: text, Reason: err.Error()}
	}
	if r == nil {
		return time.Time{}, &ParseError{Text: text}
	}

	return resolveFuture(r.Time.In(loc), ref, trimmed, r.Text), nil
}

func parseISO(text, trimmed string, loc *time.Location) (time.Time, error) {
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Text: text, Reason: "not a valid ISO-8601 time"}
}

var (
	monthWord    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\b`)
	slashDate    = regexp.MustCompile(`\d{1,2}[/\\]\d{1,2}`)
	weekdayWord  = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues?|wed|thu(rs?)?|fri|sat|sun)\b`)
	pastModifier = regexp.MustCompile(`(?i)\b(last|past)\b`)
	relativeDay  = regexp.MustCompile(`(?i)\b(now|today|tonight|tomorrow|tmr|yesterday|night|ago|in|within)\b`)
	explicitYear = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

// resolveFuture picks the future reading of an ambiguous phrase, judged by
// what the phrase names:
//   - a date without a year lands on its next occurrence
//   - a weekday without last/past lands in the coming week
//   - a phrase naming its day (today, tomorrow, in 2 days) is kept as is
//   - a bare time of day that already passed moves to the next day
func resolveFuture(t, ref time.Time, source, phrase string) time.Time {
	switch {
	case monthWord.MatchString(phrase) || slashDate.MatchString(phrase):
		if m := explicitYear.FindStringSubmatch(source); m != nil {
			year, _ := strconv.Atoi(m[1])
			return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		}
		if dayBefore(t, ref) {
			return t.AddDate(1, 0, 0)
		}
		return t
	case weekdayWord.MatchString(phrase):
		if !pastModifier.MatchString(phrase) && dayBefore(t, ref) {
			return t.AddDate(0, 0, 7)
		}
		return t
	case relativeDay.MatchString(phrase):
		return t
	default:
		return preferFuture(t, ref)
	}
}

// dayBefore reports whether t falls on a calendar day before ref's, both read in t's location.
func dayBefore(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.In(t.Location()).Date()
	return time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Before(time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC))
}

// preferFuture moves a time of day that fell just behind ref onto the next day,
// so "3pm" said at 4pm means tomorrow.
func preferFuture(t, ref time.Time) time.Time {
	if t.Before(ref) && ref.Sub(t) < 24*time.Hour {
		return t.AddDate(0, 0, 1)
	}
	return t
}
