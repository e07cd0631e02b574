package conflict

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/schedai/internal/calendar"
)

// DefaultLookAhead is the number of upcoming events fetched for a check.
const DefaultLookAhead = 20

// Lister fetches events ordered by start time. *calendar.Client implements it.
type Lister interface {
	List(ctx context.Context, token *oauth2.Token, from time.Time, max int) ([]calendar.Event, error)
}

// Find returns the first event in existing whose window overlaps candidate,
// or nil. Events without a usable window are skipped.
func Find(candidate calendar.TimeWindow, existing []calendar.Event) *calendar.Event {
	for i := range existing {
		w := existing[i].Window()
		if !w.Valid() {
			continue
		}
		if candidate.Overlaps(w) {
			return &existing[i]
		}
	}
	return nil
}

// Checker looks up existing events and reports the first collision.
type Checker struct {
	lister    Lister
	lookAhead int
}

// Option configures a Checker.
type Option func(*Checker)

// WithLookAhead bounds how many events a check fetches.
func WithLookAhead(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.lookAhead = n
		}
	}
}

// NewChecker creates a Checker.
func NewChecker(lister Lister, opts ...Option) *Checker {
	c := &Checker{lister: lister, lookAhead: DefaultLookAhead}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookAhead returns the configured fetch bound.
func (c *Checker) LookAhead() int {
	return c.lookAhead
}

// Check lists events from candidate.Start and returns the first one that
// overlaps candidate. A nil event with a nil error means the window is free.
func (c *Checker) Check(ctx context.Context, token *oauth2.Token, candidate calendar.TimeWindow) (*calendar.Event, error) {
	if !candidate.Valid() {
		return nil, fmt.Errorf("invalid window: start %s must precede end %s", candidate.Start, candidate.End)
	}

	events, err := c.lister.List(ctx, token, candidate.Start, c.lookAhead)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing events: %w", err)
	}
	return Find(candidate, events), nil
}
