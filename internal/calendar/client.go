package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/logging"
)

// DefaultCalendarID is the calendar every operation targets unless configured otherwise.
const DefaultCalendarID = "primary"

// ServiceFactory builds a Calendar API service that authenticates with token.
type ServiceFactory func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error)

// NewOAuthServiceFactory returns the production factory. Tokens are refreshed
// through conf when they expire.
func NewOAuthServiceFactory(conf *oauth2.Config) ServiceFactory {
	return func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
		svc, err := gcal.NewService(ctx, option.WithHTTPClient(google.HTTPClient(ctx, conf, token)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Calendar service: %w", err)
		}
		return svc, nil
	}
}

// Client performs event operations against a single Google calendar.
// It holds no event state between calls.
type Client struct {
	factory    ServiceFactory
	calendarID string
	timeZone   string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithCalendarID selects the calendar to operate on.
func WithCalendarID(id string) Option {
	return func(c *Client) { c.calendarID = id }
}

// WithDefaultTimeZone sets the zone name sent with event times when an event names none.
func WithDefaultTimeZone(tz string) Option {
	return func(c *Client) { c.timeZone = tz }
}

// WithMetrics records every backend call.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides "now" for FindByTitle.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Client.
func NewClient(factory ServiceFactory, opts ...Option) *Client {
	c := &Client{
		factory:    factory,
		calendarID: DefaultCalendarID,
		timeZone:   "UTC",
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) service(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
	if token == nil {
		return nil, fmt.Errorf("no credential supplied")
	}
	return c.factory(ctx, token)
}

// call runs fn inside a client span and records its outcome. Failures come back
// as *ProviderError.
func (c *Client) call(ctx context.Context, token *oauth2.Token, op string, fn func(ctx context.Context, svc *gcal.Service) error, attrs ...attribute.KeyValue) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, op, attrs...)
	defer span.End()

	start := time.Now()
	svc, err := c.service(ctx, token)
	if err == nil {
		err = fn(ctx, svc)
	}
	duration := time.Since(start)

	if err != nil {
		perr := newProviderError(op, err)
		instrumentation.SetSpanError(span, perr)
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, op, instrumentation.StatusError, duration)
		c.logger.WarnContext(ctx, "calendar call failed",
			logging.Operation(op),
			slog.Int("code", perr.Code),
			logging.Err(perr))
		return perr
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, op, instrumentation.StatusSuccess, duration)
	c.logger.DebugContext(ctx, "calendar call", logging.Operation(op), slog.Duration(logging.KeyDuration, duration))
	return nil
}

// Create inserts e and returns the stored event.
func (c *Client) Create(ctx context.Context, token *oauth2.Token, e Event) (*Event, error) {
	tz := e.TimeZone
	if tz == "" {
		tz = c.timeZone
	}
	body := toWire(e, tz)

	var created *gcal.Event
	err := c.call(ctx, token, instrumentation.OperationInsert, func(ctx context.Context, svc *gcal.Service) error {
		var err error
		created, err = svc.Events.Insert(c.calendarID, body).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	out := fromWire(created)
	return &out, nil
}

// List returns up to max single-occurrence events ending after from, ordered by
// start time. A zero from lists without a lower bound.
func (c *Client) List(ctx context.Context, token *oauth2.Token, from time.Time, max int) ([]Event, error) {
	if max <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", max)
	}

	var items []*gcal.Event
	err := c.call(ctx, token, instrumentation.OperationList, func(ctx context.Context, svc *gcal.Service) error {
		call := svc.Events.List(c.calendarID).
			Context(ctx).
			MaxResults(int64(max)).
			SingleEvents(true).
			OrderBy("startTime")
		if !from.IsZero() {
			call = call.TimeMin(from.Format(time.RFC3339))
		}
		resp, err := call.Do()
		if err != nil {
			return err
		}
		items = resp.Items
		return nil
	}, attribute.Int("calendar.max_results", max))
	if err != nil {
		return nil, err
	}

	if len(items) > max {
		items = items[:max]
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		events = append(events, fromWire(item))
	}
	return events, nil
}

// Update re-reads the full remote event, merges p onto it and writes the whole
// body back.
func (c *Client) Update(ctx context.Context, token *oauth2.Token, id string, p Patch) (*Event, error) {
	idAttr := attribute.String(instrumentation.SpanAttrEventID, id)

	var existing *gcal.Event
	err := c.call(ctx, token, instrumentation.OperationGet, func(ctx context.Context, svc *gcal.Service) error {
		var err error
		existing, err = svc.Events.Get(c.calendarID, id).Context(ctx).Do()
		return err
	}, idAttr)
	if err != nil {
		return nil, err
	}

	applyPatch(existing, p, c.timeZone)

	var updated *gcal.Event
	err = c.call(ctx, token, instrumentation.OperationUpdate, func(ctx context.Context, svc *gcal.Service) error {
		var err error
		updated, err = svc.Events.Update(c.calendarID, id, existing).Context(ctx).Do()
		return err
	}, idAttr)
	if err != nil {
		return nil, err
	}

	out := fromWire(updated)
	return &out, nil
}

// Delete removes the event with id.
func (c *Client) Delete(ctx context.Context, token *oauth2.Token, id string) error {
	return c.call(ctx, token, instrumentation.OperationDelete, func(ctx context.Context, svc *gcal.Service) error {
		return svc.Events.Delete(c.calendarID, id).Context(ctx).Do()
	}, attribute.String(instrumentation.SpanAttrEventID, id))
}

// FindByTitle returns the first upcoming event, in start order, whose title equals
// title ignoring case and surrounding space. Past events are never searched.
// It returns ErrNotFound when nothing matched and a *ProviderError when the
// lookup itself failed.
func (c *Client) FindByTitle(ctx context.Context, token *oauth2.Token, title string, max int) (*Event, error) {
	events, err := c.List(ctx, token, c.now(), max)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(title)
	for i := range events {
		if strings.EqualFold(strings.TrimSpace(events[i].Title), want) {
			return &events[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
}

// IsNotFound reports whether err means no matching event exists.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
