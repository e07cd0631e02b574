package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/schedai/internal/calendar"
	"github.com/teemow/schedai/internal/conflict"
	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/timeparse"
)

const (
	// DefaultDuration is the length of an event created without an end time.
	DefaultDuration = 30 * time.Minute
	// DefaultListSize is the number of events List returns when none is requested.
	DefaultListSize = 5
	// MaxListSize caps a single List.
	MaxListSize = 50
	// DefaultFindLimit is how many upcoming events a title lookup searches.
	DefaultFindLimit = 10
)

// Calendar is the event backend. *calendar.Client implements it.
type Calendar interface {
	Create(ctx context.Context, token *oauth2.Token, e calendar.Event) (*calendar.Event, error)
	List(ctx context.Context, token *oauth2.Token, from time.Time, max int) ([]calendar.Event, error)
	Update(ctx context.Context, token *oauth2.Token, id string, p calendar.Patch) (*calendar.Event, error)
	Delete(ctx context.Context, token *oauth2.Token, id string) error
	FindByTitle(ctx context.Context, token *oauth2.Token, title string, max int) (*calendar.Event, error)
}

// Credentials resolves the token of an account. google.TokenStore implements it.
type Credentials interface {
	Resolve(ctx context.Context, account string) (*oauth2.Token, error)
}

// Service runs the event commands. It keeps no event state between calls.
type Service struct {
	calendar    Calendar
	credentials Credentials
	normalizer  *timeparse.Normalizer
	checker     *conflict.Checker

	now             func() time.Time
	lookAhead       int
	defaultDuration time.Duration
	listSize        int
	findLimit       int
	timeZoneName    string
	logger          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides "now" for the past-event check and list anchoring.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLookAhead sets how many upcoming events a conflict check inspects.
func WithLookAhead(n int) Option {
	return func(s *Service) { s.lookAhead = n }
}

// WithDefaultDuration sets the length of events created without an end time.
func WithDefaultDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

// WithListSize sets the default number of listed events.
func WithListSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.listSize = n
		}
	}
}

// WithFindLimit sets how many upcoming events a title lookup searches.
func WithFindLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.findLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(cal Calendar, credentials Credentials, normalizer *timeparse.Normalizer, opts ...Option) *Service {
	s := &Service{
		calendar:        cal,
		credentials:     credentials,
		normalizer:      normalizer,
		now:             normalizer.Now,
		lookAhead:       conflict.DefaultLookAhead,
		defaultDuration: DefaultDuration,
		listSize:        DefaultListSize,
		findLimit:       DefaultFindLimit,
		timeZoneName:    normalizer.Location().String(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.checker = conflict.NewChecker(cal, conflict.WithLookAhead(s.lookAhead))
	return s
}

// credential resolves the token of the account in ctx. A nil token with a
// non-nil Result means the handler must stop.
func (s *Service) credential(ctx context.Context) (*oauth2.Token, Result) {
	account := google.AccountFromContext(ctx)
	token, err := s.credentials.Resolve(ctx, account)
	if errors.Is(err, google.ErrNoToken) || (err == nil && token == nil) {
		s.logger.DebugContext(ctx, "no credential", logging.AccountHash(account))
		return nil, AuthRequired{Account: account}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to resolve credential", logging.AccountHash(account), logging.Err(err))
		return nil, ProviderError{Action: "resolving credentials", Err: err}
	}
	return token, nil
}

// location returns the zone for parsing and its wire name. An empty name
// selects the service defaults.
func (s *Service) location(name string) (*time.Location, string, error) {
	if name == "" {
		return s.normalizer.Location(), s.timeZoneName, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, "", err
	}
	return loc, name, nil
}
