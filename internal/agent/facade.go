package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/logging"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("query must not be empty")

// Facade answers natural-language scheduling requests.
type Facade struct {
	runner  *Runner
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithMetrics records every query.
func WithMetrics(m *instrumentation.Metrics) FacadeOption {
	return func(f *Facade) { f.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) FacadeOption {
	return func(f *Facade) { f.logger = l }
}

// NewFacade creates a Facade.
func NewFacade(runner *Runner, opts ...FacadeOption) *Facade {
	f := &Facade{runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Query runs the agent on text and returns the reply shown to the user.
func (f *Facade) Query(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyQuery
	}

	intent := ClassifyIntent(text)
	ctx, span := instrumentation.StartAgentSpan(ctx, attribute.String("agent.intent", string(intent)))
	defer span.End()

	start := time.Now()
	messages, steps, err := f.runner.Run(ctx, text)
	duration := time.Since(start)
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrSteps, steps))

	if err != nil {
		instrumentation.SetSpanError(span, err)
		f.metrics.RecordAgentQuery(ctx, instrumentation.StatusError, steps, duration)
		f.logger.ErrorContext(ctx, "agent query failed",
			slog.String("intent", string(intent)),
			slog.Int("steps", steps),
			logging.Err(err))
		return "", err
	}

	instrumentation.SetSpanSuccess(span)
	f.metrics.RecordAgentQuery(ctx, instrumentation.StatusSuccess, steps, duration)
	f.logger.InfoContext(ctx, "agent query",
		slog.String("intent", string(intent)),
		slog.Int("steps", steps),
		slog.Duration(logging.KeyDuration, duration))

	return LastAssistantText(messages), nil
}
