package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/instrumentation"
	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/scheduler"
)

// Dispatcher runs tools by name. Every call is traced, counted and audited.
type Dispatcher struct {
	registry *Registry
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMetrics records tool invocations and scheduling outcomes.
func WithMetrics(m *instrumentation.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAuditLogger writes one audit line per invocation.
func WithAuditLogger(a *instrumentation.AuditLogger) DispatcherOption {
	return func(d *Dispatcher) { d.audit = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher creates a Dispatcher over r.
func NewDispatcher(r *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{registry: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the tool table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the tool name with the JSON object rawArgs and returns the
// outcome text.
func (d *Dispatcher) Dispatch(ctx context.Context, name, rawArgs string) string {
	return d.Call(ctx, name, rawArgs).Text()
}

// Call is Dispatch returning the structured Result. Unknown tools, malformed
// JSON and schema violations yield a ValidationError without running a handler.
func (d *Dispatcher) Call(ctx context.Context, name, rawArgs string) scheduler.Result {
	label := instrumentation.BoundedLabel(name, d.registry.Has)
	account := google.AccountFromContext(ctx)

	ctx, span := instrumentation.StartToolSpan(ctx, label)
	defer span.End()

	start := time.Now()
	invocation := instrumentation.NewToolInvocation(label).
		WithAccount(account).
		WithSpanContext(ctx)

	result := d.call(ctx, name, rawArgs)
	duration := time.Since(start)

	outcome := result.Outcome()
	invocation.Complete(outcome, result.Text())
	span.SetAttributes(attribute.String(instrumentation.SpanAttrOutcome, outcome))
	if invocation.Success {
		instrumentation.SetSpanSuccess(span)
	} else {
		instrumentation.SetSpanError(span, resultError{result})
	}

	d.metrics.RecordToolInvocation(ctx, label, invocation.Status(), account, duration)
	d.metrics.RecordScheduleOutcome(ctx, label, outcome)
	d.audit.LogToolInvocation(ctx, invocation)

	d.logger.DebugContext(ctx, "tool dispatched",
		logging.Tool(label),
		slog.String("outcome", outcome),
		slog.Duration(logging.KeyDuration, duration))

	return result
}

func (d *Dispatcher) call(ctx context.Context, name, rawArgs string) scheduler.Result {
	tool := d.registry.Lookup(name)
	if tool == nil {
		return scheduler.Invalid("Unknown tool '%s'.", name)
	}

	args, err := decodeArgs(rawArgs)
	if err != nil {
		return scheduler.Invalid("Invalid arguments for %s: malformed JSON: %v", name, err)
	}
	if err := Validate(tool, args); err != nil {
		return scheduler.Invalid("Invalid arguments for %s: %v", name, err)
	}

	normalized, err := json.Marshal(args)
	if err != nil {
		return scheduler.Invalid("Invalid arguments for %s: %v", name, err)
	}
	return tool.Call(ctx, normalized)
}

// resultError presents a failed Result as an error for span status.
type resultError struct {
	result scheduler.Result
}

func (e resultError) Error() string {
	return e.result.Outcome() + ": " + e.result.Text()
}
