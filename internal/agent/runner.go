package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/schedai/internal/logging"
	"github.com/teemow/schedai/internal/tools"
)

// DefaultMaxSteps bounds the decisions taken for one query.
const DefaultMaxSteps = 8

// Decision is the decider's answer for one step. A decision without tool
// calls ends the run.
type Decision struct {
	Content   string
	ToolCalls []ToolCall
}

// Decider chooses the next step of a conversation.
type Decider interface {
	Decide(ctx context.Context, messages []Message, available []*tools.Tool) (Decision, error)
}

// Dispatcher runs a tool and renders its outcome. *tools.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, name, rawArgs string) string
	Registry() *tools.Registry
}

// Runner drives the decide and dispatch loop.
type Runner struct {
	decider    Decider
	dispatcher Dispatcher
	maxSteps   int
	prompt     string
	now        func() time.Time
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMaxSteps bounds the number of decisions per query.
func WithMaxSteps(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) RunnerOption {
	return func(r *Runner) { r.prompt = prompt }
}

// WithClock sets the clock used for the time given to the model.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner.
func NewRunner(decider Decider, dispatcher Dispatcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		decider:    decider,
		dispatcher: dispatcher,
		maxSteps:   DefaultMaxSteps,
		prompt:     DefaultSystemPrompt,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run answers query and returns the whole conversation together with the
// number of decisions taken. Tool calls run in the order requested. When the
// step limit is hit the conversation so far is returned without error.
func (r *Runner) Run(ctx context.Context, query string) ([]Message, int, error) {
	messages := []Message{
		systemMessage(r.prompt, r.now()),
		{Role: RoleUser, Content: query},
	}
	available := r.dispatcher.Registry().Tools()

	for step := 1; step <= r.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return messages, step - 1, err
		}

		decision, err := r.decider.Decide(ctx, messages, available)
		if err != nil {
			return messages, step, fmt.Errorf("decision step %d failed: %w", step, err)
		}

		calls := make([]ToolCall, len(decision.ToolCalls))
		for i, call := range decision.ToolCalls {
			if call.ID == "" {
				call.ID = "call_" + uuid.NewString()
			}
			calls[i] = call
		}
		messages = append(messages, Message{Role: RoleAssistant, Content: decision.Content, ToolCalls: calls})

		if len(calls) == 0 {
			return messages, step, nil
		}

		for _, call := range calls {
			result := r.dispatcher.Dispatch(ctx, call.Name, call.Arguments)
			r.logger.DebugContext(ctx, "tool result", logging.Tool(call.Name), slog.Int("step", step))
			messages = append(messages, Message{
				Role:       RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	r.logger.WarnContext(ctx, "agent step limit reached", slog.Int("max_steps", r.maxSteps))
	return messages, r.maxSteps, nil
}
