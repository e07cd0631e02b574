package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/schedai/internal/scheduler"
	"github.com/teemow/schedai/internal/tools"
)

// scriptedDecider returns its decisions in order and records what it saw.
type scriptedDecider struct {
	mu        sync.Mutex
	decisions []Decision
	err       error
	seen      [][]Message
	available []*tools.Tool
}

func (d *scriptedDecider) Decide(_ context.Context, messages []Message, available []*tools.Tool) (Decision, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, append([]Message(nil), messages...))
	d.available = available
	if d.err != nil {
		return Decision{}, d.err
	}
	if len(d.decisions) == 0 {
		return Decision{Content: "done"}, nil
	}
	next := d.decisions[0]
	d.decisions = d.decisions[1:]
	return next, nil
}

// stubHandlers answers every command with a fixed text.
type stubHandlers struct {
	mu      sync.Mutex
	creates []scheduler.CreateInput
}

func (s *stubHandlers) Create(_ context.Context, in scheduler.CreateInput) scheduler.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, in)
	return scheduler.Success{Message: "Event '" + in.Title + "' created successfully."}
}

func (s *stubHandlers) List(context.Context, scheduler.ListInput) scheduler.Result {
	return scheduler.Success{Message: "No upcoming events found."}
}

func (s *stubHandlers) Update(context.Context, scheduler.UpdateInput) scheduler.Result {
	return scheduler.Invalid("No event found.")
}

func (s *stubHandlers) Delete(context.Context, scheduler.DeleteInput) scheduler.Result {
	return scheduler.Invalid("No event found.")
}

func newTestDispatcher(t *testing.T) (*tools.Dispatcher, *stubHandlers) {
	t.Helper()
	h := &stubHandlers{}
	reg, err := tools.NewRegistry(h)
	require.NoError(t, err)
	return tools.NewDispatcher(reg), h
}

var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func TestRunner_AnswersWithoutTools(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	decider := &scriptedDecider{decisions: []Decision{{Content: "Hello!"}}}
	runner := NewRunner(decider, dispatcher, WithClock(func() time.Time { return fixedNow }))

	messages, steps, err := runner.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
	require.Len(t, messages, 3)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.True(t, strings.HasPrefix(messages[0].Content, DefaultSystemPrompt))
	assert.Contains(t, messages[0].Content, "2025-06-10T09:00:00Z")
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, messages[1])
	assert.Equal(t, "Hello!", messages[2].Content)
	assert.Len(t, decider.available, 4)
}

func TestRunner_DispatchesToolCalls(t *testing.T) {
	dispatcher, handlers := newTestDispatcher(t)
	decider := &scriptedDecider{decisions: []Decision{
		{ToolCalls: []ToolCall{
			{ID: "call_1", Name: tools.CreateEvent, Arguments: `{"summary":"Lunch","start_time":"tomorrow noon"}`},
			{Name: tools.ListEvents, Arguments: `{}`},
		}},
		{Content: "Lunch is booked."},
	}}
	runner := NewRunner(decider, dispatcher)

	messages, steps, err := runner.Run(context.Background(), "book lunch tomorrow noon")
	require.NoError(t, err)
	assert.Equal(t, 2, steps)
	require.Len(t, messages, 6)

	assert.Equal(t, RoleAssistant, messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 2)
	assert.Equal(t, "call_1", messages[2].ToolCalls[0].ID)
	assert.True(t, strings.HasPrefix(messages[2].ToolCalls[1].ID, "call_"), "missing ids are generated")

	assert.Equal(t, Message{Role: RoleTool, Content: "Event 'Lunch' created successfully.", ToolCallID: "call_1", Name: tools.CreateEvent}, messages[3])
	assert.Equal(t, messages[2].ToolCalls[1].ID, messages[4].ToolCallID)
	assert.Equal(t, "No upcoming events found.", messages[4].Content)
	assert.Equal(t, "Lunch is booked.", messages[5].Content)

	require.Len(t, handlers.creates, 1)
	assert.Equal(t, "tomorrow noon", handlers.creates[0].StartTime)

	// The second decision saw the tool results.
	require.Len(t, decider.seen, 2)
	assert.Len(t, decider.seen[1], 5)
}

func TestRunner_InvalidToolCallReturnsValidationText(t *testing.T) {
	dispatcher, handlers := newTestDispatcher(t)
	decider := &scriptedDecider{decisions: []Decision{
		{ToolCalls: []ToolCall{{Name: tools.CreateEvent, Arguments: `{"summary":"Lunch"}`}}},
		{Content: "I need a start time."},
	}}

	messages, _, err := NewRunner(decider, dispatcher).Run(context.Background(), "book lunch")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(messages[3].Content, "Invalid arguments for create_event"))
	assert.Empty(t, handlers.creates)
}

func TestRunner_StepLimit(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	loop := Decision{ToolCalls: []ToolCall{{Name: tools.ListEvents, Arguments: `{}`}}}
	decider := &scriptedDecider{decisions: []Decision{loop, loop, loop, loop}}

	messages, steps, err := NewRunner(decider, dispatcher, WithMaxSteps(3)).Run(context.Background(), "list forever")
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	assert.Len(t, decider.seen, 3)
	assert.Equal(t, FallbackResponse, LastAssistantText(messages))
}

func TestRunner_DeciderError(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	boom := errors.New("model unavailable")

	_, _, err := NewRunner(&scriptedDecider{err: boom}, dispatcher).Run(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}

func TestRunner_CanceledContext(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	decider := &scriptedDecider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, steps, err := NewRunner(decider, dispatcher).Run(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, steps)
	assert.Empty(t, decider.seen)
}

func TestFacade_Query(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	decider := &scriptedDecider{decisions: []Decision{
		{Content: "Let me check.", ToolCalls: []ToolCall{{Name: tools.ListEvents, Arguments: `{}`}}},
		{Content: ""},
	}}
	facade := NewFacade(NewRunner(decider, dispatcher))

	reply, err := facade.Query(context.Background(), "what is next?")
	require.NoError(t, err)
	assert.Equal(t, "Let me check.", reply, "the last non-blank assistant message is the reply")
}

func TestFacade_EmptyQuery(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	decider := &scriptedDecider{}
	facade := NewFacade(NewRunner(decider, dispatcher))

	_, err := facade.Query(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, decider.seen)
}

func TestFacade_DeciderErrorBubblesUp(t *testing.T) {
	dispatcher, _ := newTestDispatcher(t)
	boom := errors.New("rate limited")
	facade := NewFacade(NewRunner(&scriptedDecider{err: boom}, dispatcher))

	_, err := facade.Query(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}
