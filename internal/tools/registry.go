package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/teemow/schedai/internal/scheduler"
)

// Tool names.
const (
	CreateEvent = "create_event"
	ListEvents  = "list_events"
	UpdateEvent = "update_event"
	DeleteEvent = "delete_event"
)

// Handlers runs the scheduling commands. *scheduler.Service implements it.
type Handlers interface {
	Create(ctx context.Context, in scheduler.CreateInput) scheduler.Result
	List(ctx context.Context, in scheduler.ListInput) scheduler.Result
	Update(ctx context.Context, in scheduler.UpdateInput) scheduler.Result
	Delete(ctx context.Context, in scheduler.DeleteInput) scheduler.Result
}

// Tool is one entry of the table.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	// Call runs the handler on arguments that already passed validation.
	Call func(ctx context.Context, args json.RawMessage) scheduler.Result

	resolved *jsonschema.Resolved
}

// Registry is the static tool table.
type Registry struct {
	tools map[string]*Tool
	names []string
}

// NewRegistry builds the table for h.
func NewRegistry(h Handlers) (*Registry, error) {
	return newRegistry(
		&Tool{
			Name:        CreateEvent,
			Description: "Create a Google Calendar event with title, time, location, and more. Checks for conflicts and avoids past events. Times may be ISO-8601 or natural language such as 'tomorrow 3pm'.",
			Schema:      createSchema(),
			Call:        bind(h.Create),
		},
		&Tool{
			Name:        ListEvents,
			Description: "List your next calendar events. Optionally takes the number of events to return.",
			Schema:      listSchema(),
			Call:        bind(h.List),
		},
		&Tool{
			Name:        UpdateEvent,
			Description: "Update a calendar event by title. You can change summary, start time, and end time.",
			Schema:      updateSchema(),
			Call:        bind(h.Update),
		},
		&Tool{
			Name:        DeleteEvent,
			Description: "Delete a calendar event by title.",
			Schema:      deleteSchema(),
			Call:        bind(h.Delete),
		},
	)
}

func newRegistry(tools ...*Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		if _, dup := r.tools[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		resolved, err := t.Schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("invalid schema for tool %q: %w", t.Name, err)
		}
		t.resolved = resolved
		r.tools[t.Name] = t
		r.names = append(r.names, t.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// bind adapts a typed handler to raw JSON arguments.
func bind[In any](fn func(context.Context, In) scheduler.Result) func(context.Context, json.RawMessage) scheduler.Result {
	return func(ctx context.Context, args json.RawMessage) scheduler.Result {
		var in In
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return scheduler.Invalid("Invalid arguments: %v", err)
			}
		}
		return fn(ctx, in)
	}
}

// Lookup returns the tool named name, or nil.
func (r *Registry) Lookup(name string) *Tool {
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Tools returns the registered tools in name order.
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}
