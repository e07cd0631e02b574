package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/teemow/schedai/internal/tools"
)

// LLMDecider asks a langchaingo model for the next step.
type LLMDecider struct {
	model llms.Model
	opts  []llms.CallOption
}

// NewLLMDecider creates a decider over model. opts are added to every call.
func NewLLMDecider(model llms.Model, opts ...llms.CallOption) *LLMDecider {
	return &LLMDecider{model: model, opts: opts}
}

// Decide implements Decider.
func (d *LLMDecider) Decide(ctx context.Context, messages []Message, available []*tools.Tool) (Decision, error) {
	opts := append([]llms.CallOption(nil), d.opts...)
	if len(available) > 0 {
		defs := make([]llms.Tool, 0, len(available))
		for _, t := range available {
			defs = append(defs, t.LLMTool())
		}
		opts = append(opts, llms.WithTools(defs))
	}

	resp, err := d.model.GenerateContent(ctx, toMessageContent(messages), opts...)
	if err != nil {
		return Decision{}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Decision{}, fmt.Errorf("empty response from model")
	}

	choice := resp.Choices[0]
	decision := Decision{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		decision.ToolCalls = append(decision.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return decision, nil
}

func toMessageContent(history []Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case RoleAssistant:
			var parts []llms.ContentPart
			if m.Content != "" {
				parts = append(parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			// Providers reject assistant messages without parts.
			if len(parts) == 0 {
				parts = append(parts, llms.TextPart(" "))
			}
			messages = append(messages, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts})
		case RoleTool:
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.Name,
						Content:    m.Content,
					},
				},
			})
		}
	}
	return messages
}
