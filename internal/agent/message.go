package agent

import "strings"

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a request from the decider to run a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools.
	ToolCalls []ToolCall
	// ToolCallID and Name are set on tool messages.
	ToolCallID string
	Name       string
}

// FallbackResponse is returned when no assistant message has content.
const FallbackResponse = "No response content available."

// LastAssistantText returns the content of the last assistant message whose
// content is not blank. The content is returned unmodified.
func LastAssistantText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == RoleAssistant && strings.TrimSpace(m.Content) != "" {
			return m.Content
		}
	}
	return FallbackResponse
}
