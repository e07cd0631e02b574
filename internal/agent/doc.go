// Package agent turns a natural-language request into tool calls and a reply.
//
// A Decider (normally a language model behind langchaingo) sees the
// conversation and the tool table and either asks for tool calls or answers.
// The Runner feeds tool results back until the decider answers or the step
// limit is reached. The Facade returns the text of the last assistant message
// that has content, or FallbackResponse.
package agent
