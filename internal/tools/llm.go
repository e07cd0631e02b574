package tools

import (
	"github.com/tmc/langchaingo/llms"
)

// LLMTool returns t as a langchaingo function tool.
func (t *Tool) LLMTool() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Schema,
		},
	}
}
