package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks args against the tool's schema. It has no side effects.
func Validate(tool *Tool, args map[string]any) error {
	if tool == nil {
		return fmt.Errorf("unknown tool")
	}
	if args == nil {
		args = map[string]any{}
	}
	return tool.resolved.Validate(args)
}

// decodeArgs parses raw tool arguments. Blank input means no arguments.
func decodeArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	return args, nil
}
