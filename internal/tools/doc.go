// Package tools exposes the scheduling commands as named tools.
//
// The Registry is a static table built at startup. Each Tool carries a name,
// a description for the model, a JSON schema for its arguments and a handler.
// The Dispatcher validates arguments against the schema before a handler runs,
// instruments every call and renders the outcome as plain text.
//
// The same table is exported to langchaingo (Tool.LLMTool) for the in-process agent
// and to MCP clients (RegisterMCP).
package tools
