// Package resources provides MCP resources for exposing calendar data.
// Resources are read-only data sources that MCP clients can fetch without
// invoking a tool.
//
// The account a resource reads is the one pinned to the session (see
// tools.BindAccount), or the default account.
package resources
