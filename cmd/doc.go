// Package cmd implements the command-line interface for schedai.
//
// This package provides the following commands:
//   - serve: Start the HTTP API (Google login, /schedule/query, optional /mcp)
//   - mcp: Serve the calendar tools to an MCP client over stdio
//   - query: Answer a single natural-language request and exit
//   - generate-docs: Generate markdown documentation for the calendar tools
//   - version: Display version information
//
// Every command reads its settings through internal/config; flags override
// the config file and environment.
package cmd
