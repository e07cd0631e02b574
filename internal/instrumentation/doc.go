// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for schedai.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Calendar API calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Calendar API call durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of login callbacks by result
//
// Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//   - schedule_outcomes_total: Counter of tool results by outcome kind
//
// Agent Metrics:
//   - agent_queries_total: Counter of natural-language queries by status
//   - agent_query_duration_seconds: Histogram of end-to-end query durations
//   - agent_steps_per_query: Histogram of model decisions per query
//
// # Configuration
//
// Configuration is read from environment variables by DefaultConfig:
//
//	INSTRUMENTATION_ENABLED=true
//	METRICS_EXPORTER=prometheus        # prometheus, otlp, stdout
//	TRACING_EXPORTER=none              # otlp, stdout, none
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4318
//	OTEL_TRACES_SAMPLER_ARG=0.1
//	METRICS_DETAILED_LABELS=false
//	AUDIT_LOGGING_ENABLED=true
//	AUDIT_LOGGING_INCLUDE_PII=false
package instrumentation
