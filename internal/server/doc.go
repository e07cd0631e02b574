// Package server provides the schedai HTTP API.
//
// Routes:
//   - GET /auth/login?account=: redirects to the Google consent screen with a
//     one-shot state bound to the account
//   - GET /auth/callback: exchanges the code and stores the token
//   - POST /schedule/query: answers {"query": "..."} with {"response": "..."}
//     for the account named by the X-Account header
//   - /mcp: the tool table over streamable HTTP (optional)
//   - /healthz, /readyz, /healthz/detailed: Kubernetes probes
//
// Prometheus metrics are served by MetricsServer on a separate port.
package server
