// Package google provides OAuth2 configuration and per-account token storage
// for the Google Calendar API.
//
// Tokens are resolved through the TokenStore interface. Three backends exist:
// MemoryTokenStore for tests and single-process use, FileTokenStore for local
// installs and ValkeyTokenStore for deployments with more than one replica.
//
// The account a request acts for travels in the context (ContextWithAccount)
// and defaults to "default".
package google
