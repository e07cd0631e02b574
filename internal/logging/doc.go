// Package logging provides structured logging helpers for schedai.
//
// All packages log through log/slog with the attribute keys defined here so
// that tool calls, calendar operations and HTTP requests can be correlated.
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.insert")
//	logger.Info("event created", logging.Status(logging.StatusSuccess))
//
// Account names are hashed before they reach audit lines and tokens are never
// logged directly:
//
//	logger.Info("token saved", logging.AccountHash(account))
package logging
