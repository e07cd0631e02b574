// Package scheduler implements the event commands offered to the assistant:
// create, list, update-by-title and delete-by-title.
//
// Handlers resolve the caller's credential from the request context, compose
// the time normalizer, conflict checker and calendar client, and always return
// exactly one Result. No error crosses a handler boundary and no handler retries.
//
// Two concurrent creates for the same account can both pass the conflict check
// against the same snapshot. The calendar backend is the only serialization point.
package scheduler
