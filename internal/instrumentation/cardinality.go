package instrumentation

// Tool names arrive from the language model and are untrusted. Label values
// outside the registered set collapse to "unknown" so a misbehaving model
// cannot create unbounded series.

// LabelUnknown replaces label values outside an allowed set.
const LabelUnknown = "unknown"

// BoundedLabel returns value when allowed reports it as known, otherwise LabelUnknown.
//
// Example:
//
//	BoundedLabel("create_event", registry.Has)  // "create_event"
//	BoundedLabel("rm_rf", registry.Has)         // "unknown"
func BoundedLabel(value string, allowed func(string) bool) string {
	if value == "" || allowed == nil || !allowed(value) {
		return LabelUnknown
	}
	return value
}

// Calendar API operation names used for metrics and span names.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationInsert = "insert"
	OperationUpdate = "update"
	OperationDelete = "delete"
)
