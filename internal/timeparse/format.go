package timeparse

import "time"

// Format renders t as RFC3339 with an explicit offset. Fractional seconds are
// included only when present.
func Format(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
