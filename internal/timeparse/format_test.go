package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	dhaka := mustLoad(t, "Asia/Dhaka")

	assert.Equal(t, "2025-06-11T10:00:00+06:00", Format(time.Date(2025, 6, 11, 10, 0, 0, 0, dhaka)))
	assert.Equal(t, "2025-06-11T10:00:00Z", Format(time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-11T10:00:00.25Z", Format(time.Date(2025, 6, 11, 10, 0, 0, 250000000, time.UTC)))
}

func TestFormatParseRoundTrip(t *testing.T) {
	n := fixedNormalizer(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))

	instants := []time.Time{
		time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 59, 0, mustLoad(t, "Asia/Dhaka")),
		time.Date(2026, 3, 29, 1, 30, 0, 0, mustLoad(t, "Europe/Berlin")),
		time.Date(2025, 11, 2, 1, 30, 0, 0, mustLoad(t, "America/New_York")),
		time.Date(2025, 1, 1, 0, 0, 0, 987654321, time.FixedZone("", -3*60*60-30*60)),
	}

	for _, x := range instants {
		t.Run(Format(x), func(t *testing.T) {
			got, err := n.Parse(Format(x))
			require.NoError(t, err)
			assert.True(t, x.Equal(got), "want %s, got %s", x, got)

			_, wantOffset := x.Zone()
			_, gotOffset := got.Zone()
			assert.Equal(t, wantOffset, gotOffset)
		})
	}
}
