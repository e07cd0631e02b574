package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorTag_Code(t *testing.T) {
	assert.Equal(t, "11", ColorHigh.Code())
	assert.Equal(t, "7", ColorMedium.Code())
	assert.Equal(t, "5", ColorNormal.Code())
	assert.Equal(t, "5", ColorTag("").Code())
}

func TestParseColorTag(t *testing.T) {
	for in, want := range map[string]ColorTag{"": ColorNormal, "HIGH": ColorHigh, " medium ": ColorMedium, "normal": ColorNormal} {
		got, err := ParseColorTag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColorTag("purple")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusBusy, got)

	got, err = ParseStatus("Free")
	require.NoError(t, err)
	assert.Equal(t, StatusFree, got)

	_, err = ParseStatus("tentative")
	assert.Error(t, err)
}

func TestReminder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       Reminder
		wantErr bool
	}{
		{"popup", Reminder{Method: ReminderPopup, MinutesBefore: 10}, false},
		{"email at zero", Reminder{Method: ReminderEmail, MinutesBefore: 0}, false},
		{"four weeks", Reminder{Method: ReminderPopup, MinutesBefore: MaxReminderMinutes}, false},
		{"too far", Reminder{Method: ReminderPopup, MinutesBefore: MaxReminderMinutes + 1}, true},
		{"negative", Reminder{Method: ReminderPopup, MinutesBefore: -1}, true},
		{"sms", Reminder{Method: "sms", MinutesBefore: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }
	win := func(a, b int) TimeWindow { return TimeWindow{Start: at(a), End: at(b)} }

	tests := []struct {
		name string
		a, b TimeWindow
		want bool
	}{
		{"identical", win(0, 30), win(0, 30), true},
		{"partial overlap", win(15, 45), win(0, 30), true},
		{"contained", win(5, 10), win(0, 30), true},
		{"containing", win(-10, 40), win(0, 30), true},
		{"touching after", win(30, 60), win(0, 30), false},
		{"touching before", win(-30, 0), win(0, 30), false},
		{"disjoint", win(60, 90), win(0, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestTimeWindow_Valid(t *testing.T) {
	now := time.Now()
	assert.True(t, TimeWindow{Start: now, End: now.Add(time.Minute)}.Valid())
	assert.False(t, TimeWindow{Start: now, End: now}.Valid())
	assert.False(t, TimeWindow{End: now}.Valid())
	assert.False(t, TimeWindow{Start: now}.Valid())
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.True(t, Patch{TimeZone: "UTC"}.Empty())
	title := "x"
	assert.False(t, Patch{Title: &title}.Empty())
}
