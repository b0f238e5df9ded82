package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rollcall/pkg/domain-errors"
)

func mustWindow(t *testing.T, day Day, start, end string) Window {
	t.Helper()
	s, err := ParseClock(start)
	require.NoError(t, err)
	e, err := ParseClock(end)
	require.NoError(t, err)
	w, err := NewWindow(day, s, e)
	require.NoError(t, err)
	return w
}

func TestNewWindow_Invariants(t *testing.T) {
	t.Run("rejects start at or after end", func(t *testing.T) {
		_, err := NewWindow(Monday, 600, 600)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))

		_, err = NewWindow(Monday, 700, 600)
		require.Error(t, err)
	})

	t.Run("rejects out-of-day minutes", func(t *testing.T) {
		_, err := NewWindow(Monday, -1, 60)
		require.Error(t, err)

		_, err = NewWindow(Monday, 600, 1440)
		require.Error(t, err)
	})

	t.Run("rejects invalid day", func(t *testing.T) {
		_, err := NewWindow(Day(6), 480, 600)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConfig))
	})
}

func TestWindow_Overlaps(t *testing.T) {
	monMorning := mustWindow(t, Monday, "08:00", "10:00")

	tests := []struct {
		name  string
		other Window
		want  bool
	}{
		{"partial overlap later", mustWindow(t, Monday, "09:00", "11:00"), true},
		{"partial overlap earlier", mustWindow(t, Monday, "07:00", "08:30"), true},
		{"fully contained", mustWindow(t, Monday, "08:30", "09:30"), true},
		{"touching boundary after", mustWindow(t, Monday, "10:00", "12:00"), false},
		{"touching boundary before", mustWindow(t, Monday, "06:00", "08:00"), false},
		{"same range other day", mustWindow(t, Tuesday, "08:00", "10:00"), false},
		{"disjoint same day", mustWindow(t, Monday, "14:00", "16:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monMorning.Overlaps(tt.other))
			// Overlap is symmetric.
			assert.Equal(t, tt.want, tt.other.Overlaps(monMorning))
		})
	}

	t.Run("window overlaps itself", func(t *testing.T) {
		assert.True(t, monMorning.Overlaps(monMorning))
	})
}

func TestWindow_Contains(t *testing.T) {
	w := mustWindow(t, Monday, "08:00", "10:00")

	tests := []struct {
		name   string
		day    Day
		minute string
		want   bool
	}{
		{"inside", Monday, "08:05", true},
		{"start boundary inclusive", Monday, "08:00", true},
		{"end boundary inclusive", Monday, "10:00", true},
		{"before start", Monday, "07:59", false},
		{"after end", Monday, "10:01", false},
		{"wrong day", Tuesday, "08:05", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseClock(tt.minute)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Contains(tt.day, m))
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Run("parses valid times", func(t *testing.T) {
		m, err := ParseClock("08:05")
		require.NoError(t, err)
		assert.Equal(t, Minute(485), m)
		assert.Equal(t, "08:05", m.Clock())
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		for _, raw := range []string{"", "8am", "25:00", "08:60", "08-05"} {
			_, err := ParseClock(raw)
			require.Error(t, err, "raw %q", raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestFromWeekday(t *testing.T) {
	t.Run("maps teaching days", func(t *testing.T) {
		d, err := FromWeekday(time.Monday)
		require.NoError(t, err)
		assert.Equal(t, Monday, d)

		d, err = FromWeekday(time.Saturday)
		require.NoError(t, err)
		assert.Equal(t, Saturday, d)
	})

	t.Run("rejects sunday", func(t *testing.T) {
		_, err := FromWeekday(time.Sunday)
		require.Error(t, err)
	})
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay(" Monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, d)

	_, err = ParseDay("sunday")
	require.Error(t, err)
}
