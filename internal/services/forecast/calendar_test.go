package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalendar_LastReset(t *testing.T) {
	cal := Calendar{Anchor: DefaultAnchor, WindowWeeks: 10}

	tests := []struct {
		name string
		now  int64
		want int64
	}{
		{"at anchor", DefaultAnchor, DefaultAnchor},
		{"one second before", DefaultAnchor - 1, DefaultAnchor - Week},
		{"one second after", DefaultAnchor + 1, DefaultAnchor},
		{"end of cycle", DefaultAnchor + Week - 1, DefaultAnchor},
		{"next boundary", DefaultAnchor + Week, DefaultAnchor + Week},
		{"far future", DefaultAnchor + 100*Week + 3*Day, DefaultAnchor + 100*Week},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.LastReset(tt.now))
		})
	}
}

func TestCalendar_WindowStart(t *testing.T) {
	cal := Calendar{Anchor: DefaultAnchor, WindowWeeks: 10}
	now := DefaultAnchor + 20*Week + Day
	assert.Equal(t, DefaultAnchor+10*Week, cal.WindowStart(now))
	assert.Equal(t, 11, cal.CurrentWeek())
}

func TestWeekNumberAndDayOfWeek(t *testing.T) {
	ws := DefaultAnchor

	assert.Equal(t, 1, WeekNumber(ws, ws))
	assert.Equal(t, 1, WeekNumber(ws+Week-1, ws))
	assert.Equal(t, 2, WeekNumber(ws+Week, ws))
	assert.Equal(t, 0, WeekNumber(ws-1, ws))

	assert.Equal(t, 1, DayOfWeek(ws, ws))
	assert.Equal(t, 1, DayOfWeek(ws+Day-1, ws))
	assert.Equal(t, 2, DayOfWeek(ws+Day, ws))
	assert.Equal(t, 7, DayOfWeek(ws+6*Day, ws))
	assert.Equal(t, 1, DayOfWeek(ws+7*Day, ws))
	assert.Equal(t, 7, DayOfWeek(ws-1, ws))
}

func TestDayLabels(t *testing.T) {
	labels := DayLabels(DefaultAnchor)
	assert.Equal(t, [7]string{"Wednesday", "Thursday", "Friday", "Saturday", "Sunday", "Monday", "Tuesday"}, labels)
}
