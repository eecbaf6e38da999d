package forecast

import "time"

const (
	Day  int64 = 86400
	Week       = 7 * Day

	// DefaultAnchor is a Wednesday 00:00 UTC, the reward reset instant.
	DefaultAnchor int64 = 1674000000
)

// Calendar maps timestamps onto the weekly reset cycle.
type Calendar struct {
	Anchor      int64
	WindowWeeks int
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// LastReset returns the most recent reset boundary at or before now.
func (c Calendar) LastReset(now int64) int64 {
	return now - floorMod(now-c.Anchor, Week)
}

// WindowStart is the boundary WindowWeeks cycles before LastReset.
func (c Calendar) WindowStart(now int64) int64 {
	return c.LastReset(now) - int64(c.WindowWeeks)*Week
}

// CurrentWeek is the week number of the in-progress cycle.
func (c Calendar) CurrentWeek() int {
	return c.WindowWeeks + 1
}

// WeekNumber is 1 for the first cycle after windowStart.
func WeekNumber(ts, windowStart int64) int {
	return int(floorDiv(ts-windowStart, Week)) + 1
}

// DayOfWeek is 1 for the first day after windowStart, cycling through 7.
func DayOfWeek(ts, windowStart int64) int {
	return int(floorMod(floorDiv(ts-windowStart, Day), 7)) + 1
}

// DayLabels names the seven profile slots, starting at the weekday of windowStart.
func DayLabels(windowStart int64) [7]string {
	var out [7]string
	for i := range out {
		out[i] = time.Unix(windowStart+int64(i)*Day, 0).UTC().Weekday().String()
	}
	return out
}
