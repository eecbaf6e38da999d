package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeeCast/internal/domain/models"
)

func week(ws int64, w int, fees ...float64) []models.DatedRecord {
	out := make([]models.DatedRecord, 0, len(fees))
	for i, f := range fees {
		ts := ws + int64(w-1)*Week + int64(i)*Day
		out = append(out, models.DatedRecord{
			FeeRecord:  models.FeeRecord{Timestamp: ts, Fees: f},
			DayOfWeek:  i + 1,
			WeekNumber: w,
		})
	}
	return out
}

func TestProfile_SingleWeek(t *testing.T) {
	recs := week(DefaultAnchor, 1, 10, 10, 10, 10, 10, 10, 40)
	totals := WeekTotals(recs, 2)
	assert.Equal(t, map[int]float64{1: 100}, totals)

	excluded := ExcludedWeeks(recs, totals, 2, 0.5)
	assert.Empty(t, excluded)

	profile, err := Profile(recs, totals, excluded, 1)
	require.NoError(t, err)
	want := [7]float64{.1, .1, .1, .1, .1, .1, .4}
	for i := range want {
		assert.InDelta(t, want[i], profile[i], 1e-12)
	}
}

func TestExcludedWeeks_SpikeWeek(t *testing.T) {
	recs := week(DefaultAnchor, 1, 5, 5, 5, 5, 5, 5, 70)
	totals := WeekTotals(recs, 2)
	excluded := ExcludedWeeks(recs, totals, 2, 0.5)
	assert.Equal(t, []int{1}, SortedWeeks(excluded))

	_, err := Profile(recs, totals, excluded, 1)
	assert.ErrorIs(t, err, ErrDegenerateModel)

	_, err = PreviousAverageFee(totals, excluded)
	assert.ErrorIs(t, err, ErrDegenerateModel)
}

func TestExcludedWeeks_Monotonic(t *testing.T) {
	tests := []struct {
		name     string
		fees     []float64
		excluded bool
	}{
		{"exactly half", []float64{50, 10, 10, 10, 10, 10, 0}, false},
		{"just above half", []float64{51, 10, 10, 10, 10, 9, 0}, true},
		{"flat", []float64{1, 1, 1, 1, 1, 1, 1}, false},
		{"single day", []float64{0, 0, 0, 7, 0, 0, 0}, true},
		{"all zero", []float64{0, 0, 0, 0, 0, 0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := week(DefaultAnchor, 1, tt.fees...)
			totals := WeekTotals(recs, 2)
			excluded := ExcludedWeeks(recs, totals, 2, 0.5)
			assert.Equal(t, tt.excluded, excluded[1])
		})
	}
}

func TestProfile_AveragesWithoutExclusions(t *testing.T) {
	ws := DefaultAnchor
	recs := append(week(ws, 1, 10, 10, 10, 10, 10, 10, 40), week(ws, 2, 20, 10, 10, 10, 20, 10, 20)...)
	totals := WeekTotals(recs, 3)
	excluded := ExcludedWeeks(recs, totals, 3, 0.5)
	require.Empty(t, excluded)

	profile, err := Profile(recs, totals, excluded, 2)
	require.NoError(t, err)

	w1 := [7]float64{.1, .1, .1, .1, .1, .1, .4}
	w2 := [7]float64{.2, .1, .1, .1, .2, .1, .2}
	var sum float64
	for i := range profile {
		assert.InDelta(t, (w1[i]+w2[i])/2, profile[i], 1e-12)
		assert.GreaterOrEqual(t, profile[i], 0.0)
		sum += profile[i]
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	avg, err := PreviousAverageFee(totals, excluded)
	require.NoError(t, err)
	assert.InDelta(t, 200.0/14.0, avg, 1e-12)
}

func TestProfile_ExcludedWeekShrinksDivisor(t *testing.T) {
	ws := DefaultAnchor
	recs := append(week(ws, 1, 10, 10, 10, 10, 10, 10, 40), week(ws, 2, 5, 5, 5, 5, 5, 5, 70)...)
	totals := WeekTotals(recs, 3)
	excluded := ExcludedWeeks(recs, totals, 3, 0.5)
	assert.Equal(t, []int{2}, SortedWeeks(excluded))

	profile, err := Profile(recs, totals, excluded, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, profile[6], 1e-12)

	avg, err := PreviousAverageFee(totals, excluded)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/7.0, avg, 1e-12)
}

func TestProfile_MissingWeekCountsAsZero(t *testing.T) {
	// Only week 2 of a two-week window has records.
	recs := week(DefaultAnchor, 2, 10, 10, 10, 10, 10, 10, 40)
	totals := WeekTotals(recs, 3)
	excluded := ExcludedWeeks(recs, totals, 3, 0.5)

	profile, err := Profile(recs, totals, excluded, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, profile[6], 1e-12)
	assert.InDelta(t, 0.05, profile[0], 1e-12)
}

func TestDayFraction_ZeroWeek(t *testing.T) {
	recs := week(DefaultAnchor, 1, 0, 0, 0, 0, 0, 0, 0)
	totals := WeekTotals(recs, 2)
	for _, r := range recs {
		assert.Equal(t, 0.0, DayFraction(r, totals))
	}
}

func TestWeekTotals_IgnoresCurrentWeek(t *testing.T) {
	recs := append(week(DefaultAnchor, 1, 1, 1, 1, 1, 1, 1, 1), week(DefaultAnchor, 2, 100)...)
	totals := WeekTotals(recs, 2)
	assert.Equal(t, map[int]float64{1: 7}, totals)
}
