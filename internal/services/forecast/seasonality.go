package forecast

import (
	"fmt"
	"sort"

	"FeeCast/internal/domain/models"
)

// WeekTotals sums fees per completed week (week numbers below currentWeek).
func WeekTotals(records []models.DatedRecord, currentWeek int) map[int]float64 {
	totals := make(map[int]float64)
	for _, r := range records {
		if r.WeekNumber >= currentWeek {
			continue
		}
		totals[r.WeekNumber] += r.Fees
	}
	return totals
}

// DayFraction is the share of its week's total that a record carries.
// A week with a zero total yields 0 for every day.
func DayFraction(r models.DatedRecord, totals map[int]float64) float64 {
	total := totals[r.WeekNumber]
	if total == 0 {
		return 0
	}
	return r.Fees / total
}

// ExcludedWeeks marks every completed week that has a single day above threshold.
func ExcludedWeeks(records []models.DatedRecord, totals map[int]float64, currentWeek int, threshold float64) map[int]bool {
	excluded := make(map[int]bool)
	for _, r := range records {
		if r.WeekNumber >= currentWeek {
			continue
		}
		if DayFraction(r, totals) > threshold {
			excluded[r.WeekNumber] = true
		}
	}
	return excluded
}

// SortedWeeks returns the keys of a week set in ascending order.
func SortedWeeks(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

// Profile averages day fractions over the non-excluded completed weeks.
// The divisor is windowWeeks minus the excluded count, so a week with no
// records still counts as a zero contribution.
func Profile(records []models.DatedRecord, totals map[int]float64, excluded map[int]bool, windowWeeks int) ([7]float64, error) {
	var profile [7]float64
	usable := windowWeeks - len(excluded)
	if usable <= 0 {
		return profile, fmt.Errorf("%w: all %d weeks excluded", ErrDegenerateModel, windowWeeks)
	}
	for _, r := range records {
		if r.WeekNumber > windowWeeks || excluded[r.WeekNumber] {
			continue
		}
		profile[r.DayOfWeek-1] += DayFraction(r, totals) / float64(usable)
	}
	return profile, nil
}

// PreviousAverageFee is the mean daily fee over completed weeks that have
// records and are not excluded.
func PreviousAverageFee(totals map[int]float64, excluded map[int]bool) (float64, error) {
	weeks := make([]int, 0, len(totals))
	for w := range totals {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	var sum float64
	var count int
	for _, w := range weeks {
		if excluded[w] {
			continue
		}
		sum += totals[w]
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no usable completed week", ErrDegenerateModel)
	}
	return sum / float64(7*count), nil
}
