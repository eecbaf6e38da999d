package forecast

import (
	"sort"

	"FeeCast/internal/domain/models"
)

// Extrapolation is the modeled view of the in-progress cycle.
type Extrapolation struct {
	Points   [7]models.ForecastPoint
	Modeled  [7]float64
	Observed float64
}

// Total is the modeled fee sum for the whole cycle.
func (x Extrapolation) Total() float64 {
	var sum float64
	for _, v := range x.Modeled {
		sum += v
	}
	return sum
}

// CurrentDayFee models a day that started elapsed seconds ago. A day that
// already exceeds spike times the daily average only gets the residual share
// of an average day added; otherwise it is scaled linearly to a full day.
func CurrentDayFee(observed, prevAvg, weight float64, elapsed int64, spike float64) float64 {
	if elapsed >= Day {
		return observed
	}
	if elapsed <= 0 || observed > spike*prevAvg {
		if elapsed < 0 {
			elapsed = 0
		}
		remaining := 1 - float64(elapsed)/float64(Day)
		return observed + prevAvg*7*weight*remaining
	}
	return observed * float64(Day) / float64(elapsed)
}

// SecondBiggest returns the second largest value, or fallback when there
// are fewer than two values or the second one is zero.
func SecondBiggest(values []float64, fallback float64) float64 {
	if len(values) < 2 {
		return fallback
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if sorted[1] == 0 {
		return fallback
	}
	return sorted[1]
}

// FeePerUnit is the fee implied by one unit of seasonal weight, estimated
// from the days whose modeled fee is not a spike relative to second.
func FeePerUnit(modeled map[int]float64, profile [7]float64, second, prevAvg, spike float64) float64 {
	days := make([]int, 0, len(modeled))
	for d := range modeled {
		days = append(days, d)
	}
	sort.Ints(days)

	var fees, weights float64
	for _, d := range days {
		v := modeled[d]
		if v > spike*second {
			continue
		}
		fees += v
		weights += profile[d-1]
	}
	if fees == 0 {
		fees = prevAvg * 7
	}
	if weights == 0 {
		weights = 1
	}
	return fees / weights
}

// Extrapolate fills the seven slots of the cycle starting at reset from the
// records observed so far.
func Extrapolate(current []models.DatedRecord, profile [7]float64, prevAvg float64, now, reset int64, spike float64) Extrapolation {
	var x Extrapolation
	observed := make(map[int]float64)
	modeled := make(map[int]float64)

	for _, r := range current {
		d := r.DayOfWeek
		observed[d] += r.Fees
		x.Observed += r.Fees
		if now-r.Timestamp < Day {
			modeled[d] += CurrentDayFee(r.Fees, prevAvg, profile[d-1], now-r.Timestamp, spike)
		} else {
			modeled[d] += r.Fees
		}
	}

	values := make([]float64, 0, len(modeled))
	for d := 1; d <= 7; d++ {
		if v, ok := modeled[d]; ok {
			values = append(values, v)
		}
	}
	second := SecondBiggest(values, prevAvg)
	perUnit := FeePerUnit(modeled, profile, second, prevAvg, spike)

	for d := 1; d <= 7; d++ {
		v, ok := modeled[d]
		if !ok {
			v = perUnit * profile[d-1]
		}
		x.Modeled[d-1] = v
		x.Points[d-1] = models.ForecastPoint{
			Timestamp: reset + Day*int64(d-1),
			Actual:    observed[d],
			Forecast:  v - observed[d],
		}
	}
	return x
}
