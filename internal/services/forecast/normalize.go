package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"FeeCast/internal/domain/models"
)

// ShiftDecimal interprets raw as an integer scaled by 10^shift.
func ShiftDecimal(raw string, shift int32) (float64, error) {
	d, err := shiftDecimal(raw, shift)
	if err != nil {
		return 0, err
	}
	return toFloat(d)
}

// toFloat rejects values too large for float64.
func toFloat(d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: value out of range", ErrMalformedData)
	}
	return f, nil
}

func shiftDecimal(raw string, shift int32) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, ErrMissingData
	}
	if shift < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative shift %d", ErrMalformedData, shift)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedData, raw)
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return d.Shift(-shift), nil
}

// NormalizeRecord sums the fee components of one raw record.
func NormalizeRecord(r models.RawFeeRecord, shift int32) (models.FeeRecord, error) {
	if len(r.Components) == 0 {
		return models.FeeRecord{}, fmt.Errorf("record %d: %w", r.Timestamp, ErrMissingData)
	}
	sum := decimal.Zero
	for i, c := range r.Components {
		v, err := shiftDecimal(c, shift)
		if err != nil {
			return models.FeeRecord{}, fmt.Errorf("record %d component %d: %w", r.Timestamp, i, err)
		}
		sum = sum.Add(v)
	}
	fees, err := toFloat(sum)
	if err != nil {
		return models.FeeRecord{}, fmt.Errorf("record %d: %w", r.Timestamp, err)
	}
	return models.FeeRecord{Timestamp: r.Timestamp, Fees: fees}, nil
}

// Date assigns window-relative positions and drops records outside weeks
// 1..currentWeek. Output is ordered by timestamp.
func Date(records []models.FeeRecord, windowStart int64, currentWeek int) []models.DatedRecord {
	out := make([]models.DatedRecord, 0, len(records))
	for _, r := range records {
		w := WeekNumber(r.Timestamp, windowStart)
		if w < 1 || w > currentWeek {
			continue
		}
		out = append(out, models.DatedRecord{
			FeeRecord:  r,
			DayOfWeek:  DayOfWeek(r.Timestamp, windowStart),
			WeekNumber: w,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
