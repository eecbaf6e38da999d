package forecast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeeCast/internal/domain/models"
)

func TestShiftDecimal(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shift int32
		want  float64
	}{
		{"pool valuation", "1000000000000000000000000", 18, 1000000},
		{"shorter than shift", "5", 3, 0.005},
		{"zero shift", "42", 0, 42},
		{"zero", "0", 30, 0},
		{"fractional", "123456", 2, 1234.56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShiftDecimal(tt.raw, tt.shift)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestShiftDecimal_Errors(t *testing.T) {
	_, err := ShiftDecimal("", 18)
	assert.ErrorIs(t, err, ErrMissingData)

	for _, raw := range []string{"12a", "-5", "1.5", " 1", "1e9"} {
		_, err := ShiftDecimal(raw, 2)
		assert.ErrorIs(t, err, ErrMalformedData, raw)
	}

	_, err = ShiftDecimal("1", -1)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestNormalizeRecord(t *testing.T) {
	r, err := NormalizeRecord(models.RawFeeRecord{
		Timestamp:  DefaultAnchor,
		Components: []string{"1500", "250", "0", "50"},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, DefaultAnchor, r.Timestamp)
	assert.InDelta(t, 18.0, r.Fees, 1e-12)

	_, err = NormalizeRecord(models.RawFeeRecord{Timestamp: 1, Components: []string{"1", ""}}, 0)
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = NormalizeRecord(models.RawFeeRecord{Timestamp: 1}, 0)
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestDate_DropsOutsideWindow(t *testing.T) {
	ws := DefaultAnchor
	recs := []models.FeeRecord{
		{Timestamp: ws + 2*Week + Day, Fees: 3},
		{Timestamp: ws - Day, Fees: 1},
		{Timestamp: ws, Fees: 2},
		{Timestamp: ws + 3*Week, Fees: 4},
	}
	dated := Date(recs, ws, 3)
	require.Len(t, dated, 2)

	assert.Equal(t, ws, dated[0].Timestamp)
	assert.Equal(t, 1, dated[0].WeekNumber)
	assert.Equal(t, 1, dated[0].DayOfWeek)

	assert.Equal(t, 3, dated[1].WeekNumber)
	assert.Equal(t, 2, dated[1].DayOfWeek)
}

func TestShiftDecimal_OutOfRange(t *testing.T) {
	_, err := ShiftDecimal(strings.Repeat("1", 400), 0)
	assert.ErrorIs(t, err, ErrMalformedData)

	_, err = NormalizeRecord(models.RawFeeRecord{
		Timestamp:  1674000000,
		Components: []string{strings.Repeat("9", 308), strings.Repeat("9", 308), "0", "0"},
	}, 0)
	assert.ErrorIs(t, err, ErrMalformedData)
}
