package forecast

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeeCast/internal/domain/models"
)

var testReset = DefaultAnchor + 52*Week

func rawDays(start int64, fees ...int64) []models.RawFeeRecord {
	out := make([]models.RawFeeRecord, 0, len(fees))
	for i, f := range fees {
		out = append(out, models.RawFeeRecord{
			Timestamp:  start + int64(i)*Day,
			Components: []string{strconv.FormatInt(f, 10), "0", "0", "0"},
		})
	}
	return out
}

func scale(fees []int64, k int64) []int64 {
	out := make([]int64, len(fees))
	for i, f := range fees {
		out[i] = f * k
	}
	return out
}

func baseInput(k int64) models.ForecastInput {
	history := scale([]int64{10, 10, 10, 10, 10, 10, 40}, k)
	current := scale([]int64{20, 20, 5}, k)
	records := append(rawDays(testReset-Week, history...), rawDays(testReset, current...)...)
	return models.ForecastInput{
		PoolValuationRaw: "1000000",
		Records:          records,
		Now:              testReset + 2*Day + Day/2,
	}
}

func TestEngine_Run(t *testing.T) {
	e := New(Params{WindowWeeks: 1})
	out, err := e.Run(baseInput(1))
	require.NoError(t, err)

	assert.Equal(t, testReset, out.LastReset)
	assert.Equal(t, testReset+2*Day+Day/2, out.Now)
	assert.InDelta(t, 1e6, out.PoolValuation, 1e-9)
	assert.InDelta(t, 100.0, out.PriorPeriodFees, 1e-9)
	assert.InDelta(t, 45.0, out.CurrentPeriodFees, 1e-9)
	assert.InDelta(t, 500.0/3, out.ModeledWeekFees, 1e-9)

	for i, w := range profileA {
		assert.InDelta(t, w, out.SeasonalProfile[i], 1e-12)
	}
	assert.Empty(t, out.ExcludedWeeks)
	assert.Equal(t, "Wednesday", out.DayLabels[0])
	assert.Equal(t, "Tuesday", out.DayLabels[6])

	assert.InDelta(t, 0.7*100*365/(7*1e6), out.RealizedRate, 1e-12)
	assert.InDelta(t, 0.7*45*365/(2.5*1e6), out.InProgressRate, 1e-12)
	assert.InDelta(t, 0.7*(500.0/3)*365/(7*1e6), out.ForecastRate, 1e-12)
}

func TestEngine_PointsSumToModeledWeek(t *testing.T) {
	out, err := New(Params{WindowWeeks: 1}).Run(baseInput(1))
	require.NoError(t, err)

	var sum float64
	for i, p := range out.Points {
		assert.Equal(t, out.LastReset+int64(i)*Day, p.Timestamp)
		sum += p.Actual + p.Forecast
	}
	assert.InDelta(t, out.ModeledWeekFees, sum, 1e-9)
	assert.InDelta(t, 0.7*sum*365/(7*out.PoolValuation), out.ForecastRate, 1e-12)
}

func TestEngine_Linearity(t *testing.T) {
	e := New(Params{WindowWeeks: 1})
	base, err := e.Run(baseInput(1))
	require.NoError(t, err)
	scaled, err := e.Run(baseInput(3))
	require.NoError(t, err)

	assert.InDelta(t, 3*base.RealizedRate, scaled.RealizedRate, 1e-12)
	assert.InDelta(t, 3*base.InProgressRate, scaled.InProgressRate, 1e-12)
	assert.InDelta(t, 3*base.ForecastRate, scaled.ForecastRate, 1e-12)
	assert.Equal(t, base.SeasonalProfile, scaled.SeasonalProfile)
}

func TestEngine_IgnoresRecordsAfterNow(t *testing.T) {
	e := New(Params{WindowWeeks: 1})
	base, err := e.Run(baseInput(1))
	require.NoError(t, err)

	in := baseInput(1)
	in.Records = append(in.Records, rawDays(testReset+5*Day, 999999)...)
	got, err := e.Run(in)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestEngine_IgnoresBrokenRecordsBeforeWindow(t *testing.T) {
	e := New(Params{WindowWeeks: 1})
	base, err := e.Run(baseInput(1))
	require.NoError(t, err)

	in := baseInput(1)
	in.Records = append(in.Records,
		models.RawFeeRecord{Timestamp: testReset - 3*Week, Components: []string{"", "0", "0", "0"}},
		models.RawFeeRecord{Timestamp: testReset - Week - Day, Components: []string{"abc", "0", "0", "0"}},
	)
	got, err := e.Run(in)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestEngine_OverflowIsMalformed(t *testing.T) {
	in := baseInput(1)
	in.Records[0].Components[0] = strings.Repeat("9", 500)
	_, err := New(Params{WindowWeeks: 1}).Run(in)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestEngine_FixedPointInputs(t *testing.T) {
	in := models.ForecastInput{
		PoolValuationRaw:  "1000000000000000000000000",
		ValuationDecimals: 18,
		FeeDecimals:       30,
		Now:               testReset + Day,
	}
	for i := 0; i < 7; i++ {
		in.Records = append(in.Records, models.RawFeeRecord{
			Timestamp:  testReset - Week + int64(i)*Day,
			Components: []string{"7000000000000000000000000000000", "1000000000000000000000000000000", "1000000000000000000000000000000", "1000000000000000000000000000000"},
		})
	}

	out, err := New(Params{WindowWeeks: 1}).Run(in)
	require.NoError(t, err)
	assert.InDelta(t, 1e6, out.PoolValuation, 1e-6)
	assert.InDelta(t, 70.0, out.PriorPeriodFees, 1e-9)
}

func TestEngine_Errors(t *testing.T) {
	e := New(Params{WindowWeeks: 1})

	t.Run("zero pool", func(t *testing.T) {
		in := baseInput(1)
		in.PoolValuationRaw = "0"
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("missing pool", func(t *testing.T) {
		in := baseInput(1)
		in.PoolValuationRaw = ""
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrMissingData)
	})

	t.Run("malformed fee", func(t *testing.T) {
		in := baseInput(1)
		in.Records[0].Components[1] = "0x10"
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrMalformedData)
	})

	t.Run("at reset instant", func(t *testing.T) {
		in := baseInput(1)
		in.Now = testReset
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})

	t.Run("every week anomalous", func(t *testing.T) {
		in := models.ForecastInput{
			PoolValuationRaw: "1000",
			Records:          rawDays(testReset-Week, 5, 5, 5, 5, 5, 5, 70),
			Now:              testReset + Day,
		}
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrDegenerateModel)
	})

	t.Run("no history", func(t *testing.T) {
		in := models.ForecastInput{
			PoolValuationRaw: "1000",
			Records:          rawDays(testReset, 5),
			Now:              testReset + Day,
		}
		_, err := e.Run(in)
		assert.ErrorIs(t, err, ErrDegenerateModel)
	})
}

func TestEngine_ZeroFeeWeek(t *testing.T) {
	in := models.ForecastInput{
		PoolValuationRaw: "1000",
		Records:          rawDays(testReset-Week, 0, 0, 0, 0, 0, 0, 0),
		Now:              testReset + Day,
	}
	out, err := New(Params{WindowWeeks: 1}).Run(in)
	require.NoError(t, err)
	assert.Equal(t, [7]float64{}, out.SeasonalProfile)
	assert.Equal(t, 0.0, out.ForecastRate)
	assert.Equal(t, 0.0, out.RealizedRate)
}

func TestNew_Defaults(t *testing.T) {
	p := New(Params{}).Params()
	assert.Equal(t, DefaultParams(), p)
}
