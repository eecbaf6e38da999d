package models

import "time"

// ForecastInput is everything the engine needs for one run.
type ForecastInput struct {
	PoolValuationRaw  string
	ValuationDecimals int32
	Records           []RawFeeRecord
	FeeDecimals       int32
	Now               int64
}

type ForecastPoint struct {
	Timestamp int64   `json:"timestamp"`
	Actual    float64 `json:"actual"`
	Forecast  float64 `json:"forecast"`
}

type SeasonalWeight struct {
	Day    string  `json:"day"`
	Weight float64 `json:"weight"`
}

// Forecast is the engine result. All rate fields are annualized fractions.
type Forecast struct {
	Now               int64            `json:"now"`
	LastReset         int64            `json:"last_reset"`
	PoolValuation     float64          `json:"pool_valuation"`
	CurrentPeriodFees float64          `json:"current_period_fees"`
	PriorPeriodFees   float64          `json:"prior_period_fees"`
	ModeledWeekFees   float64          `json:"modeled_week_fees"`
	RealizedRate      float64          `json:"realized_rate"`
	InProgressRate    float64          `json:"in_progress_rate"`
	ForecastRate      float64          `json:"forecast_rate"`
	SeasonalProfile   [7]float64       `json:"seasonal_profile"`
	DayLabels         [7]string        `json:"day_labels"`
	ExcludedWeeks     []int            `json:"excluded_weeks"`
	Points            [7]ForecastPoint `json:"points"`
}

// Weights pairs each profile slot with its weekday label.
func (f *Forecast) Weights() []SeasonalWeight {
	out := make([]SeasonalWeight, 0, len(f.SeasonalProfile))
	for i, w := range f.SeasonalProfile {
		out = append(out, SeasonalWeight{Day: f.DayLabels[i], Weight: w})
	}
	return out
}

// ForecastEvent is the envelope published after a scheduled recompute.
type ForecastEvent struct {
	ID       string    `json:"id"`
	Forecast Forecast  `json:"forecast"`
	SentAt   time.Time `json:"sent_at"`
}
