package models

// Requests for forecast HTTP endpoints.

type ForecastRequest struct {
	AsOf    string `query:"as_of" json:"as_of" validate:"omitempty,max=40"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type ChartRequest struct {
	AsOf    string `query:"as_of" json:"as_of" validate:"omitempty,max=40"`
	Refresh bool   `query:"refresh" json:"refresh"`
	Series  string `query:"series" json:"series" default:"all" validate:"oneof=all actual forecast"`
}

// ForecastView is the /api/forecast payload: the forecast plus readable timestamps.
type ForecastView struct {
	*Forecast
	NowUTC       string `json:"now_utc"`
	LastResetUTC string `json:"last_reset_utc"`
}

type SeasonalityView struct {
	LastReset     int64            `json:"last_reset"`
	ExcludedWeeks []int            `json:"excluded_weeks"`
	Weights       []SeasonalWeight `json:"weights"`
}

// ChartPoint carries whichever series were requested; absent ones are omitted.
type ChartPoint struct {
	Timestamp int64    `json:"timestamp"`
	Actual    *float64 `json:"actual,omitempty"`
	Forecast  *float64 `json:"forecast,omitempty"`
}

type ChartView struct {
	Series string       `json:"series"`
	Points []ChartPoint `json:"points"`
}
