package forecast

import (
	"fmt"
	"math"

	"FeeCast/internal/domain/models"
	"FeeCast/internal/domain/service"
)

// Params tunes the engine. Zero fields fall back to DefaultParams.
type Params struct {
	Anchor           int64
	WindowWeeks      int
	AnomalyThreshold float64
	SpikeMultiplier  float64
	RewardShare      float64
}

func DefaultParams() Params {
	return Params{
		Anchor:           DefaultAnchor,
		WindowWeeks:      10,
		AnomalyThreshold: 0.5,
		SpikeMultiplier:  5,
		RewardShare:      0.7,
	}
}

// Engine turns a fee snapshot into a seasonal forecast. It holds no state
// between runs and is safe for concurrent use.
type Engine struct {
	p   Params
	cal Calendar
}

var _ service.Forecaster = (*Engine)(nil)

func New(p Params) *Engine {
	def := DefaultParams()
	if p.Anchor == 0 {
		p.Anchor = def.Anchor
	}
	if p.WindowWeeks <= 0 {
		p.WindowWeeks = def.WindowWeeks
	}
	if p.AnomalyThreshold <= 0 {
		p.AnomalyThreshold = def.AnomalyThreshold
	}
	if p.SpikeMultiplier <= 0 {
		p.SpikeMultiplier = def.SpikeMultiplier
	}
	if p.RewardShare <= 0 {
		p.RewardShare = def.RewardShare
	}
	return &Engine{p: p, cal: Calendar{Anchor: p.Anchor, WindowWeeks: p.WindowWeeks}}
}

func (e *Engine) Params() Params { return e.p }

// Run computes the forecast for in.Now. Records stamped after Now or before
// the window start are ignored.
func (e *Engine) Run(in models.ForecastInput) (*models.Forecast, error) {
	pool, err := ShiftDecimal(in.PoolValuationRaw, in.ValuationDecimals)
	if err != nil {
		return nil, fmt.Errorf("pool valuation: %w", err)
	}

	reset := e.cal.LastReset(in.Now)
	windowStart := e.cal.WindowStart(in.Now)
	currentWeek := e.cal.CurrentWeek()

	// Records before the window are skipped before normalizing.
	records := make([]models.FeeRecord, 0, len(in.Records))
	for _, raw := range in.Records {
		if raw.Timestamp > in.Now || WeekNumber(raw.Timestamp, windowStart) < 1 {
			continue
		}
		r, err := NormalizeRecord(raw, in.FeeDecimals)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	dated := Date(records, windowStart, currentWeek)

	totals := WeekTotals(dated, currentWeek)
	excluded := ExcludedWeeks(dated, totals, currentWeek, e.p.AnomalyThreshold)
	profile, err := Profile(dated, totals, excluded, e.p.WindowWeeks)
	if err != nil {
		return nil, err
	}
	prevAvg, err := PreviousAverageFee(totals, excluded)
	if err != nil {
		return nil, err
	}

	current := make([]models.DatedRecord, 0, 7)
	for _, r := range dated {
		if r.WeekNumber == currentWeek {
			current = append(current, r)
		}
	}
	x := Extrapolate(current, profile, prevAvg, in.Now, reset, e.p.SpikeMultiplier)
	modeled := x.Total()
	prior := totals[e.p.WindowWeeks]

	realized, err := RealizedRate(e.p.RewardShare, prior, pool)
	if err != nil {
		return nil, err
	}
	inProgress, err := InProgressRate(e.p.RewardShare, x.Observed, in.Now-reset, pool)
	if err != nil {
		return nil, err
	}
	forecastRate, err := ForecastRate(e.p.RewardShare, modeled, pool)
	if err != nil {
		return nil, err
	}

	out := &models.Forecast{
		Now:               in.Now,
		LastReset:         reset,
		PoolValuation:     pool,
		CurrentPeriodFees: x.Observed,
		PriorPeriodFees:   prior,
		ModeledWeekFees:   modeled,
		RealizedRate:      realized,
		InProgressRate:    inProgress,
		ForecastRate:      forecastRate,
		SeasonalProfile:   profile,
		DayLabels:         DayLabels(windowStart),
		ExcludedWeeks:     SortedWeeks(excluded),
		Points:            x.Points,
	}
	if err := checkFinite(out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkFinite(f *models.Forecast) error {
	vals := []float64{f.PoolValuation, f.ModeledWeekFees, f.RealizedRate, f.InProgressRate, f.ForecastRate}
	for _, v := range f.SeasonalProfile {
		vals = append(vals, v)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite result", ErrDegenerateModel)
		}
	}
	return nil
}
