package forecast

import "fmt"

const daysPerYear = 365

// RealizedRate annualizes the fees of the last completed cycle.
func RealizedRate(share, priorFees, pool float64) (float64, error) {
	if pool == 0 {
		return 0, fmt.Errorf("realized rate: %w: pool valuation is zero", ErrDivisionByZero)
	}
	return share * priorFees * daysPerYear / (7 * pool), nil
}

// InProgressRate annualizes the fees observed since the last reset.
func InProgressRate(share, currentFees float64, elapsed int64, pool float64) (float64, error) {
	if pool == 0 {
		return 0, fmt.Errorf("in-progress rate: %w: pool valuation is zero", ErrDivisionByZero)
	}
	if elapsed <= 0 {
		return 0, fmt.Errorf("in-progress rate: %w: no time elapsed since reset", ErrDivisionByZero)
	}
	return share * currentFees * float64(Day) * daysPerYear / (float64(elapsed) * pool), nil
}

// ForecastRate annualizes the modeled fees of the whole current cycle.
func ForecastRate(share, modeledFees, pool float64) (float64, error) {
	if pool == 0 {
		return 0, fmt.Errorf("forecast rate: %w: pool valuation is zero", ErrDivisionByZero)
	}
	return share * modeledFees * daysPerYear / (7 * pool), nil
}
