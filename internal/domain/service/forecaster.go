package service

import "FeeCast/internal/domain/models"

// Forecaster turns one fee snapshot into a seasonal forecast. Implementations
// must be pure: the same input always yields the same result.
type Forecaster interface {
	Run(in models.ForecastInput) (*models.Forecast, error)
}
