package usecase

import "FeeCast/pkg/cache"

// ForecastCacheKey names the cached result for asOf; zero is the live forecast.
func ForecastCacheKey(asOf int64) string {
	if asOf == 0 {
		return cache.GenerateKey("forecast", "latest")
	}
	return cache.GenerateKeyWithParams("forecast", "asof", asOf)
}
