package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FeeCast/internal/domain/models"
	"FeeCast/internal/service/metrics"
	"FeeCast/internal/services/forecast"
	"FeeCast/internal/usecase"
	"FeeCast/pkg/cache"
	xhttp "FeeCast/pkg/http"
	xlogger "FeeCast/pkg/logger"
	"FeeCast/pkg/util"
)

// ForecastComputer is what the handler needs from the forecast use case.
type ForecastComputer interface {
	Compute(ctx context.Context, asOf int64) (*models.Forecast, error)
}

// ForecastEchoHandler serves the forecast, its seasonal profile and the weekly chart.
type ForecastEchoHandler struct {
	logger *xlogger.Logger
	uc     ForecastComputer
	cache  cache.Service
	ttl    time.Duration
}

var _ xhttp.Handler = (*ForecastEchoHandler)(nil)

func NewForecastEchoHandler(logger *xlogger.Logger, uc ForecastComputer) *ForecastEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, uc: uc}
}

// SetCache enables result caching for ttl. A nil cache disables it.
func (h *ForecastEchoHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	h.ttl = ttl
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	g.GET("", h.Forecast)
	g.GET("/seasonality", h.Seasonality)
	g.GET("/chart", h.Chart)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := h.load(c, req.AsOf, req.Refresh)
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, models.ForecastView{
		Forecast:     f,
		NowUTC:       util.FormatUnix(f.Now),
		LastResetUTC: util.FormatUnix(f.LastReset),
	})
}

func (h *ForecastEchoHandler) Seasonality(c echo.Context) error {
	defer observe("seasonality", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := h.load(c, req.AsOf, req.Refresh)
	if err != nil {
		return h.fail(c, "seasonality", err)
	}
	excluded := f.ExcludedWeeks
	if excluded == nil {
		excluded = []int{}
	}
	return xhttp.SuccessResponse(c, models.SeasonalityView{
		LastReset:     f.LastReset,
		ExcludedWeeks: excluded,
		Weights:       f.Weights(),
	})
}

func (h *ForecastEchoHandler) Chart(c echo.Context) error {
	defer observe("chart", time.Now())
	req := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := h.load(c, req.AsOf, req.Refresh)
	if err != nil {
		return h.fail(c, "chart", err)
	}
	return xhttp.SuccessResponse(c, chartView(f, req.Series))
}

func chartView(f *models.Forecast, series string) models.ChartView {
	out := models.ChartView{Series: series, Points: make([]models.ChartPoint, 0, len(f.Points))}
	for _, p := range f.Points {
		actual, fc := p.Actual, p.Forecast
		cp := models.ChartPoint{Timestamp: p.Timestamp}
		if series != "forecast" {
			cp.Actual = &actual
		}
		if series != "actual" {
			cp.Forecast = &fc
		}
		out.Points = append(out.Points, cp)
	}
	return out
}

// load returns the cached forecast for asOf unless refresh is set, computing
// and storing it on a miss.
func (h *ForecastEchoHandler) load(c echo.Context, asOfRaw string, refresh bool) (*models.Forecast, error) {
	var asOf int64
	if asOfRaw != "" {
		t, ok := util.ParseTime(asOfRaw)
		if !ok {
			return nil, xhttp.NewAppError("ERR_INVALID_TIME", "as_of", "as_of must be RFC3339 or unix seconds", http.StatusBadRequest)
		}
		asOf = t.Unix()
	}

	ctx := c.Request().Context()
	key := usecase.ForecastCacheKey(asOf)
	if h.cache != nil && !refresh {
		var cached models.Forecast
		switch err := h.cache.Get(ctx, key, &cached); {
		case err == nil:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.Response().Header().Set("X-Cache", "HIT")
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		default:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("forecast.cache get_error", xlogger.String("key", key), xlogger.Error(err))
		}
	}

	f, err := h.uc.Compute(ctx, asOf)
	if err != nil {
		return nil, err
	}
	c.Response().Header().Set("X-Cache", "MISS")
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, f, h.ttl); err != nil {
			h.logger.Warn("forecast.cache set_error", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return f, nil
}

func (h *ForecastEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	appErr := mapError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("forecast."+endpoint+" error", xlogger.Error(err), xlogger.Int("status", appErr.Status))
	} else {
		h.logger.Warn("forecast."+endpoint+" rejected", xlogger.Error(err), xlogger.Int("status", appErr.Status))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func mapError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, usecase.ErrFutureAsOf), errors.Is(err, usecase.ErrAsOfTooOld):
		return xhttp.NewAppError("ERR_AS_OF_RANGE", "as_of", err.Error(), http.StatusBadRequest)
	case errors.Is(err, forecast.ErrMissingData):
		return xhttp.BadGatewayError("ERR_MISSING_DATA", "upstream returned incomplete data").WithError(err)
	case errors.Is(err, forecast.ErrMalformedData):
		return xhttp.UnprocessableError("ERR_MALFORMED_DATA", "upstream returned malformed fee data").WithError(err)
	case errors.Is(err, forecast.ErrDegenerateModel):
		return xhttp.UnprocessableError("ERR_DEGENERATE_MODEL", "not enough usable history to build a seasonal profile").WithError(err)
	case errors.Is(err, forecast.ErrDivisionByZero):
		return xhttp.UnprocessableError("ERR_DIVISION_BY_ZERO", "pool valuation or elapsed cycle time is zero").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream did not answer in time").WithError(err)
	case errors.Is(err, usecase.ErrUpstream):
		return xhttp.BadGatewayError("ERR_UPSTREAM", "fee source unavailable").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
