package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimitedEcho(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.Use(rl.Middleware())
	e.GET("/api/forecast", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func doGet(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/forecast", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(rate.Limit(10), 10))
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doGet(e, "10.0.0.1").Code)
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(rate.Limit(1), 1))

	assert.Equal(t, http.StatusOK, doGet(e, "10.0.0.1").Code)
	rec := doGet(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_RetryAfterRoundsUp(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(rate.Limit(0.25), 1))

	doGet(e, "10.0.0.1")
	rec := doGet(e, "10.0.0.1")
	assert.Equal(t, "4", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(rate.Limit(1), 1))

	assert.Equal(t, http.StatusOK, doGet(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(e, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doGet(e, "10.0.0.2").Code)
}
