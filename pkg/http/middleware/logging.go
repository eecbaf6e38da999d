package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "FeeCast/pkg/logger"
)

// RequestLogging logs one line per request. Requests slower than slow are
// logged at warn level; a zero slow disables that.
func RequestLogging(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if l == nil {
				return err
			}
			if err != nil {
				// let echo's error handler settle the final status
				c.Error(err)
			}

			req := c.Request()
			latency := time.Since(start)
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("duration_ms", latency),
			}
			switch {
			case c.Response().Status >= 500:
				l.Error("http request", fields...)
			case slow > 0 && latency >= slow:
				l.Warn("http request slow", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
