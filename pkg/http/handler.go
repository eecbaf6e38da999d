package http

import "github.com/labstack/echo/v4"

// Handler mounts a group of API routes on the shared Echo instance.
// NewServer calls RegisterRoutes once per handler before Start.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
