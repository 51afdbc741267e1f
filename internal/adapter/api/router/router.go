package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
)

// Middlewares bundles what the route groups need.
type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Admin     *middleware.AdminMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func Setup(e *echo.Echo, m Middlewares) {
	SetupHealthRouter(e)

	v1 := e.Group("/v1")
	v1.Use(m.RateLimit.General())
	v1.Use(m.Auth.Session)

	SetupAuthRouter(v1, m)
	SetupUserRouter(v1, m)
	SetupProductRouter(v1, m)
	SetupTicketRouter(v1, m)
	SetupOrderRouter(v1, m)
	SetupMysteryBoxRouter(v1, m)
	SetupAdminRouter(v1, m)
	SetupWebSocketRouter(v1)
}
