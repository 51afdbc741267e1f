package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
	"tokoaing/internal/infrastructure/ratelimit"
)

// SetupAuthRouter initializes session and account routes
func SetupAuthRouter(v1 *echo.Group, m Middlewares) {
	sessionHandler := handler.GetSessionHandler()
	authHandler := handler.GetAuthHandler()

	session := v1.Group("/session")
	session.GET("", sessionHandler.GetSession)
	session.DELETE("", sessionHandler.End)
	session.POST("/login", sessionHandler.Login, m.RateLimit.Limit(ratelimit.ActionLogin))
	session.POST("/bypass", sessionHandler.Bypass, m.RateLimit.Limit(ratelimit.ActionBypass))
	session.POST("/logout", sessionHandler.Logout)
	session.POST("/theme/toggle", sessionHandler.ToggleTheme)

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register, m.RateLimit.Limit(ratelimit.ActionLogin))
	auth.POST("/forgot-password", authHandler.ForgotPassword, m.RateLimit.Limit(ratelimit.ActionLogin))
}
