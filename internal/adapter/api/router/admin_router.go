package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
)

// SetupAdminRouter covers account administration and reporting.
func SetupAdminRouter(v1 *echo.Group, m Middlewares) {
	userHandler := handler.GetUserHandler()
	historyHandler := handler.GetHistoryHandler()
	fulfillmentHandler := handler.GetFulfillmentHandler()

	admin := v1.Group("/admin")
	admin.Use(m.Admin.AdminOnly)

	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.PUT("/users/:id/role", userHandler.SetRole)
	admin.PUT("/users/:id/spend", userHandler.SetTotalSpent)
	admin.POST("/users/:id/password-reset", userHandler.SendPasswordReset)

	admin.GET("/reports/sales", historyHandler.Report)
	admin.GET("/order-logs", fulfillmentHandler.RecentLogs)
}
