package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
	"tokoaing/internal/infrastructure/ratelimit"
)

func SetupOrderRouter(v1 *echo.Group, m Middlewares) {
	orderHandler := handler.GetOrderHandler()
	fulfillmentHandler := handler.GetFulfillmentHandler()

	orders := v1.Group("/orders")
	orders.Use(m.Auth.RequireUser)
	orders.POST("", orderHandler.PlaceOrder, m.RateLimit.Limit(ratelimit.ActionPlaceOrder))

	admin := v1.Group("/admin/orders")
	admin.Use(m.Admin.AdminOnly)
	admin.GET("", orderHandler.ListPending)
	admin.POST("/:id/confirm", fulfillmentHandler.Confirm)
	admin.POST("/:id/reject", fulfillmentHandler.Reject)
	admin.GET("/:id/logs", fulfillmentHandler.OrderLogs)
}
