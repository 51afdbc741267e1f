package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
	"tokoaing/internal/infrastructure/ratelimit"
)

// SetupUserRouter wires the signed-in user's own surface under /v1/me.
func SetupUserRouter(v1 *echo.Group, m Middlewares) {
	authHandler := handler.GetAuthHandler()
	orderHandler := handler.GetOrderHandler()
	ticketHandler := handler.GetTicketHandler()
	inboxHandler := handler.GetInboxHandler()
	historyHandler := handler.GetHistoryHandler()
	mysteryBoxHandler := handler.GetMysteryBoxHandler()

	me := v1.Group("/me")
	me.Use(m.Auth.RequireUser)

	me.GET("", authHandler.Me)
	me.PUT("/credentials", authHandler.UpdateCredentials, m.RateLimit.Limit(ratelimit.ActionLogin))
	me.GET("/orders", orderHandler.MyPending)
	me.GET("/history", historyHandler.MyHistory)
	me.GET("/tickets", ticketHandler.MyTickets)
	me.GET("/inbox/:kind", inboxHandler.List)
	me.POST("/inbox/:kind/read", inboxHandler.MarkAllRead)
	me.GET("/mystery-box", mysteryBoxHandler.State)
	me.POST("/mystery-box/open", mysteryBoxHandler.Open, m.RateLimit.Limit(ratelimit.ActionOpenBox))
}
