package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
)

func SetupTicketRouter(v1 *echo.Group, m Middlewares) {
	ticketHandler := handler.GetTicketHandler()

	tickets := v1.Group("/tickets")
	tickets.GET("", ticketHandler.ListTickets)
	tickets.GET("/sales", ticketHandler.GetSales)
	tickets.GET("/:id", ticketHandler.GetTicket)

	admin := v1.Group("/admin/tickets")
	admin.Use(m.Admin.AdminOnly)
	admin.POST("", ticketHandler.CreateTicket)
	admin.PUT("/sales", ticketHandler.SetSales)
	admin.PUT("/:id", ticketHandler.UpdateTicket)
	admin.DELETE("/:id", ticketHandler.DeleteTicket)

	// gate scanning
	admin.GET("/lookup/:barcode", ticketHandler.Lookup)
	admin.POST("/scan", ticketHandler.MarkUsed)
}
