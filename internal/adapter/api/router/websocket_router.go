package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the live channel endpoint. It sits behind the session
// middleware so browsers authenticate with the sid cookie.
func SetupWebSocketRouter(v1 *echo.Group) {
	wsHandler := handler.GetWebSocketHandler()
	v1.GET("/ws", wsHandler.HandleWebSocket)
}
