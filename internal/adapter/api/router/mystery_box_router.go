package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
)

func SetupMysteryBoxRouter(v1 *echo.Group, m Middlewares) {
	mysteryBoxHandler := handler.GetMysteryBoxHandler()
	leaderboardHandler := handler.GetLeaderboardHandler()

	v1.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

	admin := v1.Group("/admin/mystery-box")
	admin.Use(m.Admin.AdminOnly)
	admin.GET("/candidates", mysteryBoxHandler.Candidates)
	admin.PUT("/:uid", mysteryBoxHandler.SetFlag)
}
