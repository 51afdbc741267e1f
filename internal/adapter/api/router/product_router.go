package router

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/handler"
)

func SetupProductRouter(v1 *echo.Group, m Middlewares) {
	productHandler := handler.GetProductHandler()

	products := v1.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)

	admin := v1.Group("/admin/products")
	admin.Use(m.Admin.AdminOnly)
	admin.POST("", productHandler.CreateProduct)
	admin.PUT("/:id", productHandler.UpdateProduct)
	admin.DELETE("/:id", productHandler.DeleteProduct)
	admin.POST("/:id/image", productHandler.UploadImage)
}
