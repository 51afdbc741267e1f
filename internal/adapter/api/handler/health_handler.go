package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tokoaing/pkg/response"
)

type HealthHandler struct {
	contactURL string
}

func NewHealthHandler(contactURL string) *HealthHandler {
	return &HealthHandler{
		contactURL: contactURL,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Contact returns the chat link buyers use for disputes and prize claims.
func (h *HealthHandler) Contact(c echo.Context) error {
	return response.Success(c, map[string]string{"contactUrl": h.contactURL})
}
