package middleware

import (
	"github.com/labstack/echo/v4"

	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type AdminMiddleware struct {
	auth *AuthMiddleware
}

func NewAdminMiddleware(auth *AuthMiddleware) *AdminMiddleware {
	return &AdminMiddleware{
		auth: auth,
	}
}

// AdminOnly admits sessions whose resolved role is admin, including the bypass identity.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := m.auth.ready(c)
		if state.UID() == "" {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		if !state.IsAdmin() {
			return response.Error(c, errors.Forbidden("Admin privileges required", nil))
		}

		c.Set("uid", state.UID())
		return next(c)
	}
}
