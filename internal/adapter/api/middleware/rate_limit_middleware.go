package middleware

import (
	"fmt"
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"tokoaing/internal/infrastructure/ratelimit"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/logger"
	"tokoaing/pkg/response"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

// Limit throttles action per client IP.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, wait := m.limiter.Allow(ip, action)
			if !allowed {
				seconds := int(math.Ceil(wait.Seconds()))
				logger.Warn("RATE LIMIT: %s blocked for %s (retry in %ds)", ip, action, seconds)

				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return response.Error(c, errors.TooManyRequests(fmt.Sprintf("Too many requests, retry in %d seconds", seconds)))
			}

			return next(c)
		}
	}
}

func (m *RateLimitMiddleware) General() echo.MiddlewareFunc {
	return m.Limit(ratelimit.ActionGeneral)
}
