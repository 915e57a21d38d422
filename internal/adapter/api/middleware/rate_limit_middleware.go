package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"royalchat/internal/infrastructure/ratelimit"
	"royalchat/pkg/errors"
	"royalchat/pkg/response"
)

// RateLimit throttles a route by client IP. Per-user limits on sensitive
// operations are enforced inside the use cases; this is the outer guard
// against unauthenticated floods.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, waitTime := limiter.Allow(c.RealIP(), action)
			if !allowed {
				return response.Error(c, errors.TooManyRequests(
					fmt.Sprintf("Too many requests. Try again in %d seconds", int(waitTime.Seconds())+1)))
			}

			return next(c)
		}
	}
}
