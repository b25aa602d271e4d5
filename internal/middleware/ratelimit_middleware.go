// internal/middleware/ratelimit_middleware.go
package middleware

import (
	"context"
	"math"
	"strconv"

	"campuscafe-reports/internal/pkg/ratelimit"
	"campuscafe-reports/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether one more request from identifier is allowed.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (ratelimit.Decision, error)
}

// RateLimit throttles per client IP. When the limiter itself fails the
// request is let through and the failure logged.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable",
				zap.String("client_ip", c.ClientIP()),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.ResetIn.Seconds()))))
			response.TooManyRequests(c, "too many requests, please slow down")
			return
		}

		c.Next()
	}
}
