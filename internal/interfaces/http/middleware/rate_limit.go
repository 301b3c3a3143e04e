// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const rateWindow = time.Minute

// Limiter counts requests in fixed windows
type Limiter interface {
	FixedWindowAllow(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error)
}

// RateLimit allows limit requests per client IP per minute. Without a
// limiter, or when the limiter fails, requests pass through.
func RateLimit(limiter Limiter, namespace string, limit int, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ratelimit:%s", namespace, c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		allowed, count, err := limiter.FixedWindowAllow(ctx, key, limit, rateWindow)
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(rateWindow.Seconds()),
			})
			return
		}

		c.Next()
	}
}
