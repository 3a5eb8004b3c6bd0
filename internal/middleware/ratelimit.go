package middleware

import (
	"errors"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/ratelimit"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// RateLimit enforces the per-identity minute/hour windows. Must run after
// Auth so the identity is resolved; falls back to client IP for safety.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentUserID(c)
		if identity == "" {
			identity = c.ClientIP()
		}

		if err := limiter.Allow(identity); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				c.Header("Retry-After", "60")
				response.TooManyRequests(c, "rate limit exceeded, slow down", nil)
				return
			}
			response.InternalError(c)
			return
		}

		c.Next()
	}
}
