package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"prizedraw/internal/api"
	"prizedraw/internal/auth"
	"prizedraw/internal/authz"
	"prizedraw/internal/logger"
	"prizedraw/internal/metrics"
	"prizedraw/internal/ratelimit"
)

// RequireAdmin rejects callers the authorization policy does not grant
// admin. The check runs before any state is touched.
func RequireAdmin(policy authz.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			api.Fail(c, api.ErrUnauthorized)
			c.Abort()
			return
		}

		// The token's role claim grants without a lookup. The policy
		// covers tokens issued before a role change.
		if auth.GetRole(c) == "admin" {
			c.Next()
			return
		}

		isAdmin, err := policy.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Admin policy check failed", "user_id", userID, "error", err)
			api.Fail(c, err)
			c.Abort()
			return
		}
		if !isAdmin {
			api.Fail(c, fmt.Errorf("%w: admin capability required", api.ErrForbidden))
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminRateLimit applies the token bucket per actor and endpoint. A
// limiter backend error lets the request through with a log line; the
// limiter blunts retry storms, it is not an authorization control.
func AdminRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)
		key := fmt.Sprintf("%d:%s %s", userID, c.Request.Method, c.FullPath())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("Rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			metrics.RecordRateLimitRejection()
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{
				Error: api.ErrorBody{Code: "RATE_LIMITED", Message: "too many requests, slow down"},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
