package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"contract-validator/internal/contracts"
	"contract-validator/internal/shared/server/respond"
	"contract-validator/internal/shared/telemetry"
)

// Concurrency admits at most limit requests at once. Waiting requests give
// up with 503 when their context ends. A non-positive limit disables it.
func Concurrency(limit int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(int64(limit))
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			telemetry.Warn("http.concurrency.rejected", map[string]any{
				"request_id": RequestIDFromContext(c),
				"limit":      limit,
				"error":      err,
			})
			c.Set(ErrorCodeKey, contracts.CodeUnavailable)
			respond.Error(c, http.StatusServiceUnavailable, contracts.CodeUnavailable, "Too many analyses in progress, retry later", nil)
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
