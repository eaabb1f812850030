package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"contract-validator/internal/contracts"
	"contract-validator/internal/shared/server/respond"
	"contract-validator/internal/shared/telemetry"
)

// Recovery recovers from panics and returns a processing-error envelope.
// The panic value is exposed in details only when debug is set.
func Recovery(debugMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID := RequestIDFromContext(c)
				telemetry.Error("panic", map[string]any{
					"request_id": reqID,
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				var details any
				if debugMode {
					details = map[string]string{"cause": fmt.Sprint(rec)}
				}
				respond.Error(c, http.StatusInternalServerError, contracts.CodeProcessing, "Unexpected server error", details)
			}
		}()
		c.Next()
	}
}
