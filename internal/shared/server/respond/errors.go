package respond

import (
	"time"

	"github.com/gin-gonic/gin"

	"contract-validator/internal/contracts"
	"contract-validator/internal/shared/telemetry"
)

// Error logs the failure and aborts with an error envelope.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if details != nil {
		fields["details"] = details
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, contracts.Failure(code, message, details, time.Now()))
}
