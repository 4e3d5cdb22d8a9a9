package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	UploadIDKey         = "uploadId"
	StatusTransitionKey = "statusTransition"
)

// Logging emits one structured line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
		}
		if id := c.GetString(UploadIDKey); id != "" {
			fields["upload_id"] = id
		}
		if tr := c.GetString(StatusTransitionKey); tr != "" {
			fields["status_transition"] = tr
		}
		telemetry.Info("request.complete", fields)
	}
}
