package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/server/respond"
	"osapio-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Err(c, apperr.ErrInternal)
			}
		}()
		c.Next()
	}
}
