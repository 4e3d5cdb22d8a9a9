package respond

import (
	"errors"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/apperr"
	"osapio-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body. Detail repeats the message for clients
// that read a flat string.
type ErrorResponse struct {
	Error  ErrorBody `json:"error"`
	Detail string    `json:"detail"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Detail: message,
	})
}

// Err converts a classified error into a response. Unclassified and internal
// errors are logged with their cause and answered with a generic message.
// Upstream and unavailable errors carry the dependency detail.
func Err(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.ErrInternal
	}
	status := ae.Kind.Status()

	message := ae.Message
	switch ae.Kind {
	case apperr.KindInternal:
		telemetry.Error("http.internal_error", map[string]any{
			"request_id": c.GetString("requestId"),
			"path":       c.Request.URL.Path,
			"error":      err,
		})
		message = apperr.ErrInternal.Message
	case apperr.KindUpstream, apperr.KindUnavailable, apperr.KindValidation, apperr.KindUnauthenticated:
		if ae.Err != nil {
			message = ae.Message + ": " + ae.Err.Error()
		}
	}
	Error(c, status, ae.Code, message, nil)
}
