package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"osapio-backend/internal/identity"
	"osapio-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	prev := telemetry.SetLogger(zap.New(core))
	defer telemetry.SetLogger(prev)

	v := newVerifier(t)
	token, err := v.Issue(identity.Claims{UID: "user-1"}, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.GET("/test", RequireAuth(v), func(c *gin.Context) {
		c.Set(UploadIDKey, "upload-1")
		c.Set(StatusTransitionKey, "pending->processing")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", "req-abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "req-abc", resp.Header().Get("X-Request-Id"))

	entries := logs.FilterMessage("request.complete").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-abc", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "upload-1", fields["upload_id"])
	assert.Equal(t, "pending->processing", fields["status_transition"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Contains(t, fields, "duration_ms")
}

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := telemetry.SetLogger(zap.NewNop())
	defer telemetry.SetLogger(prev)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "kaboom")
}
