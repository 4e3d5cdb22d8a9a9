package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(limiter Limiter, rule RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, c.GetHeader("X-Test-User"))
		c.Next()
	})
	r.POST("/api/upload-record/:id/analyze", RateLimit("analyze", rule, limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/upload-record/abc/analyze", nil)
	req.Header.Set("X-Test-User", user)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitPerPrincipal(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := limitedRouter(limiter, RateLimitRule{Rate: 1, Burst: 2})

	require.Equal(t, http.StatusOK, hit(r, "alice").Code)
	require.Equal(t, http.StatusOK, hit(r, "alice").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r, "alice").Code)
	require.Equal(t, http.StatusOK, hit(r, "bob").Code)

	now = now.Add(time.Second)
	require.Equal(t, http.StatusOK, hit(r, "alice").Code)
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	r := limitedRouter(limiter, RateLimitRule{Rate: 0.5, Burst: 1})

	require.Equal(t, http.StatusOK, hit(r, "alice").Code)
	resp := hit(r, "alice")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "2", resp.Header().Get("Retry-After"))

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, "rate_limited", payload.Error.Code)
	assert.EqualValues(t, 2000, payload.Error.Details["retry_after_ms"])
}

func TestRateLimitZeroRuleDisables(t *testing.T) {
	limiter := NewRateLimiter(nil)
	allowed, _ := limiter.Allow(context.Background(), "k", RateLimitRule{})
	assert.True(t, allowed)
}

func TestRedisLimiterNilClientFailsOpen(t *testing.T) {
	var l *RedisLimiter
	allowed, _ := l.Allow(context.Background(), "k", RateLimitRule{Rate: 1, Burst: 1})
	assert.True(t, allowed)
}

func TestRedisLimiterUnreachableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	allowed, _ := NewRedisLimiter(client).Allow(context.Background(), "k", RateLimitRule{Rate: 1, Burst: 1})
	assert.True(t, allowed)
}
