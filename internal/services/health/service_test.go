package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestStatusHealthyWithoutChecks(t *testing.T) {
	rep := NewService().Status(context.Background())
	assert.Equal(t, StatusHealthy, rep.Status)
	assert.False(t, rep.Timestamp.IsZero())
	assert.Empty(t, rep.Checks)
}

func TestStatusDegradedOnFailure(t *testing.T) {
	svc := NewService(
		Check{Name: "postgres", Fn: ok},
		Check{Name: "mongo", Fn: func(context.Context) error { return errors.New("no reachable servers") }},
	)
	rep := svc.Status(context.Background())
	assert.Equal(t, StatusDegraded, rep.Status)
	assert.Equal(t, "ok", rep.Checks["postgres"])
	assert.Equal(t, "error: no reachable servers", rep.Checks["mongo"])
}

func TestStatusChecksShareTimeout(t *testing.T) {
	svc := NewService(Check{Name: "slow", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	svc.timeout = 10 * time.Millisecond
	rep := svc.Status(context.Background())
	assert.Equal(t, StatusDegraded, rep.Status)
}

func TestHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/health", NewService(Check{Name: "redis", Fn: ok}).Handle)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var rep Report
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rep))
	assert.Equal(t, StatusHealthy, rep.Status)
	assert.Equal(t, "ok", rep.Checks["redis"])
}
