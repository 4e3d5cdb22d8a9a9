package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/shared/server/respond"
	"osapio-backend/internal/shared/telemetry"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	defaultTimeout = 2 * time.Second
)

// Check pings one dependency.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Service runs the configured dependency checks.
type Service struct {
	checks  []Check
	timeout time.Duration
	now     func() time.Time
}

// NewService constructs a health service over checks.
func NewService(checks ...Check) *Service {
	return &Service{checks: checks, timeout: defaultTimeout, now: func() time.Time { return time.Now().UTC() }}
}

// Status runs every check in parallel under one timeout. Any failure marks
// the report degraded.
func (s *Service) Status(ctx context.Context) Report {
	rep := Report{Status: StatusHealthy, Timestamp: s.now()}
	if len(s.checks) == 0 {
		return rep
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]error, len(s.checks))
	var wg sync.WaitGroup
	for i, chk := range s.checks {
		wg.Add(1)
		go func(i int, chk Check) {
			defer wg.Done()
			results[i] = chk.Fn(ctx)
		}(i, chk)
	}
	wg.Wait()

	rep.Checks = make(map[string]string, len(s.checks))
	for i, chk := range s.checks {
		if err := results[i]; err != nil {
			rep.Status = StatusDegraded
			rep.Checks[chk.Name] = "error: " + err.Error()
			telemetry.Warn("health.check_failed", map[string]any{"check": chk.Name, "error": err})
			continue
		}
		rep.Checks[chk.Name] = "ok"
	}
	return rep
}

// Handle serves GET /health. Degraded reports answer 503.
func (s *Service) Handle(c *gin.Context) {
	rep := s.Status(c.Request.Context())
	status := http.StatusOK
	if rep.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, rep)
}
