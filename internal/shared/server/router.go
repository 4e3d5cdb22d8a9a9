package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osapio-backend/internal/analysis"
	"osapio-backend/internal/identity"
	"osapio-backend/internal/profiles"
	"osapio-backend/internal/services/health"
	"osapio-backend/internal/shared/config"
	"osapio-backend/internal/shared/metrics"
	"osapio-backend/internal/shared/server/middleware"
	"osapio-backend/internal/shared/server/respond"
	"osapio-backend/internal/statuschecks"
	"osapio-backend/internal/uploads"
)

// RouterDeps carries the handlers and cross-cutting pieces the router wires.
type RouterDeps struct {
	Config       config.Config
	Verifier     identity.Verifier
	Metrics      *metrics.Registry
	Limiter      middleware.Limiter
	Health       *health.Service
	Profiles     *profiles.Handler
	Uploads      *uploads.Handler
	Analysis     *analysis.Handler
	StatusChecks *statuschecks.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", deps.Metrics.Handler())
	}
	r.Use(middleware.CORS(deps.Config.CORSAllowOrigin))

	prefix := deps.Config.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix)
	api.GET("/", middleware.OptionalAuth(deps.Verifier), root)
	if deps.Health != nil {
		api.GET("/health", deps.Health.Handle)
	}
	if deps.StatusChecks != nil {
		deps.StatusChecks.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.Verifier))
	if deps.Profiles != nil {
		deps.Profiles.RegisterRoutes(protected)
	}
	if deps.Uploads != nil {
		deps.Uploads.RegisterRoutes(protected)
	}
	if deps.Analysis != nil {
		deps.Analysis.RegisterRoutes(protected, middleware.RateLimit("analyze", analyzeRule(deps.Config), deps.Limiter))
	}

	return r
}

func root(c *gin.Context) {
	_, ok := middleware.ClaimsFromContext(c)
	respond.JSON(c, http.StatusOK, gin.H{
		"message":       "osapio API - Authentication enabled",
		"authenticated": ok,
	})
}

func analyzeRule(cfg config.Config) middleware.RateLimitRule {
	perMinute := cfg.AnalyzeRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := cfg.AnalyzeBurst
	if burst <= 0 {
		burst = 5
	}
	return middleware.RateLimitRule{Rate: perMinute / 60, Burst: burst}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
