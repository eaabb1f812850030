package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contract-validator/internal/reviews"
	"contract-validator/internal/services/health"
	"contract-validator/internal/shared/config"
	"contract-validator/internal/shared/metrics"
	"contract-validator/internal/shared/server/middleware"
	"contract-validator/internal/shared/server/respond"
	"contract-validator/internal/submissions"
)

const analyzeRateLimitGroup = "ANALYZE"

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	ReviewHandler     *reviews.Handler
	SubmissionHandler *submissions.Handler
	Health            *health.Service
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(cfg.Debug),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		payload, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	if deps.ReviewHandler != nil {
		rules := map[string]middleware.RateLimitRule{}
		if cfg.RateLimitPerMinute > 0 {
			rules[analyzeRateLimitGroup] = middleware.PerMinute(cfg.RateLimitPerMinute)
		}
		deps.ReviewHandler.RegisterRoutes(api,
			middleware.RateLimit(middleware.RateLimitConfig{
				Rules:        rules,
				DefaultGroup: analyzeRateLimitGroup,
				Limiter:      deps.RateLimiter,
			}),
			middleware.Timeout(cfg.RequestTimeout),
			middleware.Concurrency(cfg.MaxConcurrentAnalyses),
		)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterRoutes(api)
	}

	return r
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
