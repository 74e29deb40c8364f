package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
	"github.com/nenecchuu/kaef-hris-sub002/internal/transport/http/handlers"
	"github.com/nenecchuu/kaef-hris-sub002/internal/transport/http/middleware"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Metrics   *telemetry.Provider
	RateLimit port.RateLimitStore

	Health   *handlers.HealthHandler
	Audit    *handlers.AuditHandler
	Password *handlers.PasswordHandler

	PendingChecker middleware.PendingChecker
}

// Setup builds the gin engine with all routes and middleware attached.
func Setup(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))

	router.GET("/healthz", deps.Health.Healthz)
	router.GET("/readyz", deps.Health.Readyz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		deps.Metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	api := router.Group("/api/v1")

	// Anonymous reset endpoints sit behind the sliding-window limiter.
	anonymous := api.Group("/password/reset")
	anonymous.Use(middleware.RateLimit(
		deps.RateLimit,
		deps.Config.RateLimit.PasswordResetMaxAttempts,
		deps.Config.RateLimit.WindowDuration,
		deps.Logger,
	))
	anonymous.POST("/request", deps.Password.RequestReset)
	anonymous.POST("/confirm", deps.Password.ConfirmReset)

	authenticated := api.Group("")
	authenticated.Use(middleware.Auth(deps.Config.JWT.Secret))
	authenticated.Use(middleware.ResetGuard(deps.PendingChecker, deps.Logger))

	authenticated.GET("/audit-trails", deps.Audit.List)
	authenticated.GET("/audit-trails/export", deps.Audit.Export)
	authenticated.POST("/users/reset-password", deps.Password.BulkReset)

	return router
}
