package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/interaction-dashboard-api/api/swagger"
	"github.com/noah-isme/interaction-dashboard-api/internal/handler"
	"github.com/noah-isme/interaction-dashboard-api/internal/middleware"
	"github.com/noah-isme/interaction-dashboard-api/internal/service"
	"github.com/noah-isme/interaction-dashboard-api/pkg/config"
	"github.com/noah-isme/interaction-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/interaction-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/interaction-dashboard-api/pkg/middleware/requestid"
)

const metricsPath = "/metrics"

// Options carries the cross-cutting settings for the HTTP stack.
type Options struct {
	Env            string
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
}

// Handlers groups the endpoint handlers mounted on the router.
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Sessions  *handler.SessionHandler
	Metrics   *handler.MetricsHandler
}

// New builds the gin engine with middleware and routes.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, metricsPath))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET(metricsPath, h.Metrics.Prometheus)

	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/sessions", h.Sessions.Create)
	api.GET("/system/metrics", h.Metrics.System)

	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.Session())
	dashboard.GET("/interactions", h.Dashboard.Interactions)
	dashboard.GET("/interactions/export", h.Dashboard.Export)

	return r
}
