// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	appctx "ganji/internal/core/context"
	"ganji/internal/infrastructure/http/v1/handlers"
	"ganji/internal/infrastructure/http/v1/middleware"
	"ganji/pkg/logger"
)

// RouterConfig holds the dependencies of the API.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	// Location is the shop time zone used to resolve default windows.
	Location *time.Location

	Reports    handlers.ReportService
	Targets    handlers.TargetService
	Commission handlers.CommissionService

	// HealthChecks are probed by /health/ready.
	HealthChecks map[string]handlers.Checker

	// Development enables gin debug mode.
	Development bool
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Recovery sits inside ErrorHandler so recovered panics still get a JSON body.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	health := handlers.NewHealthHandler(cfg.HealthChecks)
	healthGroup := router.Group("/health")
	{
		healthGroup.GET("/live", health.Live)
		healthGroup.GET("/ready", health.Ready)
	}

	base := handlers.NewBaseHandler(cfg.Location)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerReportRoutes(api, base, cfg.Reports)
		registerTargetRoutes(api, base, cfg.Targets)
		registerCommissionRoutes(api, base, cfg.Commission)
	}

	return router
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service handlers.ReportService) {
	h := handlers.NewReportsHandler(base, service)
	g := rg.Group("/reports")
	g.GET("/profit", h.Profit)
	g.GET("/profit/owners", h.Owners)
	g.GET("/profit/daily", h.Daily)
	g.GET("/commission", h.Commission)
}

func registerTargetRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service handlers.TargetService) {
	h := handlers.NewTargetsHandler(base, service)
	managerOnly := middleware.RequireRole(appctx.RoleManager)

	g := rg.Group("/targets")
	g.GET("", h.List)
	g.POST("", managerOnly, h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/evaluate", h.Evaluate)
	g.POST("/:id/cancel", managerOnly, h.Cancel)
}

func registerCommissionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, service handlers.CommissionService) {
	h := handlers.NewCommissionHandler(base, service)

	g := rg.Group("/commission")
	g.GET("/rules", h.Rules)
	g.POST("/rules", middleware.RequireRole(appctx.RoleManager), h.CreateRule)
	g.POST("/resolve", h.Resolve)
}
