// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"aquaplant/internal/core/idempotency"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/domain/stock"
	"aquaplant/internal/infrastructure/http/v1/handlers"
	"aquaplant/internal/infrastructure/http/v1/middleware"
	"aquaplant/pkg/logger"
)

// RouterConfig holds the services the API is built on.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	Production *production.Service
	Stock      *stock.Service
	Materials  *materials.Ledger

	// Journal serves the stock movement history (optional)
	Journal stock.JournalReader

	// Idempotency stores X-Idempotency-Key responses
	Idempotency        idempotency.Store
	IdempotencyEnabled bool

	// Store backs the readiness probe
	Store   handlers.Pinger
	Storage string
	Version string

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Storage, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	if cfg.IdempotencyEnabled && cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerProductionRoutes(v1, base, cfg)
	registerStockRoutes(v1, base, cfg)
	registerMaterialRoutes(v1, base, cfg)

	return router
}

func registerProductionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewProductionHandler(base, cfg.Production)
	g := rg.Group("/production")
	{
		g.POST("", h.Submit)
		g.GET("/daily", h.Daily)
		g.POST("/plan", h.Plan)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	transfers := handlers.NewTransferHandler(base, cfg.Stock)
	rg.POST("/transfers", transfers.Submit)

	h := handlers.NewStockHandler(base, cfg.Stock, cfg.Journal)
	g := rg.Group("/stock")
	{
		g.GET("/factory", h.Factory)
		g.GET("/godown", h.Godown)
		g.GET("/valuation", h.Valuation)
		g.GET("/movements", h.Movements)
	}
}

func registerMaterialRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewMaterialsHandler(base, cfg.Materials)
	rg.GET("/materials", h.List)
}
