// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"velora/internal/core/tx"
	"velora/internal/domain/alerts"
	"velora/internal/domain/audit"
	"velora/internal/domain/catalogs/product"
	"velora/internal/domain/catalogs/supplier"
	"velora/internal/domain/documents/delivery"
	"velora/internal/domain/documents/stocktaking"
	"velora/internal/domain/documents/warehouseorder"
	"velora/internal/domain/ledger"
	"velora/internal/infrastructure/http/v1/handlers"
	"velora/internal/infrastructure/http/v1/middleware"
	"velora/internal/infrastructure/storage/postgres"
	"velora/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool    *postgres.Pool
	Logger  *logger.Logger
	Version string

	// TokenValidator guards the API; nil disables auth (local development)
	TokenValidator middleware.TokenValidator

	TxManager tx.Manager

	Products        *product.Service
	Suppliers       *supplier.Service
	Ledger          *ledger.Service
	Deliveries      *delivery.Service
	Stocktakings    *stocktaking.Service
	WarehouseOrders *warehouseorder.Service
	Alerts          *alerts.Service
	Audit           audit.Recorder
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// order matters: recovery outermost, then tracing, logging, metrics,
	// and the error renderer closest to the handlers
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	if cfg.TokenValidator != nil {
		api.Use(middleware.Actor(cfg.TokenValidator))
	}

	catalog := api.Group("/catalog")
	{
		productHandler := handlers.NewProductHandler(base, cfg.Products, cfg.Ledger, cfg.TxManager, cfg.Audit)
		productHandler.RegisterRoutes(catalog.Group("/products"))

		supplierHandler := handlers.NewSupplierHandler(base, cfg.Suppliers, cfg.Audit)
		supplierHandler.RegisterRoutes(catalog.Group("/suppliers"))
	}

	documents := api.Group("/documents")
	{
		deliveryHandler := handlers.NewDeliveryHandler(base, cfg.Deliveries, cfg.Audit)
		deliveryHandler.RegisterRoutes(documents.Group("/deliveries"))

		stocktakingHandler := handlers.NewStocktakingHandler(base, cfg.Stocktakings, cfg.Audit)
		stocktakingHandler.RegisterRoutes(documents.Group("/stocktakings"))

		orderHandler := handlers.NewWarehouseOrderHandler(base, cfg.WarehouseOrders, cfg.Audit)
		orderHandler.RegisterRoutes(documents.Group("/warehouse-orders"))
	}

	alertsHandler := handlers.NewAlertsHandler(base, cfg.Alerts)
	alertsHandler.RegisterRoutes(api.Group("/alerts"))

	if cfg.Audit != nil {
		auditHandler := handlers.NewAuditHandler(base, cfg.Audit)
		auditHandler.RegisterRoutes(api.Group("/audit"))
	}

	return router
}
