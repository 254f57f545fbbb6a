// Package main is the entry point for the velora warehouse API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"velora/internal/core/auth"
	"velora/internal/domain/alerts"
	"velora/internal/domain/catalogs/product"
	"velora/internal/domain/catalogs/supplier"
	"velora/internal/domain/documents/delivery"
	"velora/internal/domain/documents/stocktaking"
	"velora/internal/domain/documents/warehouseorder"
	"velora/internal/domain/ledger"
	v1 "velora/internal/infrastructure/http/v1"
	"velora/internal/infrastructure/http/v1/middleware"
	"velora/internal/infrastructure/storage/postgres"
	"velora/internal/infrastructure/storage/postgres/catalog_repo"
	"velora/internal/infrastructure/storage/postgres/document_repo"
	"velora/internal/infrastructure/storage/postgres/ledger_repo"
	"velora/internal/infrastructure/storage/postgres/report_repo"
	"velora/pkg/logger"
	"velora/pkg/numerator"
)

var version = "dev"

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting velora warehouse server", "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv(log, "DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if getEnv("DB_AUTO_MIGRATE", "true") == "true" {
		if err := pool.EnsureSchema(ctx); err != nil {
			log.Fatalw("failed to apply database schema", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	deliveryRepo := document_repo.NewDeliveryRepo(txManager)
	stocktakingRepo := document_repo.NewStocktakingRepo(txManager)
	orderRepo := document_repo.NewWarehouseOrderRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	stockReportRepo := report_repo.NewStockReportRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Services ---
	numeratorSvc := numerator.New(txManager)

	ledgerSvc := ledger.NewService(movementRepo, productRepo)
	productSvc := product.NewService(productRepo, txManager, numeratorSvc)
	supplierSvc := supplier.NewService(supplierRepo, txManager, numeratorSvc)
	deliverySvc := delivery.NewService(deliveryRepo, ledgerSvc, productRepo, numeratorSvc, txManager)
	stocktakingSvc := stocktaking.NewService(stocktakingRepo, ledgerSvc, productRepo, numeratorSvc, txManager)
	orderSvc := warehouseorder.NewService(orderRepo, ledgerSvc, productRepo, numeratorSvc, txManager)
	alertsSvc := alerts.NewService(stockReportRepo)

	// --- Token validation ---
	var validator middleware.TokenValidator
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		validator = auth.NewJWTValidator(auth.JWTConfig{
			Secret: secret,
			Issuer: getEnv("JWT_ISSUER", ""),
		})
	} else {
		log.Warn("JWT_SECRET not set, API authentication disabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		Version:         version,
		TokenValidator:  validator,
		TxManager:       txManager,
		Products:        productSvc,
		Suppliers:       supplierSvc,
		Ledger:          ledgerSvc,
		Deliveries:      deliverySvc,
		Stocktakings:    stocktakingSvc,
		WarehouseOrders: orderSvc,
		Alerts:          alertsSvc,
		Audit:           auditStore,
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	pool.LogStats(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func mustEnv(log *logger.Logger, key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalw("required environment variable not set", "key", key)
	}
	return value
}
