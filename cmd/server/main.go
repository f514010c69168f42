// Package main is the entry point for the aquaplant API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquaplant/internal/core/idempotency"
	"aquaplant/internal/core/tx"
	"aquaplant/internal/domain/catalog"
	"aquaplant/internal/domain/materials"
	"aquaplant/internal/domain/production"
	"aquaplant/internal/domain/stock"
	v1 "aquaplant/internal/infrastructure/http/v1"
	"aquaplant/internal/infrastructure/http/v1/handlers"
	"aquaplant/internal/infrastructure/storage/memory"
	"aquaplant/internal/infrastructure/storage/postgres"
	"aquaplant/internal/infrastructure/storage/postgres/catalog_repo"
	"aquaplant/internal/infrastructure/storage/postgres/materials_repo"
	"aquaplant/internal/infrastructure/storage/postgres/production_repo"
	"aquaplant/internal/infrastructure/storage/postgres/stock_repo"
	"aquaplant/internal/infrastructure/storage/seed"
	"aquaplant/pkg/logger"
)

const version = "0.1.0"

type movementJournal interface {
	stock.Journal
	stock.JournalReader
}

// backend is everything the services need from a storage implementation.
type backend struct {
	name        string
	products    catalog.Repository
	stock       stock.Repository
	materials   materials.Repository
	production  production.Repository
	journal     movementJournal
	txm         tx.Manager
	idempotency idempotency.Store
	store       handlers.Pinger
	close       func()
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting aquaplant server", "version", version)

	loc, err := time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "Local"))
	if err != nil {
		log.Fatalw("invalid BUSINESS_TIMEZONE", "error", err)
	}

	idemTTL := getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour)

	var be *backend
	switch storage := getEnv("STORAGE", "postgres"); storage {
	case "postgres":
		be, err = openPostgres(ctx, log, idemTTL)
	case "memory":
		be = openMemory(log, idemTTL)
	default:
		err = fmt.Errorf("unknown STORAGE %q (want postgres or memory)", storage)
	}
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer be.close()

	// --- Domain services ---
	stockSvc := stock.NewService(be.stock, be.products, be.txm, be.journal)
	ledger := materials.NewLedger(be.materials, materials.DefaultBillOfMaterials(), materials.DefaultConversionTable())
	prodSvc := production.NewService(production.Config{
		Repo:      be.production,
		Products:  be.products,
		Stock:     stockSvc,
		Materials: ledger,
		TxManager: be.txm,
		Journal:   be.journal,
		Location:  loc,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		Production:         prodSvc,
		Stock:              stockSvc,
		Materials:          ledger,
		Journal:            be.journal,
		Idempotency:        be.idempotency,
		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		Store:              be.store,
		Storage:            be.name,
		Version:            version,
		Debug:              getEnv("APP_ENV", "development") == "development",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "storage", be.name, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openPostgres(ctx context.Context, log *logger.Logger, idemTTL time.Duration) (*backend, error) {
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool,
		postgres.WithStatementTimeout(getEnvDuration("DB_STATEMENT_TIMEOUT", postgres.DefaultStatementTimeout)))
	if getEnvBool("AUTO_MIGRATE", true) {
		if err := postgres.Migrate(ctx, txm); err != nil {
			pool.Close()
			return nil, err
		}
	}

	journal, err := postgres.NewJournal(txm)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &backend{
		name:        "postgres",
		products:    catalog_repo.NewProductRepo(txm),
		stock:       stock_repo.NewStockRepo(txm),
		materials:   materials_repo.NewRawMaterialRepo(txm),
		production:  production_repo.NewDailyRepo(txm),
		journal:     journal,
		txm:         txm,
		idempotency: postgres.NewIdempotencyStore(txm, idemTTL),
		store:       pool,
		close:       pool.Close,
	}, nil
}

func openMemory(log *logger.Logger, idemTTL time.Duration) *backend {
	store := memory.New()
	if getEnvBool("SEED_DEMO_DATA", true) {
		seed.Memory(store)
		log.Info("demo catalog loaded")
	}
	log.Warn("running with in-memory storage, data is lost on restart")

	return &backend{
		name:        "memory",
		products:    store.Products(),
		stock:       store.Stock(),
		materials:   store.Materials(),
		production:  store.Production(),
		journal:     store.Journal(),
		txm:         store,
		idempotency: memory.NewIdempotencyStore(idemTTL),
		store:       store,
		close:       func() {},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
