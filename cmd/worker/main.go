// Package main is the entry point for the aquaplant housekeeping worker:
// expired idempotency keys, journal retention and pool statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"aquaplant/internal/infrastructure/storage/postgres"
	"aquaplant/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting aquaplant worker")

	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	poolCfg.MaxConns = 4
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	journal, err := postgres.NewJournal(txm)
	if err != nil {
		log.Fatalw("failed to create journal", "error", err)
	}

	worker := &Worker{
		pool:        pool,
		idempotency: postgres.NewIdempotencyStore(txm, 0),
		journal:     journal,
		log:         log.WithComponent("worker"),
		cleanup:     getEnvDuration("CLEANUP_INTERVAL", time.Hour),
		statsEvery:  getEnvDuration("POOL_STATS_INTERVAL", 5*time.Minute),
		retention:   getEnvDuration("JOURNAL_RETENTION", 0),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs periodic maintenance against the database.
type Worker struct {
	pool        *postgres.Pool
	idempotency *postgres.IdempotencyStore
	journal     *postgres.Journal
	log         *logger.Logger

	cleanup    time.Duration
	statsEvery time.Duration
	// retention of zero keeps the journal forever.
	retention time.Duration
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w.cleanup <= 0 {
		w.cleanup = time.Hour
	}
	if w.statsEvery <= 0 {
		w.statsEvery = 5 * time.Minute
	}

	cleanupTicker := time.NewTicker(w.cleanup)
	defer cleanupTicker.Stop()

	statsTicker := time.NewTicker(w.statsEvery)
	defer statsTicker.Stop()

	w.housekeeping(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.housekeeping(ctx)
		case <-statsTicker.C:
			postgres.LogPoolStats(ctx, w.pool.Unwrap())
		}
	}
}

func (w *Worker) housekeeping(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}

	if w.retention <= 0 {
		return
	}
	n, err = w.journal.Prune(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.log.Errorw("journal prune failed", "error", err)
	} else if n > 0 {
		w.log.Infow("pruned journal entries", "count", n, "retention", w.retention)
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
