// Package main provides a CLI tool for seeding the database with the demo
// catalog and opening raw-material stock.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"aquaplant/internal/core/id"
	"aquaplant/internal/infrastructure/storage/postgres"
	"aquaplant/internal/infrastructure/storage/seed"
	"aquaplant/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	if err := postgres.Migrate(ctx, txm); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := seedProducts(ctx, txm, log); err != nil {
			return err
		}
		return seedMaterials(ctx, txm, log)
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

// seedProducts inserts the demo catalog; existing serial numbers are left alone.
func seedProducts(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	now := time.Now().UTC()
	for _, p := range seed.Products() {
		if err := p.Validate(ctx); err != nil {
			return fmt.Errorf("product %s: %w", p.SN, err)
		}

		var family *string
		if p.Family != "" {
			f := string(p.Family)
			family = &f
		}

		tag, err := txm.GetQuerier(ctx).Exec(ctx, `
			INSERT INTO products (id, sn, name, family, factory_price, godown_price, delivery_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (sn) DO NOTHING
		`, id.New(), p.SN, p.Name, family, p.FactoryPrice, p.GodownPrice, p.DeliveryPrice, now)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.SN, err)
		}
		if tag.RowsAffected() == 0 {
			log.Infow("product already exists", "sn", p.SN)
			continue
		}
		log.Infow("product created", "sn", p.SN, "name", p.Name)
	}
	return nil
}

// seedMaterials inserts the opening raw-material stock; existing rows keep their quantities.
func seedMaterials(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	now := time.Now().UTC()
	for _, m := range seed.Materials() {
		tag, err := txm.GetQuerier(ctx).Exec(ctx, `
			INSERT INTO raw_materials (id, material, variant, available_quantity, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $5)
			ON CONFLICT (material, variant) DO NOTHING
		`, id.New(), m.Material, m.Variant, m.AvailableQuantity, now)
		if err != nil {
			return fmt.Errorf("insert raw material %s: %w", m.Key(), err)
		}
		if tag.RowsAffected() > 0 {
			log.Infow("raw material created", "material", m.Material, "variant", m.Variant, "quantity", m.AvailableQuantity)
		}
	}
	return nil
}
