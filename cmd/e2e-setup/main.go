package main

import (
	"context"
	"log"
	"time"

	"autos-admin/internal/config"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
	"autos-admin/internal/infra/db/postgres"
	"autos-admin/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

// This script is for setting up a clean, predictable database state
// for manual end-to-end testing of the coupon and draw screens.
func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	// --- Connect to Postgres ---
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	// 1. Clean Redis so no draw lock or login limit survives.
	if cfg.Redis.URL != "" {
		log.Println("[1/3] Wiping Redis...")
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisClient.Close()
		if err := redisClient.FlushDB(ctx); err != nil {
			log.Fatalf("failed to flush redis: %v", err)
		}
	} else {
		log.Println("[1/3] Redis not configured, skipping")
	}

	// 2. Clean the database completely.
	log.Println("[2/3] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `TRUNCATE coupons_issued, leads, "Autos" RESTART IDENTITY CASCADE;`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// 3. Seed one coupon per state.
	log.Println("[3/3] Seeding coupons in every state...")
	seedCoupons(ctx, pool)

	log.Println("--- ✅ E2E Environment Setup Complete ---")
}

// seedCoupons leaves GP-E2E001 issued, GP-E2E002 validated this month and GP-E2E003 void.
func seedCoupons(ctx context.Context, pool *pgxpool.Pool) {
	leads := postgres.NewLeadRepo(pool)
	coupons := postgres.NewCouponRepo(pool)
	now := time.Now().UTC()

	fixtures := []struct {
		lead   model.Lead
		code   string
		status model.CouponStatus
		redeem bool
	}{
		{model.Lead{FullName: "E2E Issued", Email: "issued@e2e.test", Phone: "1111"}, "GP-E2E001", model.CouponIssued, false},
		{model.Lead{FullName: "E2E Validated", Email: "validated@e2e.test", Phone: "2222"}, "GP-E2E002", model.CouponIssued, true},
		{model.Lead{FullName: "E2E Void", Email: "void@e2e.test"}, "GP-E2E003", model.CouponVoid, false},
	}
	for _, f := range fixtures {
		l := f.lead
		if err := leads.Save(ctx, repository.NoTX, &l); err != nil {
			log.Fatalf("failed to save lead %s: %v", l.Email, err)
		}
		c := &model.Coupon{CouponCode: f.code, LeadID: l.ID, Status: f.status}
		if err := coupons.Issue(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("failed to issue %s: %v", f.code, err)
		}
		if f.redeem {
			if _, err := coupons.Redeem(ctx, repository.NoTX, f.code, "e2e-setup", now); err != nil {
				log.Fatalf("failed to redeem %s: %v", f.code, err)
			}
		}
		log.Printf("  %s (%s)", f.code, l.Email)
	}
}
