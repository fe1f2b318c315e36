package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"autos-admin/internal/config"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
	pg "autos-admin/internal/infra/db/postgres"
)

// Seeds sample leads, coupons and listings for local development.
func main() {
	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Database.MaxConns = 4
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	leads := pg.NewLeadRepo(pool)
	coupons := pg.NewCouponRepo(pool)
	autos := pg.NewAutoRepo(pool)
	tm := pg.NewTxManager(pool)

	// If coupons already exist, do nothing
	existing, err := coupons.List(ctx, repository.NoTX, model.CouponQuery{Filter: model.FilterAll, Limit: 1})
	if err != nil {
		log.Fatalf("list coupons: %v", err)
	}
	if len(existing) > 0 {
		fmt.Println("coupons already present. No changes.")
		return
	}

	people := []model.Lead{
		{FullName: "María González", Email: "maria@example.com", Phone: "+54 11 5555-0001"},
		{FullName: "Juan Pérez", Email: "juan@example.com", Phone: "+54 11 5555-0002"},
		{FullName: "Lucía Fernández", Email: "lucia@example.com"},
	}

	err = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for i := range people {
			l := &people[i]
			if err := leads.Save(ctx, tx, l); err != nil {
				return fmt.Errorf("save lead %s: %w", l.Email, err)
			}
			code, err := model.GenerateCouponCode(rand.Reader)
			if err != nil {
				return err
			}
			c := &model.Coupon{CouponCode: code, LeadID: l.ID}
			if err := coupons.Issue(ctx, tx, c); err != nil {
				return fmt.Errorf("issue coupon: %w", err)
			}
			fmt.Printf("seeded: %s -> %s\n", l.Email, c.CouponCode)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed coupons: %v", err)
	}

	offer := decimal.NewFromInt(14_500_000)
	listings := []*model.Auto{
		{Marca: "Toyota", Modelo: "Corolla", Anio: 2021, Precio: decimal.NewFromInt(18_000_000)},
		{Marca: "Volkswagen", Modelo: "Gol Trend", Anio: 2018, Precio: decimal.NewFromInt(15_000_000), EnOferta: true, PrecioOferta: &offer},
	}
	for _, a := range listings {
		a.Normalize()
		if err := a.Validate(); err != nil {
			log.Fatalf("invalid sample auto: %v", err)
		}
		if err := autos.Create(ctx, repository.NoTX, a); err != nil {
			log.Fatalf("create auto: %v", err)
		}
		fmt.Printf("seeded: %s %s (id=%d)\n", a.Marca, a.Modelo, a.ID)
	}

	fmt.Println("✅ Seeding complete.")
}
