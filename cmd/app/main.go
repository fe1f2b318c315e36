// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"autos-admin/internal/config"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/infra/adapters/identity"
	"autos-admin/internal/infra/adapters/storage"
	pg "autos-admin/internal/infra/db/postgres"
	"autos-admin/internal/infra/i18n"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/media"
	"autos-admin/internal/infra/metrics"
	"autos-admin/internal/infra/ratelimit"
	red "autos-admin/internal/infra/redis"
	"autos-admin/internal/infra/sched"
	"autos-admin/internal/infra/web"
	"autos-admin/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// prices leave the API as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	couponRepo := pg.NewCouponRepo(pool)
	autoRepo := pg.NewAutoRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Redis (optional) ----
	var (
		limiter  adapter.RateLimiter = ratelimit.NewLocal()
		drawOpts []usecase.DrawOption
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		drawOpts = append(drawOpts, usecase.WithLocker(red.NewLocker(redisClient)))
	} else {
		logger.Info().Msg("redis not configured; using in-process login limiter and no draw lock")
	}

	// ---- Hosted backend adapters ----
	var objects adapter.ObjectStorage = storage.NoopStorage{}
	if cfg.Storage.URL != "" {
		s, err := storage.NewSupabaseStorage(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("storage")
		}
		objects = s
	} else if !cfg.Runtime.Dev {
		logger.Fatal().Msg("storage.url is required")
	}

	var idp adapter.IdentityProvider
	if cfg.Identity.URL != "" {
		g, err := identity.NewGoTrue(cfg.Identity)
		if err != nil {
			logger.Fatal().Err(err).Msg("identity")
		}
		idp = g
	} else if cfg.Runtime.Dev {
		idp = identity.Static{Email: cfg.Identity.DevEmail, Password: cfg.Identity.DevPassword}
	} else {
		logger.Fatal().Msg("identity.url is required")
	}

	secret := cfg.Session.Secret
	if secret == "" {
		logger.Warn().Msg("session.secret not set; using an insecure dev secret")
		secret = "dev-session-secret-change-me"
	}
	cfg.Session.Secret = secret

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.App.Locale)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Use cases ----
	couponUC := usecase.NewCouponUseCase(couponRepo, usecase.ListLimits{Default: cfg.App.ListDefaultLimit, Max: cfg.App.ListMaxLimit}, logger)
	drawUC := usecase.NewDrawUseCase(couponRepo, logger, drawOpts...)
	inventoryUC := usecase.NewInventoryUseCase(autoRepo, tm, objects, logger)
	mediaUC := usecase.NewMediaUseCase(objects, media.NewJPEGCompressor(cfg.Media), logger)
	authUC := usecase.NewAuthUseCase(idp, limiter, usecase.LoginLimit{Limit: cfg.App.LoginRateLimit, Window: cfg.App.LoginRateWindow}, logger)

	srv := web.NewServer(web.Deps{
		Coupons:   couponUC,
		Draws:     drawUC,
		Inventory: inventoryUC,
		Media:     mediaUC,
		Auth:      authUC,
		Sessions:  web.NewAuthManager(cfg.Session, cfg.HTTP.APIKey),
		Messages:  tr,
		DB:        pool,
	}, web.Options{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxUploadBytes: cfg.Media.MaxUploadMB << 20,
	}, logger)

	// ---- Workers ----
	poolStats := sched.NewPoolStatsWorker(cfg.App.PoolStatsEvery, sched.StatSourceFunc(func() sched.PoolStats {
		return statsOf(pool)
	}), logger)
	go func() { _ = poolStats.Run(ctx) }()

	// ---- HTTP ----
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTP.Port),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Handler:        h2c.NewHandler(srv.Routes(), &http2.Server{}),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server exited")
}

func statsOf(pool *pgxpool.Pool) sched.PoolStats {
	s := pool.Stat()
	return sched.PoolStats{
		Total:    s.TotalConns(),
		Idle:     s.IdleConns(),
		InUse:    s.AcquiredConns(),
		Max:      s.MaxConns(),
		Acquired: s.AcquireCount(),
	}
}
