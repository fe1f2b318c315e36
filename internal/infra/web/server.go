package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"autos-admin/internal/infra/api"
	"autos-admin/internal/infra/i18n"
	"autos-admin/internal/usecase"
)

// Pinger reports database reachability for /health/db.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Coupons   usecase.CouponUseCase
	Draws     usecase.DrawUseCase
	Inventory usecase.InventoryUseCase
	Media     usecase.MediaUseCase
	Auth      usecase.AuthUseCase
	Sessions  *AuthManager
	Messages  *i18n.Translator
	DB        Pinger
}

type Options struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type Server struct {
	couponUC    usecase.CouponUseCase
	drawUC      usecase.DrawUseCase
	inventoryUC usecase.InventoryUseCase
	mediaUC     usecase.MediaUseCase
	authUC      usecase.AuthUseCase
	auth        *AuthManager
	tr          *i18n.Translator
	db          Pinger
	opts        Options
	log         *zerolog.Logger
}

func NewServer(d Deps, opts Options, logger *zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 100 << 20
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		couponUC:    d.Coupons,
		drawUC:      d.Draws,
		inventoryUC: d.Inventory,
		mediaUC:     d.Media,
		authUC:      d.Auth,
		auth:        d.Sessions,
		tr:          d.Messages,
		db:          d.DB,
		opts:        opts,
		log:         &l,
	}
}

// Routes builds the admin router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(api.TraceID(), api.RequestLog(s.log), api.Recover(s.log), api.Metrics())

	r.Get("/health", s.health)
	r.Get("/health/db", s.healthDB)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(api.Timeout(s.opts.RequestTimeout))

		r.Post("/login", s.login)
		r.Post("/logout", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireOperator)

			r.Get("/me", s.me)

			r.Get("/coupon", s.couponLookup)
			r.Get("/coupons", s.couponList)
			r.Post("/coupon/redeem", s.couponRedeem)
			r.Post("/coupon/validate", s.couponValidate)
			r.Post("/coupon/unvalidate", s.couponUnvalidate)

			r.Get("/draw/participants", s.drawParticipants)
			r.Post("/draw/pick", s.drawPick)
			r.Post("/draw/confirm", s.drawConfirm)
			r.Get("/draw/winner", s.drawWinner)

			r.Get("/autos", s.autosList)
			r.Post("/autos", s.autosCreate)
			r.Get("/autos/{id}", s.autosGet)
			r.Patch("/autos/{id}", s.autosUpdate)
			r.Delete("/autos/{id}", s.autosDelete)

			r.Post("/media", s.mediaUpload)
			r.Post("/media/upload-url", s.mediaUploadURL)
			r.Delete("/media/{filename}", s.mediaRemove)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) healthDB(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
