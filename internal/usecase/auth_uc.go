// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/metrics"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

type AuthUseCase interface {
	// Login verifies operator credentials. clientKey scopes the attempt limiter.
	Login(ctx context.Context, email, password, clientKey string) (*adapter.Identity, error)
}

// LoginLimit caps attempts per client within Window. Zero Limit disables it.
type LoginLimit struct {
	Limit  int
	Window time.Duration
}

type authUC struct {
	idp     adapter.IdentityProvider
	limiter adapter.RateLimiter
	limit   LoginLimit
	log     *zerolog.Logger
}

func NewAuthUseCase(idp adapter.IdentityProvider, limiter adapter.RateLimiter, limit LoginLimit, logger *zerolog.Logger) *authUC {
	return &authUC{idp: idp, limiter: limiter, limit: limit, log: logger}
}

func (u *authUC) Login(ctx context.Context, email, password, clientKey string) (*adapter.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if u.limiter != nil && u.limit.Limit > 0 {
		ok, err := u.limiter.Allow(ctx, "rate_limit:login:"+clientKey, u.limit.Limit, u.limit.Window)
		if err != nil {
			// fail open
			u.log.Warn().Err(err).Msg("login rate limiter unavailable")
		} else if !ok {
			metrics.IncLoginAttempt("limited")
			return nil, domain.ErrRateLimited
		}
	}

	id, err := u.idp.SignInWithPassword(ctx, email, password)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		metrics.IncLoginAttempt("denied")
		logging.With(ctx, u.log).Info().Str("email", logging.Redact(email, false)).Msg("login denied")
		return nil, err
	case err != nil:
		metrics.IncLoginAttempt("error")
		return nil, err
	}
	metrics.IncLoginAttempt("ok")
	return id, nil
}
