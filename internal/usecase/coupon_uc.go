// File: internal/usecase/coupon_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/metrics"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

// CouponUseCase exposes the coupon lookup, listing and state transitions.
type CouponUseCase interface {
	Lookup(ctx context.Context, code string) (*model.CouponLookup, error)
	List(ctx context.Context, q model.CouponQuery) ([]*model.CouponWithLead, error)
	Redeem(ctx context.Context, code string) (*model.Coupon, error)
	Validate(ctx context.Context, code string, notes *string) (*model.Coupon, error)
	Unvalidate(ctx context.Context, code string) (*model.Coupon, error)
}

// ListLimits bounds the listing page size.
type ListLimits struct {
	Default int
	Max     int
}

type couponUC struct {
	coupons repository.CouponRepository
	limits  ListLimits
	now     func() time.Time
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, limits ListLimits, logger *zerolog.Logger) *couponUC {
	if limits.Default <= 0 {
		limits.Default = 50
	}
	if limits.Max < limits.Default {
		limits.Max = limits.Default
	}
	return &couponUC{
		coupons: coupons,
		limits:  limits,
		now:     time.Now,
		log:     logger,
	}
}

func (u *couponUC) Lookup(ctx context.Context, code string) (*model.CouponLookup, error) {
	defer logging.TraceDuration(u.log, "CouponUC.Lookup")()

	code = model.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	row, err := u.coupons.FindByCode(ctx, repository.NoTX, code)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.IncCouponLookup(false)
		return &model.CouponLookup{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.IncCouponLookup(true)
	return &model.CouponLookup{Found: true, Coupon: &row.Coupon, Lead: row.Lead}, nil
}

func (u *couponUC) List(ctx context.Context, q model.CouponQuery) ([]*model.CouponWithLead, error) {
	defer logging.TraceDuration(u.log, "CouponUC.List")()

	if q.Filter == "" {
		q.Filter = model.FilterAll
	}
	switch {
	case q.Limit <= 0:
		q.Limit = u.limits.Default
	case q.Limit > u.limits.Max:
		q.Limit = u.limits.Max
	}
	q.Query = strings.TrimSpace(q.Query)
	return u.coupons.List(ctx, repository.NoTX, q)
}

func (u *couponUC) Redeem(ctx context.Context, code string) (*model.Coupon, error) {
	return u.transition(ctx, "redeem", code, func(code, op string, at time.Time) (*model.Coupon, error) {
		return u.coupons.Redeem(ctx, repository.NoTX, code, op, at)
	})
}

func (u *couponUC) Validate(ctx context.Context, code string, notes *string) (*model.Coupon, error) {
	return u.transition(ctx, "validate", code, func(code, op string, at time.Time) (*model.Coupon, error) {
		return u.coupons.Validate(ctx, repository.NoTX, code, op, notes, at)
	})
}

func (u *couponUC) Unvalidate(ctx context.Context, code string) (*model.Coupon, error) {
	return u.transition(ctx, "unvalidate", code, func(code, _ string, _ time.Time) (*model.Coupon, error) {
		return u.coupons.Unvalidate(ctx, repository.NoTX, code)
	})
}

// transition runs one conditional write and classifies a miss by re-reading the row.
func (u *couponUC) transition(ctx context.Context, action, code string, write func(code, op string, at time.Time) (*model.Coupon, error)) (*model.Coupon, error) {
	defer logging.TraceDuration(u.log, "CouponUC."+action)()

	op, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := logging.With(logging.WithCouponCode(ctx, code), u.log)

	c, err := write(code, op, u.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		err = u.classify(ctx, action, code)
	}
	if err != nil {
		metrics.IncCouponTransition(action, outcome(err))
		log.Debug().Err(err).Str("action", action).Msg("coupon transition rejected")
		return nil, err
	}
	metrics.IncCouponTransition(action, "ok")
	log.Info().Str("action", action).Str("operator", op).Msg("coupon transition applied")
	return c, nil
}

func (u *couponUC) classify(ctx context.Context, action, code string) error {
	row, err := u.coupons.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		return err
	}
	c := &row.Coupon
	switch {
	case c.IsVoid():
		return domain.ErrCouponInactive
	case action == "redeem" && c.IsRedeemed():
		return &domain.RedeemConflict{RedeemedAt: redeemedAt(c)}
	case action == "unvalidate" && c.Won:
		return domain.ErrCouponWon
	}
	// The row changed between the write and the read; report it as a conflict.
	return domain.ErrCouponInactive
}

func redeemedAt(c *model.Coupon) *time.Time {
	if c.RedeemedAt != nil {
		return c.RedeemedAt
	}
	return c.ValidatedAt
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyRedeemed),
		errors.Is(err, domain.ErrCouponInactive),
		errors.Is(err, domain.ErrCouponWon),
		errors.Is(err, domain.ErrMonthHasWinner),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrDrawInProgress):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidMonth),
		errors.Is(err, domain.ErrNoParticipants):
		return "rejected"
	}
	return "error"
}
