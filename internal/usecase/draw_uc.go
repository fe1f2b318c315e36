// File: internal/usecase/draw_uc.go
package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/domain/ports/repository"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/metrics"
)

// Compile-time check
var _ DrawUseCase = (*drawUC)(nil)

// DrawUseCase runs the monthly prize draw: gather, pick a candidate, confirm.
type DrawUseCase interface {
	Participants(ctx context.Context, month string) ([]*model.Participant, error)
	// Pick re-gathers and returns a uniformly random candidate. It never writes.
	Pick(ctx context.Context, month string) (*model.Participant, error)
	Confirm(ctx context.Context, month, code string) (*model.Coupon, error)
	Winner(ctx context.Context, month string) (*model.CouponWithLead, error)
}

const drawLockTTL = 10 * time.Second

type drawUC struct {
	coupons repository.CouponRepository
	locker  adapter.Locker
	intn    func(n int) int
	now     func() time.Time
	log     *zerolog.Logger
}

// DrawOption customizes a draw use case.
type DrawOption func(*drawUC)

// WithLocker serializes confirmations per month through l.
func WithLocker(l adapter.Locker) DrawOption {
	return func(d *drawUC) { d.locker = l }
}

// WithRandom replaces the index source used by Pick.
func WithRandom(intn func(n int) int) DrawOption {
	return func(d *drawUC) { d.intn = intn }
}

func NewDrawUseCase(coupons repository.CouponRepository, logger *zerolog.Logger, opts ...DrawOption) *drawUC {
	d := &drawUC{
		coupons: coupons,
		intn:    rand.Intn,
		now:     time.Now,
		log:     logger,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *drawUC) Participants(ctx context.Context, month string) ([]*model.Participant, error) {
	defer logging.TraceDuration(d.log, "DrawUC.Participants")()

	m, err := model.ParseDrawMonth(month)
	if err != nil {
		metrics.IncDrawOp("participants", "rejected")
		return nil, err
	}
	from, to := m.Window()
	ps, err := d.coupons.Participants(ctx, repository.NoTX, from, to)
	metrics.IncDrawOp("participants", metrics.Result(err))
	return ps, err
}

func (d *drawUC) Pick(ctx context.Context, month string) (*model.Participant, error) {
	defer logging.TraceDuration(d.log, "DrawUC.Pick")()

	m, err := model.ParseDrawMonth(month)
	if err != nil {
		metrics.IncDrawOp("pick", "rejected")
		return nil, err
	}
	from, to := m.Window()
	ps, err := d.coupons.Participants(ctx, repository.NoTX, from, to)
	if err != nil {
		metrics.IncDrawOp("pick", "error")
		return nil, err
	}
	if len(ps) == 0 {
		metrics.IncDrawOp("pick", "rejected")
		return nil, domain.ErrNoParticipants
	}
	winner := ps[d.intn(len(ps))]
	metrics.IncDrawOp("pick", "ok")
	d.log.Debug().Str("month", m.String()).Int("pool", len(ps)).Str("coupon_code", winner.CouponCode).Msg("draw candidate picked")
	return winner, nil
}

func (d *drawUC) Confirm(ctx context.Context, month, code string) (*model.Coupon, error) {
	defer logging.TraceDuration(d.log, "DrawUC.Confirm")()

	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}
	m, err := model.ParseDrawMonth(month)
	if err != nil {
		metrics.IncDrawOp("confirm", "rejected")
		return nil, err
	}
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}

	if d.locker != nil {
		key := "draw:confirm:" + m.String()
		token, err := d.locker.TryLock(ctx, key, drawLockTTL)
		switch {
		case errors.Is(err, domain.ErrDrawInProgress):
			metrics.IncDrawOp("confirm", "conflict")
			return nil, err
		case err != nil:
			// the conditional write below still guards the month
			logging.With(ctx, d.log).Warn().Err(err).Str("key", key).Msg("draw lock unavailable, confirming without it")
		default:
			defer func() {
				if err := d.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					d.log.Warn().Err(err).Str("key", key).Msg("draw lock release failed")
				}
			}()
		}
	}

	from, to := m.Window()
	c, err := d.coupons.ConfirmWinner(ctx, repository.NoTX, code, m.String(), from, to, d.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		err = d.classify(ctx, m, code)
	}
	if err != nil {
		metrics.IncDrawOp("confirm", outcome(err))
		return nil, err
	}
	metrics.IncDrawOp("confirm", "ok")
	logging.With(ctx, d.log).Info().Str("month", m.String()).Str("coupon_code", code).Msg("draw winner confirmed")
	return c, nil
}

// classify explains why a confirmation matched no row.
func (d *drawUC) classify(ctx context.Context, m model.DrawMonth, code string) error {
	if _, err := d.coupons.FindWinner(ctx, repository.NoTX, m.String()); err == nil {
		return domain.ErrMonthHasWinner
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := d.coupons.FindByCode(ctx, repository.NoTX, code); err != nil {
		return err
	}
	return domain.ErrNotEligible
}

func (d *drawUC) Winner(ctx context.Context, month string) (*model.CouponWithLead, error) {
	m, err := model.ParseDrawMonth(month)
	if err != nil {
		return nil, err
	}
	return d.coupons.FindWinner(ctx, repository.NoTX, m.String())
}
