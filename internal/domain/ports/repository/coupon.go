package repository

import (
	"context"
	"time"

	"autos-admin/internal/domain/model"
)

// CouponRepository is the port for issued coupons and their monthly draw.
//
// Transition methods are single conditional writes: when no row satisfies the
// guard they return domain.ErrNotFound and leave classification to the caller.
type CouponRepository interface {
	Issue(ctx context.Context, tx Tx, c *model.Coupon) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.CouponWithLead, error)
	List(ctx context.Context, tx Tx, q model.CouponQuery) ([]*model.CouponWithLead, error)

	// Redeem moves an issued, unvalidated, non-void coupon to validated.
	Redeem(ctx context.Context, tx Tx, code, operator string, at time.Time) (*model.Coupon, error)
	// Validate marks a non-void coupon validated; notes are replaced only when non-nil.
	Validate(ctx context.Context, tx Tx, code, operator string, notes *string, at time.Time) (*model.Coupon, error)
	// Unvalidate returns a non-void, non-winning coupon to issued.
	Unvalidate(ctx context.Context, tx Tx, code string) (*model.Coupon, error)

	Participants(ctx context.Context, tx Tx, from, to time.Time) ([]*model.Participant, error)
	// ConfirmWinner flags code as the winner of month if it is eligible in
	// [from,to) and the month has no winner yet.
	ConfirmWinner(ctx context.Context, tx Tx, code, month string, from, to, at time.Time) (*model.Coupon, error)
	FindWinner(ctx context.Context, tx Tx, month string) (*model.CouponWithLead, error)
}

// LeadRepository stores contest participants' contact data.
type LeadRepository interface {
	Save(ctx context.Context, tx Tx, l *model.Lead) error
}
