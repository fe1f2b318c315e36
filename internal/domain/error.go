package domain

import (
	"errors"
	"time"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrOperationFailed    = errors.New("operation failed")
	ErrUnauthenticated    = errors.New("operator not authenticated")
	ErrRateLimited        = errors.New("too many attempts")

	// Coupon transitions
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponWon       = errors.New("coupon already won a draw")

	// Monthly draw
	ErrInvalidMonth   = errors.New("month must be YYYY-MM")
	ErrNoParticipants = errors.New("no validated participants for this month")
	ErrMonthHasWinner = errors.New("winner already confirmed for this month")
	ErrNotEligible    = errors.New("coupon is not eligible for this month")
	ErrDrawInProgress = errors.New("another confirmation for this month is in progress")

	// Inventory
	ErrInvalidOffer = errors.New("offer price must be positive and lower than the price")
)

// RedeemConflict reports an attempt to redeem a coupon that was already redeemed.
type RedeemConflict struct {
	RedeemedAt *time.Time
}

func (e *RedeemConflict) Error() string { return ErrAlreadyRedeemed.Error() }

func (e *RedeemConflict) Unwrap() error { return ErrAlreadyRedeemed }
