package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CouponRepository = (*couponRepo)(nil)

const wonMonthConstraint = "coupons_issued_won_month_key"

const couponCols = `c.id, c.coupon_code, c.lead_id, c.issued_at, c.status, c.redeemed_at,
       c.validated, c.validated_at, c.validated_by, c.notes, c.won, c.won_at, c.won_month`

const leadCols = `l.id, l.full_name, l.email, COALESCE(l.phone, '')`

type couponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *couponRepo {
	return &couponRepo{pool: pool}
}

func (r *couponRepo) Issue(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CouponIssued
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = time.Now().UTC()
	}
	c.CouponCode = model.NormalizeCode(c.CouponCode)

	const q = `
INSERT INTO coupons_issued (id, coupon_code, lead_id, issued_at, status)
VALUES ($1, $2, $3, $4, $5);`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.CouponCode, c.LeadID, c.IssuedAt, string(c.Status))
	return mapErr("issue coupon", err)
}

func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.CouponWithLead, error) {
	const q = `
SELECT ` + couponCols + `, ` + leadCols + `
  FROM coupons_issued c
  JOIN leads l ON l.id = c.lead_id
 WHERE c.coupon_code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCouponWithLead(row)
}

func (r *couponRepo) List(ctx context.Context, tx repository.Tx, q model.CouponQuery) ([]*model.CouponWithLead, error) {
	sql, args := buildListQuery(q)
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, mapErr("list coupons", err)
	}
	defer rows.Close()

	out := []*model.CouponWithLead{}
	for rows.Next() {
		c, err := scanCouponWithLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, mapErr("list coupons", rows.Err())
}

// buildListQuery assembles the filtered listing with positional args.
func buildListQuery(q model.CouponQuery) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	switch q.Filter {
	case model.FilterValidated:
		where = append(where, "c.validated = TRUE")
	case model.FilterUnvalidated:
		where = append(where, "c.validated = FALSE")
	}
	if term := strings.TrimSpace(q.Query); term != "" {
		if model.LooksLikeCouponCode(term) {
			args = append(args, "%"+escapeLike(model.NormalizeCode(term))+"%")
			where = append(where, fmt.Sprintf("c.coupon_code ILIKE $%d", len(args)))
		} else {
			args = append(args, "%"+escapeLike(term)+"%")
			n := len(args)
			where = append(where, fmt.Sprintf("(l.email ILIKE $%d OR l.full_name ILIKE $%d OR l.phone ILIKE $%d)", n, n, n))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT " + couponCols + ", " + leadCols + "\n  FROM coupons_issued c\n  JOIN leads l ON l.id = c.lead_id")
	if len(where) > 0 {
		b.WriteString("\n WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, q.Limit)
	fmt.Fprintf(&b, "\n ORDER BY c.issued_at DESC\n LIMIT $%d;", len(args))
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *couponRepo) Redeem(ctx context.Context, tx repository.Tx, code, operator string, at time.Time) (*model.Coupon, error) {
	const q = `
UPDATE coupons_issued AS c
   SET status = 'redeemed', redeemed_at = $2,
       validated = TRUE, validated_at = $2, validated_by = $3
 WHERE c.coupon_code = $1 AND c.status = 'issued' AND c.validated = FALSE
RETURNING ` + couponCols + `;`
	return r.transition(ctx, tx, "redeem coupon", q, code, at, operator)
}

func (r *couponRepo) Validate(ctx context.Context, tx repository.Tx, code, operator string, notes *string, at time.Time) (*model.Coupon, error) {
	const q = `
UPDATE coupons_issued AS c
   SET status = 'redeemed', redeemed_at = COALESCE(c.redeemed_at, $2),
       validated = TRUE, validated_at = $2, validated_by = $3,
       notes = COALESCE($4::text, c.notes)
 WHERE c.coupon_code = $1 AND c.status <> 'void'
RETURNING ` + couponCols + `;`
	return r.transition(ctx, tx, "validate coupon", q, code, at, operator, notes)
}

func (r *couponRepo) Unvalidate(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `
UPDATE coupons_issued AS c
   SET status = 'issued', redeemed_at = NULL,
       validated = FALSE, validated_at = NULL, validated_by = NULL
 WHERE c.coupon_code = $1 AND c.status <> 'void' AND c.won = FALSE
RETURNING ` + couponCols + `;`
	return r.transition(ctx, tx, "unvalidate coupon", q, code)
}

func (r *couponRepo) transition(ctx context.Context, tx repository.Tx, op, q string, args ...interface{}) (*model.Coupon, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	c, err := scanCoupon(row)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return c, nil
}

func (r *couponRepo) Participants(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Participant, error) {
	const q = `
SELECT c.coupon_code, c.validated_at, ` + leadCols + `
  FROM coupons_issued c
  JOIN leads l ON l.id = c.lead_id
 WHERE c.validated = TRUE AND c.status <> 'void'
   AND c.validated_at >= $1 AND c.validated_at < $2
 ORDER BY c.validated_at, c.coupon_code;`
	rows, err := queryRows(ctx, r.pool, tx, q, from, to)
	if err != nil {
		return nil, mapErr("draw participants", err)
	}
	defer rows.Close()

	out := []*model.Participant{}
	for rows.Next() {
		var (
			p model.Participant
			l model.Lead
		)
		if err := rows.Scan(&p.CouponCode, &p.ValidatedAt, &l.ID, &l.FullName, &l.Email, &l.Phone); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		p.ValidatedAt = p.ValidatedAt.UTC()
		p.Lead = &l
		out = append(out, &p)
	}
	return out, mapErr("draw participants", rows.Err())
}

func (r *couponRepo) ConfirmWinner(ctx context.Context, tx repository.Tx, code, month string, from, to, at time.Time) (*model.Coupon, error) {
	const q = `
UPDATE coupons_issued AS c
   SET won = TRUE, won_at = $5, won_month = $2
 WHERE c.coupon_code = $1
   AND c.validated = TRUE AND c.status <> 'void'
   AND c.validated_at >= $3 AND c.validated_at < $4
   AND c.won_month IS NULL
   AND NOT EXISTS (SELECT 1 FROM coupons_issued w WHERE w.won_month = $2)
RETURNING ` + couponCols + `;`
	row, err := pickRow(ctx, r.pool, tx, q, code, month, from, to, at)
	if err != nil {
		return nil, err
	}
	c, err := scanCoupon(row)
	if isUniqueViolation(err, wonMonthConstraint) {
		return nil, domain.ErrMonthHasWinner
	}
	if err != nil {
		return nil, mapErr("confirm winner", err)
	}
	return c, nil
}

func (r *couponRepo) FindWinner(ctx context.Context, tx repository.Tx, month string) (*model.CouponWithLead, error) {
	const q = `
SELECT ` + couponCols + `, ` + leadCols + `
  FROM coupons_issued c
  JOIN leads l ON l.id = c.lead_id
 WHERE c.won_month = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, month)
	if err != nil {
		return nil, err
	}
	return scanCouponWithLead(row)
}

func couponDest(c *model.Coupon, status *string) []interface{} {
	return []interface{}{
		&c.ID, &c.CouponCode, &c.LeadID, &c.IssuedAt, status, &c.RedeemedAt,
		&c.Validated, &c.ValidatedAt, &c.ValidatedBy, &c.Notes, &c.Won, &c.WonAt, &c.WonMonth,
	}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		c      model.Coupon
		status string
	)
	if err := row.Scan(couponDest(&c, &status)...); err != nil {
		return nil, err
	}
	c.Status = model.CouponStatus(status)
	return &c, nil
}

func scanCouponWithLead(row pgx.Row) (*model.CouponWithLead, error) {
	var (
		out    model.CouponWithLead
		l      model.Lead
		status string
	)
	dest := append(couponDest(&out.Coupon, &status), &l.ID, &l.FullName, &l.Email, &l.Phone)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("read coupon", err)
	}
	out.Status = model.CouponStatus(status)
	out.Lead = &l
	return &out, nil
}
