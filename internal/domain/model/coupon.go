package model

import (
	"io"
	"regexp"
	"strings"
	"time"
)

type CouponStatus string

const (
	CouponIssued   CouponStatus = "issued"
	CouponRedeemed CouponStatus = "redeemed"
	CouponVoid     CouponStatus = "void"
)

// CouponCodePrefix marks free-text queries that target coupon codes.
const CouponCodePrefix = "GP-"

var canonicalCode = regexp.MustCompile(`^GP-[A-Z0-9]{6}$`)

// Coupon is a code issued to a lead. It becomes eligible for the monthly draw once validated.
type Coupon struct {
	ID          string       `json:"id"`
	CouponCode  string       `json:"coupon_code"`
	LeadID      string       `json:"lead_id"`
	IssuedAt    time.Time    `json:"issued_at"`
	Status      CouponStatus `json:"status"`
	RedeemedAt  *time.Time   `json:"redeemed_at"`
	Validated   bool         `json:"validated"`
	ValidatedAt *time.Time   `json:"validated_at"`
	ValidatedBy *string      `json:"validated_by"`
	Notes       *string      `json:"notes"`
	Won         bool         `json:"won"`
	WonAt       *time.Time   `json:"won_at"`
	WonMonth    *string      `json:"won_month"`
}

// IsVoid reports whether the coupon was cancelled; void accepts no transition.
func (c *Coupon) IsVoid() bool { return c.Status == CouponVoid }

// IsRedeemed reports whether the coupon was already presented (redeemed and validated are the same event).
func (c *Coupon) IsRedeemed() bool { return c.Validated || c.Status == CouponRedeemed }

// CouponWithLead is a coupon row joined with its owning lead.
type CouponWithLead struct {
	Coupon
	Lead *Lead `json:"lead"`
}

// CouponLookup is the result of resolving a user supplied code.
// Found=false is the expected miss, not an error.
type CouponLookup struct {
	Found  bool    `json:"found"`
	Coupon *Coupon `json:"coupon,omitempty"`
	Lead   *Lead   `json:"lead,omitempty"`
}

// NormalizeCode trims and upper-cases a code before any lookup or write.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCanonicalCode reports whether code already has the GP-XXXXXX shape.
func IsCanonicalCode(code string) bool {
	return canonicalCode.MatchString(code)
}

// LooksLikeCouponCode decides whether a search query targets coupon codes
// rather than lead contact fields.
func LooksLikeCouponCode(query string) bool {
	return strings.HasPrefix(NormalizeCode(query), CouponCodePrefix)
}

type CouponFilter string

const (
	FilterAll         CouponFilter = "all"
	FilterValidated   CouponFilter = "validated"
	FilterUnvalidated CouponFilter = "unvalidated"
)

// ParseCouponFilter maps the query-string value; empty means all.
func ParseCouponFilter(s string) (CouponFilter, bool) {
	switch CouponFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, true
	case FilterValidated:
		return FilterValidated, true
	case FilterUnvalidated:
		return FilterUnvalidated, true
	}
	return "", false
}

// CouponQuery selects a page of the coupon listing.
type CouponQuery struct {
	Filter CouponFilter
	Query  string
	Limit  int
}

// codeChars avoids ambiguous characters like O/0 and I/1.
const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCouponCode returns a random GP-XXXXXX code read from r (crypto/rand.Reader in production).
func GenerateCouponCode(r io.Reader) (string, error) {
	buf := make([]byte, 6)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeChars[int(buf[i])%len(codeChars)]
	}
	return CouponCodePrefix + string(buf), nil
}
