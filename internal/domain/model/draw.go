package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"autos-admin/internal/domain"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// DrawMonth is the calendar month key (YYYY-MM) of a prize draw.
type DrawMonth struct {
	Year  int
	Month time.Month
}

// ParseDrawMonth validates s against YYYY-MM with a month in 01..12.
func ParseDrawMonth(s string) (DrawMonth, error) {
	if !monthPattern.MatchString(s) {
		return DrawMonth{}, domain.ErrInvalidMonth
	}
	y, _ := strconv.Atoi(s[:4])
	m, _ := strconv.Atoi(s[5:])
	if m < 1 || m > 12 {
		return DrawMonth{}, domain.ErrInvalidMonth
	}
	return DrawMonth{Year: y, Month: time.Month(m)}, nil
}

func (d DrawMonth) String() string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// Window returns the half-open UTC interval [start, end) covered by the month.
func (d DrawMonth) Window() (start, end time.Time) {
	start = time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Contains reports whether t falls inside the month window.
func (d DrawMonth) Contains(t time.Time) bool {
	start, end := d.Window()
	return !t.Before(start) && t.Before(end)
}

// Participant is a coupon validated within a draw month.
type Participant struct {
	CouponCode  string    `json:"coupon_code"`
	ValidatedAt time.Time `json:"validated_at"`
	Lead        *Lead     `json:"lead"`
}
