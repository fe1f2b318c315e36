// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(couponTransitionsTotal, couponLookupsTotal, drawOpsTotal)
}

var (
	couponTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_transitions_total",
			Help: "Coupon state transitions by action and outcome.",
		},
		[]string{"action", "result"}, // action: redeem|validate|unvalidate
	)

	couponLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_lookups_total",
			Help: "Coupon lookups labeled found/missing.",
		},
		[]string{"result"},
	)

	drawOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_operations_total",
			Help: "Monthly draw operations by step and outcome.",
		},
		[]string{"op", "result"}, // op: participants|pick|confirm
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Result maps an error to a low-cardinality outcome label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

// -------- Coupon helpers --------

func IncCouponTransition(action, result string) {
	couponTransitionsTotal.WithLabelValues(norm(action), norm(result)).Inc()
}

func IncCouponLookup(found bool) {
	if found {
		couponLookupsTotal.WithLabelValues("found").Inc()
		return
	}
	couponLookupsTotal.WithLabelValues("missing").Inc()
}

// -------- Draw helpers --------

func IncDrawOp(op, result string) {
	drawOpsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
