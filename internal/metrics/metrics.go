// Package metrics registers the Prometheus counters of the POS engine and
// exposes the /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "checkouts_total",
		Help:      "Settled checkouts by payment method.",
	}, []string{"method"})

	CheckoutAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "checkout_amount_centimes_total",
		Help:      "Invoice totals settled, in centimes, by payment method.",
	}, []string{"method"})

	OversellFlagsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "oversell_flags_total",
		Help:      "Stock deductions that were clamped at zero.",
	})

	SessionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "cash_sessions_opened_total",
		Help:      "Cash sessions opened.",
	})

	SessionsClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "cash_sessions_closed_total",
		Help:      "Cash sessions closed.",
	})

	PromoDiscountCents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ba9alino",
		Name:      "promo_discount_centimes_total",
		Help:      "Discount granted by promotions at settlement, in centimes.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
