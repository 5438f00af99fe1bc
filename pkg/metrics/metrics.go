package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order assembly and payment capture activity.
type CheckoutMetrics struct {
	orderDuration   *prometheus.HistogramVec
	ordersSubmitted *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	captures        *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_duration_seconds",
		Help:    "Duration of order submissions to the upstream shop in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	ordersSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders submitted to the upstream shop, by outcome.",
	}, []string{"outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioning_fallback_total",
		Help: "Line items submitted with a SKU-only fallback after product provisioning failed.",
	}, []string{"offering"})
	captures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_captures_total",
		Help: "Payment capture attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(orderDuration, ordersSubmitted, fallbacks, captures)
	return &CheckoutMetrics{
		orderDuration:   orderDuration,
		ordersSubmitted: ordersSubmitted,
		fallbacks:       fallbacks,
		captures:        captures,
	}
}

// ObserveOrderDuration records how long an order submission took.
func (c *CheckoutMetrics) ObserveOrderDuration(status string, duration time.Duration) {
	if c == nil || c.orderDuration == nil {
		return
	}
	c.orderDuration.WithLabelValues(normalizeLabel(status)).Observe(duration.Seconds())
}

// IncOrderSubmitted counts an order submission outcome.
func (c *CheckoutMetrics) IncOrderSubmitted(outcome string) {
	if c == nil || c.ordersSubmitted == nil {
		return
	}
	c.ordersSubmitted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncProvisioningFallback counts a SKU-only fallback for the named offering.
// Operators watch this series to detect catalog drift.
func (c *CheckoutMetrics) IncProvisioningFallback(offering string) {
	if c == nil || c.fallbacks == nil {
		return
	}
	c.fallbacks.WithLabelValues(normalizeLabel(offering)).Inc()
}

// IncCapture counts a payment capture outcome.
func (c *CheckoutMetrics) IncCapture(outcome string) {
	if c == nil || c.captures == nil {
		return
	}
	c.captures.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
