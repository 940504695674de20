package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records settlement outcomes per payment method.
type PaymentMetrics struct {
	settled  *prometheus.CounterVec
	noops    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewPaymentMetrics registers the settlement metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settled_total",
		Help: "Orders marked paid, by payment method.",
	}, []string{"method"})
	noops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_already_settled_total",
		Help: "Settlement attempts that found the order already paid.",
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlement_failures_total",
		Help: "Settlement attempts that failed, by payment method.",
	}, []string{"method"})
	reg.MustRegister(settled, noops, failures)
	return &PaymentMetrics{
		settled:  settled,
		noops:    noops,
		failures: failures,
	}
}

// IncSettled increments the settled counter for the given method.
func (m *PaymentMetrics) IncSettled(method string) {
	if m == nil || m.settled == nil {
		return
	}
	m.settled.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncAlreadySettled increments the idempotent no-op counter.
func (m *PaymentMetrics) IncAlreadySettled(method string) {
	if m == nil || m.noops == nil {
		return
	}
	m.noops.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure increments the failure counter for the given method.
func (m *PaymentMetrics) IncFailure(method string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(method)).Inc()
}

func normalizeLabel(method string) string {
	if method == "" {
		return "unknown"
	}
	return method
}
