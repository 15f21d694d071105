package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics exposes counters/histograms for the payment confirmation flow.
type PaymentMetrics struct {
	parseTotal     *prometheus.CounterVec
	confirmTotal   *prometheus.CounterVec
	confirmLatency *prometheus.HistogramVec
}

func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	m := &PaymentMetrics{
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "payments",
			Name:      "parse_total",
			Help:      "Total confirmation-text parse requests",
		}, []string{"method", "ready"}),
		confirmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agenda",
			Subsystem: "payments",
			Name:      "confirm_total",
			Help:      "Total confirm-payment requests by outcome",
		}, []string{"outcome"}),
		confirmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agenda",
			Subsystem: "payments",
			Name:      "confirm_latency_seconds",
			Help:      "Latency of confirm-payment processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.parseTotal, m.confirmTotal, m.confirmLatency)
	return m
}

func (m *PaymentMetrics) ObserveParse(method string, ready bool) {
	if m == nil {
		return
	}
	label := "false"
	if ready {
		label = "true"
	}
	m.parseTotal.WithLabelValues(method, label).Inc()
}

func (m *PaymentMetrics) ObserveConfirm(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.confirmTotal.WithLabelValues(outcome).Inc()
	m.confirmLatency.WithLabelValues(outcome).Observe(seconds)
}
