package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the verification domain.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	IssuerUnavailable  prometheus.Counter
	VerifyDuration     prometheus.Histogram
}

// New creates and registers all verification metrics on the default registry.
// Call once per process; tests pass a nil *Metrics to services instead.
func New() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attest_verifications_total",
			Help: "Verification attempts by terminal status",
		}, []string{"status"}),
		IssuerUnavailable: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_verification_issuer_unavailable_total",
			Help: "Verification attempts aborted because the issuance service was unreachable",
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attest_verification_duration_seconds",
			Help:    "Latency of the verification state machine",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncStatus counts one terminal outcome, tolerating a nil receiver.
func (m *Metrics) IncStatus(status string) {
	if m != nil {
		m.VerificationsTotal.WithLabelValues(status).Inc()
	}
}

// IncIssuerUnavailable counts one aborted attempt, tolerating a nil receiver.
func (m *Metrics) IncIssuerUnavailable() {
	if m != nil {
		m.IssuerUnavailable.Inc()
	}
}

// ObserveVerifyDuration records the state machine latency, tolerating a nil receiver.
func (m *Metrics) ObserveVerifyDuration(seconds float64) {
	if m != nil {
		m.VerifyDuration.Observe(seconds)
	}
}
