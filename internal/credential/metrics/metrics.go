package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the issuance domain.
type Metrics struct {
	CredentialsIssued prometheus.Counter
	DuplicateRefusals prometheus.Counter
	IssueDuration     prometheus.Histogram
}

// New creates and registers all issuance metrics on the default registry.
// Call once per process; tests pass a nil *Metrics to services instead.
func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		DuplicateRefusals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attest_credential_duplicates_refused_total",
			Help: "Total number of issuance requests refused because the holder already has a credential of that type",
		}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attest_credential_issue_duration_seconds",
			Help:    "Latency of the issuance workflow",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncIssued increments the issued counter, tolerating a nil receiver.
func (m *Metrics) IncIssued() {
	if m != nil {
		m.CredentialsIssued.Inc()
	}
}

// IncDuplicate increments the duplicate-refusal counter, tolerating a nil receiver.
func (m *Metrics) IncDuplicate() {
	if m != nil {
		m.DuplicateRefusals.Inc()
	}
}

// ObserveIssueDuration records the issuance latency, tolerating a nil receiver.
func (m *Metrics) ObserveIssueDuration(seconds float64) {
	if m != nil {
		m.IssueDuration.Observe(seconds)
	}
}
