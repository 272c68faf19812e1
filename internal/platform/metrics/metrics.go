package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	CredentialsCreated prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	EndpointLatency    *prometheus.HistogramVec

	// Anchoring metrics
	AnchorAttempts  prometheus.Counter
	AnchorOutcomes  *prometheus.CounterVec
	AnchorLatency   prometheus.Histogram
	PendingAnchors  prometheus.Gauge

	// Verification metrics
	VerificationLookups *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		CredentialsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ijazah_credentials_created_total",
			Help: "Total number of credentials created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ijazah_status_transitions_total",
			Help: "Total number of credential status transitions, labeled by target status",
		}, []string{"target"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ijazah_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		AnchorAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ijazah_anchor_attempts_total",
			Help: "Total number of ledger publish attempts",
		}),
		AnchorOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ijazah_anchor_outcomes_total",
			Help: "Total number of ledger publish outcomes, labeled by outcome",
		}, []string{"outcome"}),
		AnchorLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ijazah_anchor_latency_seconds",
			Help:    "Latency of full publish-and-confirm cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		PendingAnchors: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ijazah_pending_anchors",
			Help: "Current number of anchor records awaiting confirmation",
		}),
		VerificationLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ijazah_verification_lookups_total",
			Help: "Total number of public verification lookups, labeled by result reason",
		}, []string{"reason"}),
	}
}

// IncrementCredentialsCreated increments the credentials created counter by 1
func (m *Metrics) IncrementCredentialsCreated() {
	m.CredentialsCreated.Inc()
}

// IncrementStatusTransition increments the transition counter with the target status label
func (m *Metrics) IncrementStatusTransition(target string) {
	m.StatusTransitions.WithLabelValues(target).Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

// IncrementAnchorAttempts increments the publish attempt counter by 1
func (m *Metrics) IncrementAnchorAttempts() {
	m.AnchorAttempts.Inc()
}

// IncrementAnchorOutcome increments the publish outcome counter with the outcome label
func (m *Metrics) IncrementAnchorOutcome(outcome string) {
	m.AnchorOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveAnchorLatency records the latency of a publish-and-confirm cycle
func (m *Metrics) ObserveAnchorLatency(durationSeconds float64) {
	m.AnchorLatency.Observe(durationSeconds)
}

// IncrementPendingAnchors increments the pending anchors gauge
func (m *Metrics) IncrementPendingAnchors() {
	m.PendingAnchors.Inc()
}

// DecrementPendingAnchors decrements the pending anchors gauge
func (m *Metrics) DecrementPendingAnchors() {
	m.PendingAnchors.Dec()
}

// IncrementVerificationLookup increments the lookup counter with the reason label.
// Successful lookups use the "valid" reason.
func (m *Metrics) IncrementVerificationLookup(reason string) {
	m.VerificationLookups.WithLabelValues(reason).Inc()
}
