package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Verification outcomes recorded by WebhookMetrics.
const (
	OutcomeVerified      = "verified"
	OutcomeMissing       = "missing_signature"
	OutcomeInvalid       = "invalid_signature"
	OutcomeMisconfigured = "misconfigured"
	OutcomeMalformed     = "malformed"
	OutcomeDuplicate     = "duplicate"
)

// WebhookMetrics records signature verification and dispatch results.
type WebhookMetrics struct {
	verifications *prometheus.CounterVec
	dispatch      *prometheus.HistogramVec
	matches       *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_verifications_total",
		Help: "Webhook signature verification attempts by outcome.",
	}, []string{"kind", "outcome"})
	dispatch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_dispatch_duration_seconds",
		Help:    "Time spent dispatching verified webhooks to handlers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_matched_entries_total",
		Help: "Waitlist entries matched by dispatched webhooks.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_dispatch_failures_total",
		Help: "Dispatches that returned an error.",
	}, []string{"kind"})
	reg.MustRegister(verifications, dispatch, matches, failures)
	return &WebhookMetrics{
		verifications: verifications,
		dispatch:      dispatch,
		matches:       matches,
		failures:      failures,
	}
}

// IncVerification counts a verification attempt for kind with the given outcome.
func (m *WebhookMetrics) IncVerification(kind, outcome string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveDispatch records one dispatch. A non-nil err also counts a failure.
func (m *WebhookMetrics) ObserveDispatch(kind string, duration time.Duration, matched int, err error) {
	if m == nil || m.dispatch == nil {
		return
	}
	kind = normalizeLabel(kind)
	m.dispatch.WithLabelValues(kind).Observe(duration.Seconds())
	if matched > 0 {
		m.matches.WithLabelValues(kind).Add(float64(matched))
	}
	if err != nil {
		m.failures.WithLabelValues(kind).Inc()
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
