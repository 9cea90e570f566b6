package metrics

import "github.com/prometheus/client_golang/prometheus"

// WaitlistMetrics counts waitlist writes.
type WaitlistMetrics struct {
	transitions *prometheus.CounterVec
	created     prometheus.Counter
}

// NewWaitlistMetrics registers the waitlist metrics on the provided registerer.
func NewWaitlistMetrics(reg prometheus.Registerer) *WaitlistMetrics {
	if reg == nil {
		return &WaitlistMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waitlist_status_transitions_total",
		Help: "Waitlist status changes by source and target status.",
	}, []string{"from", "to"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waitlist_entries_created_total",
		Help: "Waitlist entries created.",
	})
	reg.MustRegister(transitions, created)
	return &WaitlistMetrics{transitions: transitions, created: created}
}

func (m *WaitlistMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *WaitlistMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}
