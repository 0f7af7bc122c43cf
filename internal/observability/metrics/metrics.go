package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters for prospect pipeline activity.
type PipelineMetrics struct {
	mutationsTotal   *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	contactsTotal    *prometheus.CounterVec
	digestsTotal     *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "prospects",
			Name:      "mutations_total",
			Help:      "Prospect store operations by result",
		}, []string{"op", "result"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "prospects",
			Name:      "status_transitions_total",
			Help:      "Prospect status changes",
		}, []string{"from", "to"}),
		contactsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "prospects",
			Name:      "contacts_logged_total",
			Help:      "Logged prospect touches by contact type",
		}, []string{"type"}),
		digestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Subsystem: "followup",
			Name:      "digests_total",
			Help:      "Follow-up digest runs by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.transitionsTotal, m.contactsTotal, m.digestsTotal)
	return m
}

func (m *PipelineMetrics) ObserveMutation(op, result string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(op, result).Inc()
}

func (m *PipelineMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *PipelineMetrics) ObserveContact(contactType string) {
	if m == nil {
		return
	}
	m.contactsTotal.WithLabelValues(contactType).Inc()
}

// ObserveDigest records a digest run: "sent", "empty" or "failed".
func (m *PipelineMetrics) ObserveDigest(outcome string) {
	if m == nil {
		return
	}
	m.digestsTotal.WithLabelValues(outcome).Inc()
}
