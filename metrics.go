package speechactivity

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "speechactivity"

// Metrics holds the prometheus collectors updated by SpeechActivity instances. One Metrics
// is usually shared by all conferences; a nil *Metrics disables collection.
type Metrics struct {
	dispatchCycles         prometheus.Counter
	dispatchStartFailures  prometheus.Counter
	dispatchersRunning     prometheus.Gauge
	notifications          *prometheus.CounterVec
	dominantSpeakerChanges prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg, if it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dispatch_cycles_total",
			Help:      "Number of executed event dispatch cycles.",
		}),
		dispatchStartFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dispatch_start_failures_total",
			Help:      "Number of event dispatchers which could not be scheduled.",
		}),
		dispatchersRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dispatchers_running",
			Help:      "Number of event dispatchers currently running.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Number of change notifications delivered, by event.",
		}, []string{"event"}),
		dominantSpeakerChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dominant_speaker_changes_total",
			Help:      "Number of dominant speaker changes accepted by conferences.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.dispatchCycles,
			m.dispatchStartFailures,
			m.dispatchersRunning,
			m.notifications,
			m.dominantSpeakerChanges,
		)
	}

	return m
}

func (m *Metrics) dispatchCycle() {
	if m != nil {
		m.dispatchCycles.Inc()
	}
}

func (m *Metrics) dispatchStartFailed() {
	if m != nil {
		m.dispatchStartFailures.Inc()
	}
}

func (m *Metrics) dispatcherStarted() {
	if m != nil {
		m.dispatchersRunning.Inc()
	}
}

func (m *Metrics) dispatcherExited() {
	if m != nil {
		m.dispatchersRunning.Dec()
	}
}

func (m *Metrics) notified(event string) {
	if m != nil {
		m.notifications.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) dominantSpeakerChanged() {
	if m != nil {
		m.dominantSpeakerChanges.Inc()
	}
}
