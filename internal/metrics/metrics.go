// Package metrics exposes prometheus collectors describing how verdicts are
// resolved.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "loan_eligibility"

// Resolutions counts resolved verdicts and times remote calls.
type Resolutions struct {
	total      *prometheus.CounterVec
	remoteCall *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Resolutions, error) {
	m := &Resolutions{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Verdicts delivered, by source and by the failure that forced a fallback.",
		}, []string{"source", "failure"}),
		remoteCall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of remote classifier calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"provider", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.total, m.remoteCall} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveResolution records one delivered verdict. Safe on a nil receiver.
func (m *Resolutions) ObserveResolution(source, failure string) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(source, failure).Inc()
}

// ObserveRemoteCall records the duration of one remote call. Safe on a nil receiver.
func (m *Resolutions) ObserveRemoteCall(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteCall.WithLabelValues(provider, outcome).Observe(d.Seconds())
}
