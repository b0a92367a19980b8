package status

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stoker/pkg/runner"
	"github.com/aretw0/stoker/pkg/target"
	"github.com/aretw0/stoker/pkg/watch"
)

// Metrics holds the watch-session counters exported at /metrics.
type Metrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	watchEvents *prometheus.CounterVec
}

// NewMetrics registers the stoker collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stoker_runs_total",
				Help: "Completed target runs by outcome",
			},
			[]string{"target", "outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "stoker_run_duration_seconds",
				Help: "Wall-clock duration of target runs",
			},
			[]string{"target"},
		),
		watchEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stoker_watch_events_total",
				Help: "File change events absorbed by the watch session",
			},
			[]string{"target"},
		),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.watchEvents)
	return m
}

// Hooks adapts the metrics to watch controller observers.
func (m *Metrics) Hooks(t *target.Target) watch.Hooks {
	return watch.Hooks{
		OnTrigger: func(tr watch.Trigger) {
			m.watchEvents.WithLabelValues(t.Name).Add(float64(tr.Count))
		},
		OnRunEnd: func(res *runner.Result) {
			m.runsTotal.WithLabelValues(t.Name, res.Outcome.String()).Inc()
			m.runDuration.WithLabelValues(t.Name).Observe(res.Duration().Seconds())
		},
	}
}
