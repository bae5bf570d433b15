package engine

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records engine runs. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the engine collectors and registers them on reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mwatdr",
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Engine runs by exit code.",
		}, []string{"exit_code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mwatdr",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall time of engine runs that produced an exit code.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~34m
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration)
	}
	return m
}

func (m *Metrics) observe(code int, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(strconv.Itoa(code)).Inc()
	m.duration.Observe(d.Seconds())
}
