package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Runs          *prometheus.CounterVec
	Users         *prometheus.CounterVec
	BoostsExpired prometheus.Counter
	Duration      prometheus.Histogram
}

// New регистрирует метрики в дефолтном реестре (его отдаёт promhttp).
func New() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quota_reconcile_runs_total",
			Help: "Reconciliation job runs by result.",
		}, []string{"result"}),
		Users: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quota_reconcile_users_total",
			Help: "Users touched by reconciliation, by outcome.",
		}, []string{"outcome"}),
		BoostsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quota_reconcile_boosts_expired_total",
			Help: "Boost grants expired by reconciliation.",
		}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "quota_reconcile_duration_seconds",
			Help:    "End-to-end duration of a reconciliation run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

func (m *Metrics) ObserveRun(success bool, updated, skipped, failed, expired int, seconds float64) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.Runs.WithLabelValues(result).Inc()
	m.Users.WithLabelValues("updated").Add(float64(updated))
	m.Users.WithLabelValues("skipped").Add(float64(skipped))
	m.Users.WithLabelValues("failed").Add(float64(failed))
	m.BoostsExpired.Add(float64(expired))
	m.Duration.Observe(seconds)
}
