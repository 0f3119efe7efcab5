// Package metrics exposes the ledger's Prometheus instruments.
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "stockledger"

type Metrics struct {
	StockMutations      *prometheus.CounterVec
	AlertsRaised        *prometheus.CounterVec
	AlertsResolved      prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	DashboardCache      *prometheus.CounterVec
	DigestRuns          *prometheus.CounterVec
	DigestDuration      prometheus.Histogram
}

// NewMetrics creates and registers the ledger metrics.
// Returns nil if reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		StockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "mutations_total",
			Help:      "Committed item mutations by operation.",
		}, []string{"operation"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "raised_total",
			Help:      "Alerts created, by type and origin (system or manual).",
		}, []string{"alert_type", "origin"}),
		AlertsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "resolved_total",
			Help:      "Alerts moved from ACTIVE to RESOLVED.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Notifications delivered, by sender.",
		}, []string{"sender"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "failed_total",
			Help:      "Notification deliveries that failed, by sender.",
		}, []string{"sender"}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cache_lookups_total",
			Help:      "Dashboard cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		DigestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "digest",
			Name:      "runs_total",
			Help:      "Stock digest runs by result.",
		}, []string{"result"}),
		DigestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "digest",
			Name:      "duration_seconds",
			Help:      "Time spent building and dispatching the stock digest.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	reg.MustRegister(
		m.StockMutations,
		m.AlertsRaised,
		m.AlertsResolved,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.DashboardCache,
		m.DigestRuns,
		m.DigestDuration,
	)

	return m
}

func (m *Metrics) StockMutation(operation string) {
	if m == nil {
		return
	}
	m.StockMutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) AlertRaised(alertType, origin string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType, origin).Inc()
}

func (m *Metrics) AlertResolved() {
	if m == nil {
		return
	}
	m.AlertsResolved.Inc()
}

func (m *Metrics) NotificationDelivered(sender string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.NotificationsFailed.WithLabelValues(sender).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(sender).Inc()
}

func (m *Metrics) DashboardCacheLookup(result string) {
	if m == nil {
		return
	}
	m.DashboardCache.WithLabelValues(result).Inc()
}

func (m *Metrics) DigestRun(result string, seconds float64) {
	if m == nil {
		return
	}
	m.DigestRuns.WithLabelValues(result).Inc()
	m.DigestDuration.Observe(seconds)
}
