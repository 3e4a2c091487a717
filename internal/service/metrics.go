package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ivanoskov/keloladuit/internal/model"
)

// MetricsRecorder receives the ledger's operational counters
type MetricsRecorder interface {
	TransactionRecorded(t model.TransactionType)
	TransactionDeleted()
	RemoteFailure(op string)
	MonthlyReset()
	SessionOpened()
}

type PrometheusMetrics struct {
	recorded       *prometheus.CounterVec
	deleted        prometheus.Counter
	remoteFailures *prometheus.CounterVec
	resets         prometheus.Counter
	sessions       prometheus.Counter
}

// NewPrometheusMetrics registers the counters on reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		recorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keloladuit_transactions_recorded_total",
				Help: "Total number of transactions recorded by type",
			},
			[]string{"type"},
		),
		deleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "keloladuit_transactions_deleted_total",
				Help: "Total number of transactions deleted",
			},
		),
		remoteFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keloladuit_remote_failures_total",
				Help: "Total number of failed transaction store calls by operation",
			},
			[]string{"op"},
		),
		resets: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "keloladuit_monthly_resets_total",
				Help: "Total number of monthly resets applied to live views",
			},
		),
		sessions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "keloladuit_sessions_opened_total",
				Help: "Total number of user sessions opened",
			},
		),
	}
}

func (m *PrometheusMetrics) TransactionRecorded(t model.TransactionType) {
	m.recorded.WithLabelValues(string(t)).Inc()
}

func (m *PrometheusMetrics) TransactionDeleted() { m.deleted.Inc() }

func (m *PrometheusMetrics) RemoteFailure(op string) {
	m.remoteFailures.WithLabelValues(op).Inc()
}

func (m *PrometheusMetrics) MonthlyReset() { m.resets.Inc() }

func (m *PrometheusMetrics) SessionOpened() { m.sessions.Inc() }

// NoopMetrics discards everything
type NoopMetrics struct{}

func (NoopMetrics) TransactionRecorded(model.TransactionType) {}
func (NoopMetrics) TransactionDeleted()                       {}
func (NoopMetrics) RemoteFailure(string)                      {}
func (NoopMetrics) MonthlyReset()                             {}
func (NoopMetrics) SessionOpened()                            {}
