package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы Dispatch для метрики social_client_dispatch_total.
const (
	outcomeOK              = "ok"
	outcomeUnauthenticated = "unauthenticated"
	outcomeSessionExpired  = "session_expired"
	outcomeRefreshTimeout  = "refresh_timeout"
	outcomeCanceled        = "canceled"
	outcomeTransportError  = "transport_error"
)

// Metrics — счётчики gateway. Нулевой указатель допустим: методы no-op.
type Metrics struct {
	dispatches      *prometheus.CounterVec
	renewals        *prometheus.CounterVec
	renewalDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "social_client",
			Name:      "dispatch_total",
			Help:      "Authenticated requests by outcome.",
		}, []string{"outcome"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "social_client",
			Name:      "renewals_total",
			Help:      "Credential renewal network calls by result.",
		}, []string{"result"}),
		renewalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "social_client",
			Name:      "renewal_duration_seconds",
			Help:      "Duration of credential renewal network calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.dispatches, m.renewals, m.renewalDuration)
	}

	return m
}

func (m *Metrics) dispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) renewal(result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(result).Inc()
	m.renewalDuration.Observe(dur.Seconds())
}
