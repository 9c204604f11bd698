// Package metrics holds the Prometheus collectors of the auth service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on auth_action_total.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal      *prometheus.CounterVec
	HousekeepingTotal *prometheus.CounterVec
}

// New creates a private registry with the Go and process collectors plus the
// auth counters.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_action_total",
				Help: "Auth endpoint calls by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		HousekeepingTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_housekeeping_deleted_total",
				Help: "Expired rows removed by the housekeeping sweep",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(m.ActionsTotal)
	registry.MustRegister(m.HousekeepingTotal)
	return m
}

// ObserveAction counts one call. A nil receiver is a no-op so callers can run
// without metrics.
func (m *Metrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveSwept adds n removed rows of the given kind.
func (m *Metrics) ObserveSwept(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.HousekeepingTotal.WithLabelValues(kind).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
