package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the engine's Prometheus collectors. Registering the same
// set twice on one registry panics, so an app creates exactly one Metrics
// and shares it.
type Metrics struct {
	UpdatesTotal   *prometheus.CounterVec
	FlowsStarted   *prometheus.CounterVec
	FlowsCompleted *prometheus.CounterVec
	FlowsCancelled *prometheus.CounterVec
	ActiveFlows    prometheus.Gauge
	UpdateDuration *prometheus.HistogramVec
}

// NewMetrics builds and registers the collectors. Pass
// prometheus.DefaultRegisterer outside tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgflow_updates_total",
				Help: "Total number of inbound updates by kind",
			},
			[]string{"kind"},
		),
		FlowsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgflow_flows_started_total",
				Help: "Total number of flow runs entered",
			},
			[]string{"flow"},
		),
		FlowsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgflow_flows_completed_total",
				Help: "Total number of flow runs finished",
			},
			[]string{"flow"},
		),
		FlowsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgflow_flows_cancelled_total",
				Help: "Total number of flow runs aborted with /cancel",
			},
			[]string{"flow"},
		),
		ActiveFlows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tgflow_active_flows",
				Help: "Number of flow runs currently in progress",
			},
		),
		UpdateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tgflow_update_duration_seconds",
				Help: "Duration of update handling",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(
		m.UpdatesTotal,
		m.FlowsStarted,
		m.FlowsCompleted,
		m.FlowsCancelled,
		m.ActiveFlows,
		m.UpdateDuration,
	)
	return m
}
