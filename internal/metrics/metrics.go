// Package metrics holds the Prometheus metrics for devpolicy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the daemon.
type Metrics struct {
	registry *prometheus.Registry

	ResolverEvents *prometheus.CounterVec
	BindingChanges *prometheus.CounterVec
	SettingWrites  *prometheus.CounterVec
	Ready          prometheus.Gauge
}

// New creates the metrics on a fresh registry, so several instances can
// coexist in one process (tests, harness runs).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ResolverEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devpolicy_resolver_events_total",
			Help: "Package-resolution events processed, by kind and outcome",
		}, []string{"kind", "outcome"}),
		BindingChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devpolicy_binding_changes_total",
			Help: "Identity binding changes, by binding",
		}, []string{"binding"}),
		SettingWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "devpolicy_setting_writes_total",
			Help: "Committed policy setting writes, by key",
		}, []string{"key"}),
		Ready: factory.NewGauge(prometheus.GaugeOpts{
			Name: "devpolicy_ready",
			Help: "1 once the host reported boot completion",
		}),
	}
}

// Registry returns the Prometheus registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventProcessed counts one resolver event.
func (m *Metrics) EventProcessed(kind, outcome string) {
	m.ResolverEvents.WithLabelValues(kind, outcome).Inc()
	if outcome == "ready" {
		m.Ready.Set(1)
	}
}

// BindingChanged counts one binding change.
func (m *Metrics) BindingChanged(binding string) {
	m.BindingChanges.WithLabelValues(binding).Inc()
}

// SettingWritten counts one committed setting write.
func (m *Metrics) SettingWritten(key string) {
	m.SettingWrites.WithLabelValues(key).Inc()
}

// SetReady sets the readiness gauge.
func (m *Metrics) SetReady(ready bool) {
	if ready {
		m.Ready.Set(1)
		return
	}
	m.Ready.Set(0)
}
