/*
metrics.go - Prometheus metrics for the ledger

PURPOSE:
  Counts ledger mutations and mirrors the current balances as gauges.
  Metrics observes the service (leave.Observer), so handlers never touch
  a counter directly.

METRICS:
  marinalog_ledger_entries_applied_total{type}    Entries recorded
  marinalog_ledger_entries_reversed_total{type}   Entries deleted
  marinalog_ledger_field_events_total{event}      Custom field (de)registrations
  marinalog_ledger_resets_total                   Ledger resets
  marinalog_ledger_balance{key}                   Current balance per key
  marinalog_ledger_expiring_entries               Accruals inside the expiry window

REGISTRY:
  Each Metrics owns its registry, so tests can create as many as they like.
  Served at /metrics by server.go.

SEE ALSO:
  - scheduler.go: Sets the expiring gauge
  - leave/service.go: Observer interface
*/
package api

import (
	"net/http"

	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "marinalog"

type Metrics struct {
	registry *prometheus.Registry

	EntriesApplied  *prometheus.CounterVec
	EntriesReversed *prometheus.CounterVec
	FieldEvents     *prometheus.CounterVec
	Resets          prometheus.Counter
	Balance         *prometheus.GaugeVec
	Expiring        prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EntriesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "entries_applied_total",
			Help:      "Total entries recorded, by entry type.",
		}, []string{"type"}),
		EntriesReversed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "entries_reversed_total",
			Help:      "Total entries deleted and reversed, by entry type.",
		}, []string{"type"}),
		FieldEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "field_events_total",
			Help:      "Custom field registrations and deregistrations.",
		}, []string{"event"}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "resets_total",
			Help:      "Total ledger resets.",
		}),
		Balance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "balance",
			Help:      "Current value of each balance.",
		}, []string{"key"}),
		Expiring: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "expiring_entries",
			Help:      "Accrual entries whose recovery deadline falls inside the expiry window.",
		}),
	}
}

// Observe implements leave.Observer.
func (m *Metrics) Observe(ev leave.Event) {
	switch ev.Kind {
	case leave.EventEntryApplied:
		m.EntriesApplied.WithLabelValues(string(ev.EntryType)).Inc()
	case leave.EventEntryReversed:
		m.EntriesReversed.WithLabelValues(string(ev.EntryType)).Inc()
	case leave.EventFieldRegistered, leave.EventFieldDeregistered:
		m.FieldEvents.WithLabelValues(string(ev.Kind)).Inc()
	case leave.EventReset:
		m.Resets.Inc()
	}
	m.SetBalances(ev.Balances)
}

// SetBalances replaces every balance gauge, dropping keys that are gone.
func (m *Metrics) SetBalances(b generic.Balances) {
	m.Balance.Reset()
	for _, key := range b.Keys() {
		v, _ := b.Get(key).Float64()
		m.Balance.WithLabelValues(key).Set(v)
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

var _ leave.Observer = (*Metrics)(nil)
