// Package observability records in-process Prometheus metrics for the
// activity write path and the factor table. Nothing is exposed over the
// network; an embedding program decides what to do with the registry.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "footprint"

// Metrics is safe to use as a nil pointer, in which case it records nothing.
type Metrics struct {
	activitiesCreated *prometheus.CounterVec
	activitiesDeleted prometheus.Counter
	recordedKg        *prometheus.CounterVec
	storeErrors       *prometheus.CounterVec
	factorEntries     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activities",
			Name:      "created_total",
			Help:      "Activities persisted, by category.",
		}, []string{"category"}),
		activitiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activities",
			Name:      "deleted_total",
			Help:      "Activities removed from the store.",
		}),
		recordedKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorded_kg_total",
			Help:      "Kilograms of CO2e recorded at creation time, by category.",
		}, []string{"category"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed store operations, by operation.",
		}, []string{"op"}),
		factorEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "factor_table",
			Name:      "entries",
			Help:      "Emission factors available; zero when the table failed to load.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.activitiesCreated, m.activitiesDeleted, m.recordedKg, m.storeErrors, m.factorEntries)
	}
	return m
}

// ActivityCreated counts one stored activity and its footprint.
func (m *Metrics) ActivityCreated(category string, kg float64) {
	if m == nil {
		return
	}
	m.activitiesCreated.WithLabelValues(category).Inc()
	if kg > 0 {
		m.recordedKg.WithLabelValues(category).Add(kg)
	}
}

// ActivitiesDeleted counts n removed activities.
func (m *Metrics) ActivitiesDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.activitiesDeleted.Add(float64(n))
}

// StoreError counts a failed store operation.
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// FactorTableSize records how many factors are loaded.
func (m *Metrics) FactorTableSize(n int) {
	if m == nil {
		return
	}
	m.factorEntries.Set(float64(n))
}
