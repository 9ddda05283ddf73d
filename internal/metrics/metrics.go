// Package metrics defines the Prometheus collectors of the watershed
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations    *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	TraceSteps    prometheus.Histogram
	UpstreamCells prometheus.Histogram
	Reloads       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watershed_operations_total",
				Help: "Total number of hydrology operations by outcome",
			},
			[]string{"operation", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "watershed_operation_duration_seconds",
				Help:    "Duration of hydrology operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		TraceSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watershed_flow_path_steps",
			Help:    "Direction evaluations per flow path trace",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		UpstreamCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "watershed_upstream_cells",
			Help:    "Cells marked per upstream area",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watershed_catalog_reloads_total",
				Help: "Layer catalog reloads by outcome",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration, m.TraceSteps, m.UpstreamCells, m.Reloads)
	return m
}

// Observe records one operation that started at start and ended with err.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, status(err)).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Steps records the step count of a flow path.
func (m *Metrics) Steps(n int) {
	if m == nil {
		return
	}
	m.TraceSteps.Observe(float64(n))
}

// Cells records the size of an upstream area.
func (m *Metrics) Cells(n int) {
	if m == nil {
		return
	}
	m.UpstreamCells.Observe(float64(n))
}

// Reload records a catalog reload.
func (m *Metrics) Reload(err error) {
	if m == nil {
		return
	}
	m.Reloads.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
