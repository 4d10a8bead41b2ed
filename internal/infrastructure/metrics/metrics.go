// Package metrics keeps per-process Prometheus counters for habit operations.
// There is no listener; the registry is flushed to a node-exporter textfile
// when the process exits.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation results used as label values.
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// Metrics holds the registry and collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	fileWrites   *prometheus.CounterVec
	saveDuration prometheus.Histogram
	habits       prometheus.Gauge
}

// New creates a fresh registry with all habit collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_operations_total",
			Help: "Total number of habit operations by result",
		},
		[]string{"operation", "result"},
	)

	fileWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_file_writes_total",
			Help: "Total number of whole-file rewrites of the habit file",
		},
		[]string{"result"},
	)

	saveDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "habits_file_write_duration_seconds",
			Help:    "Habit file rewrite duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	habits := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "habits_tracked",
			Help: "Number of habits currently in the store",
		},
	)

	registry.MustRegister(operations, fileWrites, saveDuration, habits)

	return &Metrics{
		registry:     registry,
		operations:   operations,
		fileWrites:   fileWrites,
		saveDuration: saveDuration,
		habits:       habits,
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation counts one service call.
func (m *Metrics) ObserveOperation(operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// ObserveFileWrite counts one rewrite of the habit file.
func (m *Metrics) ObserveFileWrite(duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.fileWrites.WithLabelValues(result).Inc()
	m.saveDuration.Observe(duration.Seconds())
}

// SetHabitCount records the current size of the store.
func (m *Metrics) SetHabitCount(n int) {
	if m == nil {
		return
	}
	m.habits.Set(float64(n))
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
