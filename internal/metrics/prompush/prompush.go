// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch job has no long-lived scrape endpoint, so collected metrics are
// pushed to a Pushgateway at the end of the run instead. All
// Prometheus-specific dependencies live here; the rest of the project depends
// only on the metrics.Backend abstraction.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"listingsetl/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	phaseCounter  *prometheus.CounterVec // "etl_phase_total"
	phaseDuration *prometheus.SummaryVec // "etl_phase_duration_seconds"
	rowCounter    *prometheus.CounterVec // "etl_rows_total"
}

// NewBackend constructs a Pushgateway backend. jobName doubles as the
// Pushgateway grouping key; gatewayURL is the server's base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "etl"
	}

	reg := prometheus.NewRegistry()

	phaseCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_phase_total",
			Help: "Total pipeline phase executions, partitioned by phase and status.",
		},
		[]string{"phase", "status"},
	)
	phaseDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "etl_phase_duration_seconds",
			Help:       "Duration of pipeline phases in seconds, partitioned by phase and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"phase", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_total",
			Help: "Row-level counts per kind (extracted, skipped, processed, db_inserted).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(phaseCounter); err != nil {
		return nil, fmt.Errorf("prompush: register phase counter: %w", err)
	}
	if err := reg.Register(phaseDuration); err != nil {
		return nil, fmt.Errorf("prompush: register phase summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		phaseCounter:  phaseCounter,
		phaseDuration: phaseDuration,
		rowCounter:    rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "etl_phase_total":
		b.phaseCounter.WithLabelValues(labels["phase"], labels["status"]).Add(delta)
	case "etl_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "etl_phase_duration_seconds" {
		return
	}
	b.phaseDuration.WithLabelValues(labels["phase"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
