// Package datadog implements a DogStatsD backend for the metrics package.
//
// Metric names are translated to Datadog's dotted convention under the
// configured namespace, and labels become "key:value" tags. Phase durations
// are forwarded as timings so the agent renders them in time units.
package datadog

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"listingsetl/internal/metrics"
)

// Config holds DogStatsD backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "etl.".
	Namespace string

	// GlobalTags are tags applied to every metric emitted by this backend,
	// e.g. []string{"env:prod", "service:listings-etl"}.
	GlobalTags []string
}

// Backend is a DogStatsD implementation of metrics.Backend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a DogStatsD metrics backend. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend using a Datadog Count metric.
// Fractional deltas are rounded down.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Count(statsdName(name), int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram implements metrics.Backend. Phase durations arrive in
// seconds and are emitted as timings; anything else goes out as a plain
// histogram.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	if name == "etl_phase_duration_seconds" {
		d := time.Duration(value * float64(time.Second))
		b.client.Timing(statsdName(name), d, labelsToTags(labels), 1)
		return
	}
	b.client.Histogram(statsdName(name), value, labelsToTags(labels), 1)
}

// Flush closes the statsd client, which flushes any buffered data. Intended
// for process shutdown.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// statsdName maps the pipeline's metric names onto Datadog's dotted
// convention. The client's Namespace supplies the "etl." prefix.
func statsdName(name string) string {
	switch name {
	case "etl_phase_total":
		return "phase.runs"
	case "etl_phase_duration_seconds":
		return "phase.duration"
	case "etl_rows_total":
		return "rows"
	default:
		return name
	}
}

// labelsToTags converts labels into Datadog "key:value" tag strings.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, fmt.Sprintf("%s:%s", k, v))
	}
	return out
}
