// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the ETL job.
//
// It exposes a narrow Backend interface focused on counters and timings, and
// a global, pluggable backend that defaults to a no-op implementation, so
// metric calls are always safe even when no real backend is configured. The
// pattern mirrors the storage factory: core code depends only on this
// package, concrete systems live in subpackages.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordPhase measures latency plus success/failure for one pipeline phase
// (extract, transform, quality, load).
func RecordPhase(job, phase string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"phase":  phase,
		"status": status,
	}

	backend.IncCounter("etl_phase_total", 1, lbls)
	backend.ObserveHistogram("etl_phase_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields:
//   - "extracted"
//   - "skipped"
//   - "processed"
//   - "db_inserted"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("etl_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
