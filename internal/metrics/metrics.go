// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the dashboard pipeline.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and
//     timing data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no
//     real backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, Datadog) are
//     isolated in subpackages; the rest of the codebase depends only on
//     this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend.
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

// RecordStage measures latency + success/failure for one pipeline stage
// (load, normalize, enrich, join, aggregate, render, export).
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("dashboard_stage_total", 1, lbls)
	backend.ObserveHistogram("dashboard_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds:
//   - "matches"      rows loaded from the match table
//   - "deliveries"   rows entering the enricher
//   - "skipped"      rows dropped by the CSV parser
//   - "exported"     rows written by the storage sink
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("dashboard_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordCacheEvent counts loader cache hits and misses.
func RecordCacheEvent(job, outcome string) {
	backend.IncCounter("dashboard_cache_total", 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}
