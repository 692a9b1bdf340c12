// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the dashboard labels (job, stage, status, kind, outcome)
//     onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance
//     instead of exposing an HTTP scrape endpoint, which suits a
//     short-lived batch run.
//
// All Prometheus-specific dependencies live here so the rest of the
// project can swap to alternative backends (e.g. Datadog) without
// changes to the pipeline.
package prompush

import (
	"fmt"

	"ipldash/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // "dashboard_stage_total"
	stageDuration *prometheus.SummaryVec // "dashboard_stage_duration_seconds"
	rowCounter    *prometheus.CounterVec // "dashboard_rows_total"
	cacheCounter  *prometheus.CounterVec // "dashboard_cache_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the dashboard job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dashboard"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_stage_total",
			Help: "Total number of pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dashboard_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_rows_total",
			Help: "Row-level counts per kind (matches, deliveries, skipped, exported).",
		},
		[]string{"kind"},
	)
	cacheCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_total",
			Help: "Loader cache lookups partitioned by outcome (hit, miss).",
		},
		[]string{"outcome"},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(cacheCounter); err != nil {
		return nil, fmt.Errorf("prompush: register cache counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		cacheCounter:  cacheCounter,
	}, nil
}

// IncCounter implements metrics.Backend.IncCounter by dispatching on the
// metric name. Unknown names are ignored so the abstraction can grow
// without breaking older backends.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "dashboard_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case "dashboard_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	case "dashboard_cache_total":
		b.cacheCounter.WithLabelValues(labels["outcome"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram. Stage
// durations are recorded into the summary vector; other names are
// ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "dashboard_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes all collected metrics to the Pushgateway, grouped under
// the configured job name.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
